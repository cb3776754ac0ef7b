package config

import (
	"fmt"
	"os"
	"time"

	"FinAdvise/pkg/util"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string          `yaml:"environment" default:"development"`
	Log         LogConfig       `yaml:"log"`
	Server      ServerConfig    `yaml:"server"`
	Transport   string          `yaml:"transport" default:"http"`
	Metrics     MetricsConfig   `yaml:"metrics"`
	Store       StoreConfig     `yaml:"store"`
	ClickHouse  ClickHouse      `yaml:"clickhouse"`
	Policy      PolicyConfig    `yaml:"policy"`
	Alerts      AlertsConfig    `yaml:"alerts"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	MCP         MCPConfig       `yaml:"mcp"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"json"`
	Output string `yaml:"output" default:"stdout"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" default:"1s"`
	CORS            bool          `yaml:"cors" default:"true"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

// StoreConfig selects the durable store. Leaving the connection unset runs
// every lookup against the bundled fallback dataset.
type StoreConfig struct {
	Driver         string        `yaml:"driver" default:"postgres"`
	DSN            string        `yaml:"dsn"`
	MaxConns       int32         `yaml:"max_conns" default:"10"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" default:"20s"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" default:"10s"`
	QueryTimeout   time.Duration `yaml:"query_timeout" default:"15s"`
	InitSchema     bool          `yaml:"init_schema"`
}

type ClickHouse struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"advisory"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"10s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"15s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
}

type PolicyConfig struct {
	RebalanceThreshold float64 `yaml:"rebalance_threshold" default:"5"`
	WeightTolerance    float64 `yaml:"weight_tolerance" default:"0.1"`
	TopHoldings        int     `yaml:"top_holdings" default:"10"`
	DefaultBenchmark   string  `yaml:"default_benchmark" default:"S&P 500"`
}

type AlertsConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic" default:"advisory.rebalance-alerts"`
	RequiredAcks int      `yaml:"required_acks" default:"-1"`
	Compression  string   `yaml:"compression" default:"gzip"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"5s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
}

type RateLimitConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Backend      string        `yaml:"backend" default:"memory"`
	Capacity     int           `yaml:"capacity" default:"30"`
	RefillPerSec float64       `yaml:"refill_per_sec" default:"1"`
	Window       time.Duration `yaml:"window" default:"1m"`
	Redis        struct {
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"finadvise"`
	} `yaml:"redis"`
}

type MCPConfig struct {
	Name    string `yaml:"name" default:"finadvise"`
	Version string `yaml:"version" default:"1.0.0"`
}

// DurableConfigured reports whether a connection for the selected driver is present.
func (s StoreConfig) DurableConfigured(ch ClickHouse) bool {
	switch s.Driver {
	case "clickhouse":
		return ch.Host != ""
	default:
		return s.DSN != ""
	}
}

// Default returns a configuration built from defaults alone.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("CLIENTS_DB_URL"); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Alerts.Brokers = util.SplitCSV(v)
		c.Alerts.Enabled = true
	}
	if v := os.Getenv("ALERTS_TOPIC"); v != "" {
		c.Alerts.Topic = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.RateLimit.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		c.RateLimit.Redis.Port = util.ParseIntDefault(v, c.RateLimit.Redis.Port)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("REBALANCE_THRESHOLD"); v != "" {
		c.Policy.RebalanceThreshold = util.ParseFloatDefault(v, c.Policy.RebalanceThreshold)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Transport != "http" && c.Transport != "stdio" {
		return fmt.Errorf("transport must be 'http' or 'stdio', got '%s'", c.Transport)
	}
	if c.Store.Driver != "postgres" && c.Store.Driver != "clickhouse" {
		return fmt.Errorf("store.driver must be 'postgres' or 'clickhouse', got '%s'", c.Store.Driver)
	}
	if c.Store.MaxConns < 1 {
		return fmt.Errorf("store.max_conns must be positive")
	}
	if c.Policy.RebalanceThreshold <= 0 {
		return fmt.Errorf("policy.rebalance_threshold must be positive")
	}
	if c.Policy.WeightTolerance < 0 {
		return fmt.Errorf("policy.weight_tolerance cannot be negative")
	}
	if c.Policy.TopHoldings < 1 {
		return fmt.Errorf("policy.top_holdings must be positive")
	}
	if c.Alerts.Enabled {
		if len(c.Alerts.Brokers) == 0 {
			return fmt.Errorf("alerts.brokers cannot be empty when alerts are enabled")
		}
		if c.Alerts.Topic == "" {
			return fmt.Errorf("alerts.topic is required when alerts are enabled")
		}
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Backend != "memory" && c.RateLimit.Backend != "redis" {
			return fmt.Errorf("rate_limit.backend must be 'memory' or 'redis', got '%s'", c.RateLimit.Backend)
		}
		if c.RateLimit.Capacity < 1 {
			return fmt.Errorf("rate_limit.capacity must be positive")
		}
	}
	return nil
}
