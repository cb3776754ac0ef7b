package di

import (
	"context"
	"fmt"
	"time"

	"FinAdvise/internal/domain/repository"
	"FinAdvise/internal/handler/api"
	"FinAdvise/internal/handler/mcptools"
	internalrepo "FinAdvise/internal/repository"
	"FinAdvise/internal/service/ratelimit"
	"FinAdvise/internal/usecase"
	pkgcache "FinAdvise/pkg/cache"
	pkgch "FinAdvise/pkg/clickhouse"
	"FinAdvise/pkg/config"
	xhttp "FinAdvise/pkg/http"
	"FinAdvise/pkg/http/middleware"
	pkgkafka "FinAdvise/pkg/kafka"
	applogger "FinAdvise/pkg/logger"
	"FinAdvise/pkg/metrics"
	pkgpg "FinAdvise/pkg/postgres"
	"FinAdvise/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// Durable is the configured durable store, if any. A nil Store means every
// lookup is served by the fallback dataset.
type Durable struct {
	Store  repository.AdvisoryStore
	Health usecase.HealthFunc
	Close  func() error
	Driver string
}

// RateLimiter guards the HTTP tool routes. A nil Allower disables limiting.
type RateLimiter struct {
	Allower middleware.Allower
	Close   func() error
}

// ProvideLogger creates the application logger. The stdio transport owns
// stdout, so logs are redirected to stderr there.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	output := cfg.Log.Output
	if cfg.Transport == "stdio" && output == "stdout" {
		output = "stderr"
	}
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

func metricsRegisterer(cfg *config.Config) prometheus.Registerer {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return prometheus.DefaultRegisterer
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New(metricsRegisterer(cfg))
}

// ProvideDurableStore builds the store selected by store.driver. Clients
// connect lazily, so an unreachable server does not fail start-up.
func ProvideDurableStore(cfg *config.Config, l *applogger.Logger) (*Durable, error) {
	if !cfg.Store.DurableConfigured(cfg.ClickHouse) {
		return &Durable{Driver: cfg.Store.Driver}, nil
	}

	switch cfg.Store.Driver {
	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(int(cfg.Store.MaxConns), int(cfg.Store.MaxConns)/2),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.Store.IdleTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}
		if cfg.Store.InitSchema {
			initSchema(l, "clickhouse", func(ctx context.Context) error {
				return client.InitSchema(ctx, internalrepo.ClickHouseSchema(cfg.ClickHouse.Database))
			})
		}
		return &Durable{
			Store:  internalrepo.NewCHAdvisoryStore(client, l),
			Health: client.Health,
			Close:  client.Close,
			Driver: "clickhouse",
		}, nil

	default:
		client, err := pkgpg.NewClient(
			pkgpg.WithDSN(cfg.Store.DSN),
			pkgpg.WithMaxConnections(cfg.Store.MaxConns, 0),
			pkgpg.WithTimeouts(cfg.Store.IdleTimeout, cfg.Store.ConnectTimeout),
			pkgpg.WithStatementTimeout(cfg.Store.QueryTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("postgres client: %w", err)
		}
		if cfg.Store.InitSchema {
			initSchema(l, "postgres", func(ctx context.Context) error {
				return client.InitSchema(ctx, internalrepo.PostgresSchema)
			})
		}
		return &Durable{
			Store:  internalrepo.NewPostgresStore(client, l),
			Health: client.Health,
			Close:  client.Close,
			Driver: "postgres",
		}, nil
	}
}

// initSchema runs DDL best effort; a failure leaves the store Live and
// lookups fall back per call.
func initSchema(l *applogger.Logger, driver string, run func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := run(ctx); err != nil {
		l.Warn("schema init failed", applogger.String("driver", driver), applogger.Error(err))
	}
}

// ProvideFallbackDataset loads the embedded advisory snapshot.
func ProvideFallbackDataset() (*internalrepo.FixtureDataset, error) {
	ds, err := internalrepo.NewFixtureDataset()
	if err != nil {
		return nil, fmt.Errorf("fallback dataset: %w", err)
	}
	return ds, nil
}

// ProvideSource runs the one-time source selection.
func ProvideSource(d *Durable, l *applogger.Logger) repository.Source {
	return usecase.SelectSource(context.Background(), d.Store, d.Health, l)
}

// ProvideFallbackChain creates the durable-then-fallback lookup chain.
func ProvideFallbackChain(
	src repository.Source,
	ds *internalrepo.FixtureDataset,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.FallbackChain {
	return usecase.NewFallbackChain(src, ds, m, l)
}

// ProvideDriftCalculator applies the configured rebalance threshold.
func ProvideDriftCalculator(cfg *config.Config) *usecase.DriftCalculator {
	return usecase.NewDriftCalculator(cfg.Policy.RebalanceThreshold)
}

// ProvideAlertPublisher creates the Kafka rebalance alert publisher when
// alerts are enabled.
func ProvideAlertPublisher(cfg *config.Config) (repository.AlertPublisher, error) {
	if !cfg.Alerts.Enabled {
		return internalrepo.NoopAlertPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Alerts.Brokers),
		pkgkafka.WithTopic(cfg.Alerts.Topic),
		pkgkafka.WithClientID(cfg.MCP.Name),
		pkgkafka.WithCompression(cfg.Alerts.Compression),
		pkgkafka.WithRequiredAcks(cfg.Alerts.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Alerts.Producer.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Alerts.Producer.WriteTimeout, cfg.Alerts.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Alerts.Producer.Async),
		pkgkafka.WithRegisterer(metricsRegisterer(cfg)),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaAlertPublisher(producer), nil
}

// ProvideAdvisoryService creates the advisory tool facade.
func ProvideAdvisoryService(
	cfg *config.Config,
	chain *usecase.FallbackChain,
	drift *usecase.DriftCalculator,
	alerts repository.AlertPublisher,
	l *applogger.Logger,
) *usecase.AdvisoryService {
	return usecase.NewAdvisoryService(chain, drift,
		usecase.WithAlertPublisher(alerts),
		usecase.WithWeightTolerance(cfg.Policy.WeightTolerance),
		usecase.WithTopHoldings(cfg.Policy.TopHoldings),
		usecase.WithDefaultBenchmark(cfg.Policy.DefaultBenchmark),
		usecase.WithLogger(l),
	)
}

// ProvideHTTPHandler creates the echo tool handler.
func ProvideHTTPHandler(l *applogger.Logger, svc *usecase.AdvisoryService) xhttp.Handler {
	return api.NewAdvisoryEchoHandler(l, svc)
}

// ProvideMCPServer creates the MCP tool server.
func ProvideMCPServer(cfg *config.Config, l *applogger.Logger, svc *usecase.AdvisoryService) *mcptools.Server {
	return mcptools.NewServer(svc, l, cfg.MCP.Name, cfg.MCP.Version)
}

// ProvideRateLimiter selects the limiter backend for the tool routes.
func ProvideRateLimiter(cfg *config.Config) (*RateLimiter, error) {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return &RateLimiter{}, nil
	}
	if rl.Backend != "redis" {
		return &RateLimiter{Allower: ratelimit.New(rl.Capacity, rl.RefillPerSec)}, nil
	}
	store, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(rl.Redis.Host),
		pkgcache.WithRedisPort(rl.Redis.Port),
		pkgcache.WithRedisPassword(rl.Redis.Password),
		pkgcache.WithRedisDB(rl.Redis.DB),
		pkgcache.WithRedisPrefix(rl.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis rate limiter: %w", err)
	}
	return &RateLimiter{
		Allower: ratelimit.NewRedisLimiter(store, rl.Capacity, rl.Window),
		Close:   store.Close,
	}, nil
}

// ProvideHealth reports the selected source, a store ping when Live and
// broker reachability when alerts are enabled.
func ProvideHealth(src repository.Source, d *Durable, alerts repository.AlertPublisher) xhttp.HealthFunc {
	return func(ctx context.Context) map[string]string {
		checks := map[string]string{"source": string(src.Kind())}
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if src.Kind() == repository.SourceLive && d.Health != nil {
			checks[d.Driver] = healthStatus(d.Health(pctx))
		}
		if p, ok := alerts.(pinger); ok {
			checks["alerts"] = healthStatus(p.Ping(pctx))
		}
		return checks
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func healthStatus(err error) string {
	if err != nil {
		return "unreachable"
	}
	return "ok"
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	mcpServer *mcptools.Server,
	rl *RateLimiter,
	health xhttp.HealthFunc,
	d *Durable,
	alerts repository.AlertPublisher,
) *server.App {
	resources := []server.Resource{
		{Name: "durable store", Close: d.Close},
		{Name: "alert publisher", Close: alerts.Close},
		{Name: "rate limiter", Close: rl.Close},
	}
	return server.New(cfg, l, handler, mcpServer, rl.Allower, health, resources)
}
