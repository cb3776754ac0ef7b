package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", c.Store.Driver)
	assert.Equal(t, int32(10), c.Store.MaxConns)
	assert.Equal(t, 20*time.Second, c.Store.IdleTimeout)
	assert.Equal(t, 10*time.Second, c.Store.ConnectTimeout)
	assert.Equal(t, 5.0, c.Policy.RebalanceThreshold)
	assert.Equal(t, 0.1, c.Policy.WeightTolerance)
	assert.Equal(t, "S&P 500", c.Policy.DefaultBenchmark)
	assert.Equal(t, "http", c.Transport)
	assert.False(t, c.Store.DurableConfigured(c.ClickHouse))
}

func TestLoad_SampleFile(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "development", c.Environment)
	assert.True(t, c.RateLimit.Enabled)
	assert.Equal(t, "advisory.rebalance-alerts", c.Alerts.Topic)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: production
store:
  driver: clickhouse
clickhouse:
  host: ch.internal
policy:
  rebalance_threshold: 7.5
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "clickhouse", c.Store.Driver)
	assert.True(t, c.Store.DurableConfigured(c.ClickHouse))
	assert.Equal(t, 7.5, c.Policy.RebalanceThreshold)
	// untouched sections keep defaults
	assert.Equal(t, 9000, c.ClickHouse.Port)
	assert.Equal(t, 10, c.Policy.TopHoldings)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad driver":    "store:\n  driver: mysql\n",
		"bad transport": "transport: grpc\n",
		"bad threshold": "policy:\n  rebalance_threshold: 0\n",
		"alerts":        "alerts:\n  enabled: true\n  brokers: []\n",
		"rate limit":    "rate_limit:\n  enabled: true\n  backend: etcd\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("CLIENTS_DB_URL", "postgres://advisor@db:5432/clients")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REBALANCE_THRESHOLD", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_PORT", "6380")

	c, err := LoadWithEnv("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://advisor@db:5432/clients", c.Store.DSN)
	assert.True(t, c.Store.DurableConfigured(c.ClickHouse))
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Alerts.Brokers)
	assert.True(t, c.Alerts.Enabled)
	assert.Equal(t, 3.0, c.Policy.RebalanceThreshold)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 6380, c.RateLimit.Redis.Port)
}
