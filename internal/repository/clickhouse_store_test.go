package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"FinAdvise/internal/domain/models"
	domrepo "FinAdvise/internal/domain/repository"
	pkgch "FinAdvise/pkg/clickhouse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestClickHouseSchema(t *testing.T) {
	stmts := ClickHouseSchema("advisory")
	require.Len(t, stmts, 6)
	assert.Equal(t, "CREATE DATABASE IF NOT EXISTS advisory", stmts[0])

	for _, table := range []string{"clients", "accounts", "holdings", "allocation_targets", "performance_snapshots"} {
		found := false
		for _, s := range stmts[1:] {
			if strings.Contains(s, "advisory."+table+" (") {
				found = true
				assert.Contains(t, s, "ReplacingMergeTree")
			}
		}
		assert.True(t, found, table)
	}
}

// chSeed mirrors pgSeed so both durable stores are held to the same results.
var chSeed = []string{
	`INSERT INTO clients (id, first_name, last_name, full_name, email, phone, status, risk_tolerance, onboarding_date, last_contact_date, rebalance_threshold) VALUES
		('client-001', 'John', 'Smith', NULL, 'john.smith@email.com', '(555) 123-4567', 'active', 'moderate', '2019-03-15', NULL, NULL),
		('client-002', 'Sarah', 'Johnson', NULL, 'sarah.j@email.com', '(555) 234-5678', 'active', 'aggressive', '2017-08-22', NULL, 3.5),
		('client-003', 'Michael', 'Chen', NULL, 'm.chen@email.com', '(555) 345-6789', 'prospect', 'conservative', NULL, NULL, NULL)`,
	`INSERT INTO accounts (id, client_id, account_number, name, account_type, custodian, market_value, cost_basis, is_closed, inception_date, is_billable, is_discretionary) VALUES
		('acc-001', 'client-001', '7741-2209', 'John Smith IRA', 'IRA', NULL, 450000, 353800, 0, NULL, 1, 0),
		('acc-002', 'client-001', '7741-3310', 'John Smith Brokerage', 'Brokerage', NULL, 800000, 559000, 0, NULL, 1, 1),
		('acc-003', 'client-002', '5530-1187', 'Sarah Johnson 401k', '401k', NULL, 3500000, 2590000, 0, NULL, 1, 0),
		('acc-006', 'client-003', '6120-0042', 'Held-Away', 'Brokerage', NULL, 275000, 240000, 1, NULL, 0, 0)`,
	`INSERT INTO holdings (account_id, symbol, name, quantity, cost_basis, market_value, asset_class, sector, as_of_date) VALUES
		('acc-001', 'VTI', 'Vanguard Total Stock Market ETF', 500, 85000, 125000, 'US Equity', 'Diversified', '2024-12-31'),
		('acc-001', 'BND', 'Vanguard Total Bond Market ETF', 1200, 90000, 88800, 'Fixed Income', 'Bonds', '2024-12-31'),
		('acc-001', 'CASH', 'Cash & Equivalents', 1, 95800, 95800, 'Cash', 'Cash', '2024-12-31'),
		('acc-001', 'ODD', 'Unlabelled', 10, 1000, 1000, NULL, NULL, '2024-12-31'),
		('acc-006', 'BND', 'Vanguard Total Bond Market ETF', 3000, 240000, 275000, 'Fixed Income', 'Bonds', '2024-12-31')`,
	`INSERT INTO allocation_targets (client_id, asset_class, target_percent) VALUES
		('client-001', 'US Equity', 45), ('client-001', 'Fixed Income', 25), ('client-001', 'Cash', 30)`,
	`INSERT INTO performance_snapshots (client_id, period, return_percent, benchmark_percent, benchmark_name, as_of_date) VALUES
		('client-001', 'YTD', 18.5, 16.8, 'S&P 500', '2024-12-31'),
		('client-001', 'MTD', 2.3, 2.1, 'S&P 500', '2024-12-31'),
		('client-001', 'YTD', 11.0, 10.0, 'S&P 500', '2024-06-30')`,
}

// startClickHouse runs a throwaway ClickHouse server. Like startPostgres it
// only runs with FINADVISE_TEST_DOCKER=true.
func startClickHouse(t *testing.T) *pkgch.Client {
	t.Helper()
	if !dockerTestsEnabled() {
		t.Skip("set FINADVISE_TEST_DOCKER=true to run container tests")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "clickhouse/clickhouse-server:24.8-alpine",
			ExposedPorts: []string{"9000/tcp", "8123/tcp"},
			Env: map[string]string{
				"CLICKHOUSE_DB":       "advisory",
				"CLICKHOUSE_USER":     "advisor",
				"CLICKHOUSE_PASSWORD": "advisor",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("9000/tcp"),
				wait.ForHTTP("/ping").WithPort("8123/tcp"),
			).WithDeadline(120 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	client, err := pkgch.NewClient(
		pkgch.WithHost(host),
		pkgch.WithPort(port.Int()),
		pkgch.WithDatabase("advisory"),
		pkgch.WithCredentials("advisor", "advisor"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.InitSchema(ctx, ClickHouseSchema("advisory")))
	require.NoError(t, client.InitSchema(ctx, chSeed))
	return client
}

func TestCHAdvisoryStore(t *testing.T) {
	store := NewCHAdvisoryStore(startClickHouse(t), nil)
	ctx := context.Background()

	t.Run("search orders by aum", func(t *testing.T) {
		got, err := store.SearchClients(ctx, "email.com", models.StatusAll, 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "client-002", got[0].ID)
		assert.Equal(t, "client-001", got[1].ID)
		assert.Equal(t, "client-003", got[2].ID)
		assert.Len(t, got[1].Accounts, 2)
		assert.Equal(t, "acc-002", got[1].Accounts[0].ID)
		assert.Empty(t, got[2].Accounts)
		assert.False(t, got[2].TotalAUM().Valid)
	})

	t.Run("search by account number and status", func(t *testing.T) {
		got, err := store.SearchClients(ctx, "7741-3310", models.StatusAll, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "client-001", got[0].ID)

		got, err = store.SearchClients(ctx, "6120-0042", models.StatusAll, 10)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = store.SearchClients(ctx, "chen", models.StatusFilter("active"), 10)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = store.SearchClients(ctx, "chen", models.StatusFilter("prospect"), 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "client-003", got[0].ID)
	})

	t.Run("like wildcards are literal", func(t *testing.T) {
		got, err := store.SearchClients(ctx, "%", models.StatusAll, 10)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = store.SearchClients(ctx, "john_smith", models.StatusAll, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("get client", func(t *testing.T) {
		c, err := store.GetClient(ctx, "john smith")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "client-001", c.ID)

		c, err = store.GetClient(ctx, "client-404")
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("holdings", func(t *testing.T) {
		h, err := store.ListHoldings(ctx, "acc-001")
		require.NoError(t, err)
		require.Len(t, h, 4)
		assert.Equal(t, "VTI", h[0].Symbol)
		assert.Equal(t, "125000", h[0].MarketValue.String())

		h, err = store.ListHoldings(ctx, "acc-006")
		require.NoError(t, err)
		assert.Empty(t, h)
	})

	t.Run("allocation", func(t *testing.T) {
		p, err := store.GetAllocationPolicy(ctx, "client-001")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Len(t, p.Target, 3)
		assert.Contains(t, p.Actual, models.UnclassifiedBucket)
		assert.Equal(t, "28.6", p.Actual["Fixed Income"].String())
		assert.False(t, p.Threshold.Valid)

		p, err = store.GetAllocationPolicy(ctx, "client-002")
		require.NoError(t, err)
		require.True(t, p.Threshold.Valid)
		assert.Equal(t, "3.5", p.Threshold.Decimal.String())

		p, err = store.GetAllocationPolicy(ctx, "client-404")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("performance uses latest snapshot", func(t *testing.T) {
		perf, err := store.ListPerformance(ctx, "client-001")
		require.NoError(t, err)
		require.Len(t, perf, 2)
		assert.Equal(t, "MTD", perf[0].Period)
		assert.Equal(t, "YTD", perf[1].Period)
		assert.Equal(t, "18.5", perf[1].Return.String())
	})
}

func TestCHAdvisoryStore_Unreachable(t *testing.T) {
	client, err := pkgch.NewClient(
		pkgch.WithHost("127.0.0.1"),
		pkgch.WithPort(1),
		pkgch.WithDatabase("advisory"),
		pkgch.WithTimeouts(time.Second, time.Second, time.Second),
	)
	require.NoError(t, err)
	defer client.Close()

	store := NewCHAdvisoryStore(client, nil)
	_, err = store.SearchClients(context.Background(), "smith", models.StatusAll, 10)
	require.Error(t, err)
	assert.True(t, domrepo.IsSourceUnavailable(err), err.Error())
}
