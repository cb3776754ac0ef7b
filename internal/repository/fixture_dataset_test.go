package repository

import (
	"context"
	"testing"

	"FinAdvise/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureDataset_SearchClients(t *testing.T) {
	ds, err := NewFixtureDataset()
	require.NoError(t, err)
	ctx := context.Background()

	got, err := ds.SearchClients(ctx, "smith", models.StatusAll, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "client-001", got[0].ID)

	got, err = ds.SearchClients(ctx, "5530-2004", models.StatusAll, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "client-002", got[0].ID)

	// acc-006 is closed, so its account number does not match.
	got, err = ds.SearchClients(ctx, "6120-0042", models.StatusAll, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ds.SearchClients(ctx, "email.com", models.StatusAll, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "client-002", got[0].ID)
	assert.Equal(t, "client-001", got[1].ID)

	got, err = ds.SearchClients(ctx, "   ", models.StatusAll, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFixtureDataset_StatusFilter(t *testing.T) {
	ds, err := NewFixtureDataset()
	require.NoError(t, err)
	ctx := context.Background()

	got, err := ds.SearchClients(ctx, "chen", models.StatusFilter("prospect"), 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = ds.SearchClients(ctx, "chen", models.StatusFilter("active"), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFixtureDataset_GetClient(t *testing.T) {
	ds, err := NewFixtureDataset()
	require.NoError(t, err)
	ctx := context.Background()

	c, err := ds.GetClient(ctx, "client-002")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Sarah Johnson", c.DisplayName())

	c, err = ds.GetClient(ctx, "SARAH JOHNSON")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "client-002", c.ID)

	c, err = ds.GetClient(ctx, "Sarah")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestFixtureDataset_ReturnsCopies(t *testing.T) {
	ds, err := NewFixtureDataset()
	require.NoError(t, err)
	ctx := context.Background()

	c, err := ds.GetClient(ctx, "client-001")
	require.NoError(t, err)
	c.Accounts[0].IsClosed = true
	c.FirstName = "Changed"

	again, err := ds.GetClient(ctx, "client-001")
	require.NoError(t, err)
	assert.Equal(t, "John", again.FirstName)
	assert.False(t, again.Accounts[0].IsClosed)

	p, err := ds.GetAllocationPolicy(ctx, "client-001")
	require.NoError(t, err)
	delete(p.Target, "Cash")
	p, err = ds.GetAllocationPolicy(ctx, "client-001")
	require.NoError(t, err)
	assert.Contains(t, p.Target, "Cash")
}

func TestFixtureDataset_Holdings(t *testing.T) {
	ds, err := NewFixtureDataset()
	require.NoError(t, err)
	ctx := context.Background()

	h, err := ds.ListHoldings(ctx, "acc-001")
	require.NoError(t, err)
	assert.Len(t, h, 6)

	h, err = ds.ListHoldings(ctx, "acc-006")
	require.NoError(t, err)
	assert.Empty(t, h, "closed account holdings are hidden")

	h, err = ds.ListHoldings(ctx, "acc-404")
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestFixtureDataset_Performance(t *testing.T) {
	ds, err := NewFixtureDataset()
	require.NoError(t, err)

	perf, err := ds.ListPerformance(context.Background(), "client-002")
	require.NoError(t, err)
	require.Len(t, perf, len(models.PerformancePeriods))
	for i, p := range perf {
		assert.Equal(t, models.PerformancePeriods[i], p.Period)
	}

	perf, err = ds.ListPerformance(context.Background(), "client-404")
	require.NoError(t, err)
	assert.Empty(t, perf)
}

func TestParseFixtureDataset(t *testing.T) {
	doc := []byte(`
clients:
  - id: c-1
    first_name: Ada
    last_name: Lovelace
    status: active
    accounts:
      - {id: a-1, type: IRA, market_value: 100, cost_basis: 80}
      - {id: a-2, type: Brokerage, cost_basis: 10}
holdings:
  a-1:
    - {symbol: X, quantity: 1, cost_basis: 80, market_value: 100, asset_class: Cash}
allocations:
  c-1:
    target: {Cash: 100}
    actual: {Cash: 100}
    rebalance_threshold: 2.5
`)
	ds, err := ParseFixtureDataset(doc)
	require.NoError(t, err)

	c, err := ds.GetClient(context.Background(), "Ada Lovelace")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.TotalAUM().Valid)
	assert.Equal(t, "100", c.TotalAUM().Decimal.String())
	assert.False(t, c.Accounts[1].MarketValue.Valid)

	p, err := ds.GetAllocationPolicy(context.Background(), "c-1")
	require.NoError(t, err)
	require.True(t, p.Threshold.Valid)
	assert.Equal(t, "2.5", p.Threshold.Decimal.String())

	_, err = ParseFixtureDataset([]byte("clients: [\n"))
	assert.Error(t, err)

	_, err = ParseFixtureDataset([]byte(`
clients:
  - {id: c-1, first_name: A, last_name: B, onboarding_date: "15/03/2019"}
`))
	assert.Error(t, err)
}

func TestSortClientsByAUM(t *testing.T) {
	ds, err := NewFixtureDataset()
	require.NoError(t, err)
	all, err := ds.SearchClients(context.Background(), "@", models.StatusAll, 0)
	require.NoError(t, err)

	reversed := []models.Client{all[2], all[1], all[0]}
	SortClientsByAUM(reversed)
	assert.Equal(t, []string{"client-002", "client-001", "client-003"},
		[]string{reversed[0].ID, reversed[1].ID, reversed[2].ID})
}
