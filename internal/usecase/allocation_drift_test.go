package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weights(kv map[string]float64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(kv))
	for k, v := range kv {
		out[k] = decimal.NewFromFloat(v)
	}
	return out
}

func TestDriftCalculator_NeedsRebalancing(t *testing.T) {
	calc := NewDriftCalculator(5)
	target := weights(map[string]float64{"US Equity": 45, "Intl Equity": 15, "Fixed Income": 25, "Real Estate": 5, "Cash": 10})
	actual := weights(map[string]float64{"US Equity": 51.1, "Intl Equity": 7.9, "Fixed Income": 19.7, "Real Estate": 0, "Cash": 21.3})

	d := calc.Compute(target, actual, decimal.NullDecimal{})

	require.Len(t, d.Rows, 5)
	assert.Equal(t, "Cash", d.Rows[0].AssetClass)
	var us float64
	for _, r := range d.Rows {
		if r.AssetClass == "US Equity" {
			us = r.Drift
		}
	}
	assert.Equal(t, 6.1, us)
	assert.True(t, d.NeedsRebalancing)
	assert.Equal(t, 11.3, d.MaxAbsDrift)
	assert.Equal(t, "Portfolio has drifted more than 5% from target in one or more asset classes. Consider rebalancing.", d.Recommendation)
}

func TestDriftCalculator_ThresholdIsStrict(t *testing.T) {
	calc := NewDriftCalculator(5)
	d := calc.Compute(
		weights(map[string]float64{"US Equity": 60, "Cash": 40}),
		weights(map[string]float64{"US Equity": 65, "Cash": 35}),
		decimal.NullDecimal{},
	)
	assert.Equal(t, 5.0, d.MaxAbsDrift)
	assert.False(t, d.NeedsRebalancing)
	assert.Equal(t, "Portfolio is within acceptable drift tolerance.", d.Recommendation)
}

func TestDriftCalculator_UnionOfClasses(t *testing.T) {
	calc := NewDriftCalculator(5)
	d := calc.Compute(
		weights(map[string]float64{"US Equity": 90, "Cash": 10}),
		weights(map[string]float64{"US Equity": 88, "Commodities": 12}),
		decimal.NullDecimal{},
	)

	require.Len(t, d.Rows, 3)
	assert.Equal(t, []string{"Cash", "Commodities", "US Equity"},
		[]string{d.Rows[0].AssetClass, d.Rows[1].AssetClass, d.Rows[2].AssetClass})
	assert.Equal(t, -10.0, d.Rows[0].Drift)
	assert.Equal(t, 0.0, d.Rows[0].Actual)
	assert.Equal(t, 12.0, d.Rows[1].Drift)
	assert.Equal(t, 0.0, d.Rows[1].Target)
	assert.True(t, d.NeedsRebalancing)
}

func TestDriftCalculator_Property(t *testing.T) {
	calc := NewDriftCalculator(5)
	cases := []struct{ actual, target float64 }{
		{50, 45}, {50.01, 45}, {50.004, 45}, {39.996, 45}, {39.99, 45}, {45, 45}, {0, 5.01},
	}
	for _, c := range cases {
		d := calc.Compute(
			weights(map[string]float64{"A": c.target}),
			weights(map[string]float64{"A": c.actual}),
			decimal.NullDecimal{},
		)
		assert.Equal(t, d.MaxAbsDrift > 5, d.NeedsRebalancing, "actual=%v target=%v", c.actual, c.target)
	}
}

func TestDriftCalculator_ComparesBeforeRounding(t *testing.T) {
	calc := NewDriftCalculator(5)
	d := calc.Compute(
		weights(map[string]float64{"US Equity": 45}),
		weights(map[string]float64{"US Equity": 50.004}),
		decimal.NullDecimal{},
	)
	require.Len(t, d.Rows, 1)
	assert.Equal(t, 5.0, d.Rows[0].Drift)
	assert.Equal(t, 5.004, d.MaxAbsDrift)
	assert.True(t, d.NeedsRebalancing)
}

func TestDriftCalculator_ClientOverride(t *testing.T) {
	calc := NewDriftCalculator(5)
	target := weights(map[string]float64{"US Equity": 60})
	actual := weights(map[string]float64{"US Equity": 63})

	d := calc.Compute(target, actual, decimal.NewNullDecimal(decimal.NewFromFloat(2.5)))
	assert.True(t, d.NeedsRebalancing)
	assert.Equal(t, 2.5, d.Threshold)
	assert.Contains(t, d.Recommendation, "more than 2.5%")

	d = calc.Compute(target, actual, decimal.NullDecimal{})
	assert.False(t, d.NeedsRebalancing)
	assert.Equal(t, 5.0, d.Threshold)
}

func TestNewDriftCalculator_NonPositiveDefaults(t *testing.T) {
	assert.True(t, NewDriftCalculator(0).Threshold().Equal(decimal.NewFromInt(5)))
	assert.True(t, NewDriftCalculator(7).Threshold().Equal(decimal.NewFromInt(7)))
}
