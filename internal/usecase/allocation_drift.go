package usecase

import (
	"fmt"
	"sort"

	"FinAdvise/internal/domain/models"

	"github.com/shopspring/decimal"
)

const withinToleranceRecommendation = "Portfolio is within acceptable drift tolerance."

// DriftCalculator compares target and actual allocation against a rebalancing threshold.
type DriftCalculator struct {
	threshold decimal.Decimal
}

// NewDriftCalculator uses threshold (percentage points) unless a client policy overrides it.
// Non-positive values fall back to 5.
func NewDriftCalculator(threshold float64) *DriftCalculator {
	t := decimal.NewFromFloat(threshold)
	if !t.IsPositive() {
		t = decimal.NewFromInt(5)
	}
	return &DriftCalculator{threshold: t}
}

// Threshold returns the default threshold.
func (c *DriftCalculator) Threshold() decimal.Decimal {
	return c.threshold
}

// Compute returns one row per asset class present in either map, sorted by
// class name. A class missing from one side counts as 0. Rebalancing is
// needed when the largest unrounded absolute drift strictly exceeds the
// threshold; only the per-row drift is rounded for display.
func (c *DriftCalculator) Compute(target, actual map[string]decimal.Decimal, override decimal.NullDecimal) models.AllocationDrift {
	threshold := c.threshold
	if override.Valid && override.Decimal.IsPositive() {
		threshold = override.Decimal
	}

	classes := make(map[string]struct{}, len(target)+len(actual))
	for k := range target {
		classes[k] = struct{}{}
	}
	for k := range actual {
		classes[k] = struct{}{}
	}
	names := make([]string, 0, len(classes))
	for k := range classes {
		names = append(names, k)
	}
	sort.Strings(names)

	maxAbs := decimal.Zero
	rows := make([]models.AllocationRow, 0, len(names))
	for _, name := range names {
		t, a := target[name], actual[name]
		drift := a.Sub(t)
		if abs := drift.Abs(); abs.GreaterThan(maxAbs) {
			maxAbs = abs
		}
		rows = append(rows, models.AllocationRow{
			AssetClass: name,
			Target:     toFloat(t),
			Actual:     toFloat(a),
			Drift:      toFloat(drift.Round(2)),
		})
	}

	needs := maxAbs.GreaterThan(threshold)
	return models.AllocationDrift{
		Rows:             rows,
		MaxAbsDrift:      toFloat(maxAbs),
		Threshold:        toFloat(threshold),
		NeedsRebalancing: needs,
		Recommendation:   recommendation(needs, threshold),
	}
}

func recommendation(needs bool, threshold decimal.Decimal) string {
	if !needs {
		return withinToleranceRecommendation
	}
	return fmt.Sprintf("Portfolio has drifted more than %s%% from target in one or more asset classes. Consider rebalancing.", threshold.String())
}
