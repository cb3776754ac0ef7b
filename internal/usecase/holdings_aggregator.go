package usecase

import (
	"sort"

	"FinAdvise/internal/domain/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// HoldingsAggregate is the account-level aggregation of one holding set.
type HoldingsAggregate struct {
	Summary   models.HoldingsSummary
	Holdings  []models.HoldingPosition
	GroupedBy models.GroupBy
	Groups    map[string]models.HoldingGroup
	// WeightSum is the sum of the reported per-holding weights.
	WeightSum decimal.Decimal
}

// AggregateHoldings summarises holdings and, unless groupBy is none,
// partitions them into buckets keyed by asset class or sector.
// Percentages whose denominator is zero are left nil.
func AggregateHoldings(holdings []models.Holding, groupBy models.GroupBy) HoldingsAggregate {
	totalValue, totalCost := decimal.Zero, decimal.Zero
	for _, h := range holdings {
		totalValue = totalValue.Add(h.MarketValue)
		totalCost = totalCost.Add(h.CostBasis)
	}
	gain := totalValue.Sub(totalCost)

	agg := HoldingsAggregate{
		Summary: models.HoldingsSummary{
			TotalMarketValue:           toFloat(totalValue),
			TotalCostBasis:             toFloat(totalCost),
			TotalUnrealizedGain:        toFloat(gain),
			TotalUnrealizedGainPercent: percentOf(gain, totalCost, 2),
			PositionCount:              len(holdings),
		},
	}

	values := make([]decimal.Decimal, len(holdings))
	for i, h := range holdings {
		values[i] = h.MarketValue
	}
	weights := allocateWeights(values, totalValue)

	positions := make([]models.HoldingPosition, len(holdings))
	for i, h := range holdings {
		positions[i] = position(h)
		if weights != nil {
			w := weights[i].InexactFloat64()
			positions[i].Weight = &w
			agg.WeightSum = agg.WeightSum.Add(weights[i])
		}
	}

	if groupBy == "" || groupBy == models.GroupByNone {
		agg.Holdings = positions
		return agg
	}

	type bucket struct {
		value, cost decimal.Decimal
		holdings    []models.HoldingPosition
	}
	buckets := make(map[string]*bucket)
	for i, h := range holdings {
		key := groupBy.Key(h)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.value = b.value.Add(h.MarketValue)
		b.cost = b.cost.Add(h.CostBasis)
		b.holdings = append(b.holdings, positions[i])
	}

	agg.GroupedBy = groupBy
	agg.Groups = make(map[string]models.HoldingGroup, len(buckets))
	for key, b := range buckets {
		agg.Groups[key] = models.HoldingGroup{
			Holdings:       b.holdings,
			TotalValue:     toFloat(b.value),
			TotalCost:      toFloat(b.cost),
			Weight:         percentOf(b.value, totalValue, 1),
			UnrealizedGain: toFloat(b.value.Sub(b.cost)),
		}
	}
	return agg
}

// GroupKeys returns the bucket labels in ascending order.
func (a HoldingsAggregate) GroupKeys() []string {
	keys := make([]string, 0, len(a.Groups))
	for k := range a.Groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func position(h models.Holding) models.HoldingPosition {
	gain := h.UnrealizedGain()
	return models.HoldingPosition{
		Symbol:                h.Symbol,
		Name:                  h.Name,
		Quantity:              toFloat(h.Quantity),
		CostBasis:             toFloat(h.CostBasis),
		MarketValue:           toFloat(h.MarketValue),
		AssetClass:            h.AssetClass,
		Sector:                h.Sector,
		UnrealizedGain:        toFloat(gain),
		UnrealizedGainPercent: percentOf(gain, h.CostBasis, 2),
	}
}

var weightUnit = decimal.New(1, -2)

// allocateWeights returns each value as a percentage of total rounded to
// two places by largest remainder, so the weights sum to exactly 100.
// It returns nil when total is zero.
func allocateWeights(values []decimal.Decimal, total decimal.Decimal) []decimal.Decimal {
	if total.IsZero() {
		return nil
	}
	out := make([]decimal.Decimal, len(values))
	rem := make([]decimal.Decimal, len(values))
	sum := decimal.Zero
	for i, v := range values {
		raw := v.Div(total).Mul(hundred)
		out[i] = raw.RoundFloor(2)
		rem[i] = raw.Sub(out[i])
		sum = sum.Add(out[i])
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rem[order[a]].GreaterThan(rem[order[b]])
	})
	short := int(hundred.Sub(sum).Div(weightUnit).Round(0).IntPart())
	for k := 0; k < short && k < len(order); k++ {
		out[order[k]] = out[order[k]].Add(weightUnit)
	}
	return out
}

// percentOf returns n/d*100 rounded to places, or nil when d is zero.
func percentOf(n, d decimal.Decimal, places int32) *float64 {
	if d.IsZero() {
		return nil
	}
	v := n.Div(d).Mul(hundred).Round(places).InexactFloat64()
	return &v
}

func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func toFloatPtr(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.InexactFloat64()
	return &v
}
