package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UnclassifiedBucket collects holdings whose grouping label is missing.
const UnclassifiedBucket = "Unclassified"

// Holding is a single position inside an account.
type Holding struct {
	Symbol      string
	Name        string
	Quantity    decimal.Decimal
	CostBasis   decimal.Decimal
	MarketValue decimal.Decimal
	AssetClass  string
	Sector      string
}

// UnrealizedGain is market value minus cost basis.
func (h Holding) UnrealizedGain() decimal.Decimal {
	return h.MarketValue.Sub(h.CostBasis)
}

// GroupBy selects how holdings are bucketed.
type GroupBy string

const (
	GroupByNone       GroupBy = "none"
	GroupByAssetClass GroupBy = "assetClass"
	GroupBySector     GroupBy = "sector"
)

// Key returns the bucket label for h. Empty labels map to UnclassifiedBucket.
func (g GroupBy) Key(h Holding) string {
	var k string
	switch g {
	case GroupByAssetClass:
		k = h.AssetClass
	case GroupBySector:
		k = h.Sector
	}
	k = strings.TrimSpace(k)
	if k == "" {
		return UnclassifiedBucket
	}
	return k
}
