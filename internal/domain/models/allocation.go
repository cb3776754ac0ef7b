package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationPolicy holds a client's target and actual allocation, keyed by asset class,
// in percent. Threshold overrides the global rebalancing threshold when valid.
type AllocationPolicy struct {
	ClientID  string
	Target    map[string]decimal.Decimal
	Actual    map[string]decimal.Decimal
	Threshold decimal.NullDecimal
}

// IsEmpty reports whether neither map carries any class.
func (p *AllocationPolicy) IsEmpty() bool {
	return p == nil || (len(p.Target) == 0 && len(p.Actual) == 0)
}

// AllocationRow is the drift for one asset class.
type AllocationRow struct {
	AssetClass string  `json:"assetClass"`
	Target     float64 `json:"target"`
	Actual     float64 `json:"actual"`
	Drift      float64 `json:"drift"`
}

// AllocationDrift is the outcome of comparing target and actual allocation.
type AllocationDrift struct {
	Rows             []AllocationRow
	MaxAbsDrift      float64
	Threshold        float64
	NeedsRebalancing bool
	Recommendation   string
}

// RebalanceAlert is emitted when a client's drift crosses the threshold.
type RebalanceAlert struct {
	EventID     string          `json:"eventId"`
	ClientID    string          `json:"clientId"`
	Source      DataSource      `json:"source"`
	MaxAbsDrift float64         `json:"maxAbsDrift"`
	Threshold   float64         `json:"threshold"`
	Allocation  []AllocationRow `json:"allocation"`
	AsOfDate    string          `json:"asOfDate"`
	CreatedAt   time.Time       `json:"createdAt"`
}
