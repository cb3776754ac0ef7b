package models

import "github.com/shopspring/decimal"

// PerformancePeriods lists reporting periods in display order.
var PerformancePeriods = []string{"MTD", "QTD", "YTD", "1Y", "3Y", "5Y", "ITD"}

// PeriodRank returns the display position of a period, unknown periods last.
func PeriodRank(period string) int {
	for i, p := range PerformancePeriods {
		if p == period {
			return i
		}
	}
	return len(PerformancePeriods)
}

// PerformancePeriod is a client's return over one period against a benchmark.
type PerformancePeriod struct {
	Period        string
	Return        decimal.Decimal
	Benchmark     decimal.Decimal
	BenchmarkName string
}
