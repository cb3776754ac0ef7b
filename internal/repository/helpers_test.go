package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%smith%", likePattern("  Smith "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}

func TestAllocationFromValues(t *testing.T) {
	got := AllocationFromValues(map[string]decimal.Decimal{
		"US Equity":    decimal.NewFromInt(230000),
		"Fixed Income": decimal.NewFromInt(88800),
		"Cash":         decimal.NewFromInt(131200),
	})
	assert.Equal(t, "51.1", got["US Equity"].String())
	assert.Equal(t, "19.7", got["Fixed Income"].String())
	assert.Equal(t, "29.2", got["Cash"].String())

	assert.Empty(t, AllocationFromValues(map[string]decimal.Decimal{"Cash": decimal.Zero}))
}
