package repository

import (
	"strings"

	"github.com/shopspring/decimal"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a lower-cased substring pattern with LIKE wildcards
// in the query escaped, so both stores share the fallback's substring semantics.
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"
}

func parseNullDecimal(raw *string) (decimal.NullDecimal, error) {
	if raw == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

var hundred = decimal.NewFromInt(100)

// AllocationFromValues converts per-class market values into percentages of
// their total, rounded to one decimal. A zero total yields an empty map.
func AllocationFromValues(values map[string]decimal.Decimal) map[string]decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	out := make(map[string]decimal.Decimal, len(values))
	if total.IsZero() {
		return out
	}
	for class, v := range values {
		out[class] = v.Div(total).Mul(hundred).Round(1)
	}
	return out
}
