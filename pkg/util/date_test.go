package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 2025-01-15 03:00 in UTC+9 is still the 14th in UTC.
	ts := time.Date(2025, 1, 15, 3, 0, 0, 0, loc)
	assert.Equal(t, "2025-01-14", FormatDate(ts))
	assert.Equal(t, "", FormatDatePtr(nil))
	assert.Equal(t, "2025-01-14", FormatDatePtr(&ts))
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2019-03-15")
	require.True(t, ok)
	assert.Equal(t, time.March, got.Month())

	_, ok = ParseDate("15/03/2019")
	assert.False(t, ok)
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitCSV(" a:9092, ,b:9092 "))
	assert.Empty(t, SplitCSV(""))
}

func TestParseFloatDefault(t *testing.T) {
	assert.Equal(t, 7.5, ParseFloatDefault(" 7.5 ", 5))
	assert.Equal(t, 5.0, ParseFloatDefault("x", 5))
	assert.Equal(t, 3, ParseIntDefault("3", 1))
}
