package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestLogger_FileOutputAndFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	child := l.With(String("env", "test"), Error(errors.New("boom")))
	child.Debug("dropped")
	child.Info("holding weights",
		Decimal("weight_sum", decimal.RequireFromString("99.95")),
		Int("rows", 3),
		Bool("closed", false),
		Strings("fields", []string{"query", "status"}),
	)

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	got := lines[0]
	assert.Equal(t, "holding weights", got["message"])
	assert.Equal(t, "test", got["env"])
	assert.Equal(t, "boom", got["error"])
	assert.Equal(t, "99.95", got["weight_sum"])
	assert.Equal(t, 3.0, got["rows"])
	assert.Equal(t, false, got["closed"])
	assert.Equal(t, "query, status", got["fields"])
}

func TestLogger_InvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().With(Int64("n", 1)).Error("ignored", Error(nil), Duration("took", 0))
	})
}
