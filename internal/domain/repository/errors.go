package repository

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable marks a durable store that is unreachable or misconfigured.
// Only errors wrapping it demote a lookup to the fallback dataset.
var ErrSourceUnavailable = errors.New("data source unavailable")

// Unavailable wraps err so that errors.Is(err, ErrSourceUnavailable) holds.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrSourceUnavailable, err)
}

// IsSourceUnavailable reports whether err was classified as a connectivity failure.
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}
