package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	domrepo "FinAdvise/internal/domain/repository"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgconn"
)

// ClickHouse server exception codes that mean the store is misconfigured.
const (
	chUnknownDatabase       = 81
	chUnknownTable          = 60
	chAuthenticationFailed  = 516
	chRequiredPassword      = 194
	chUnknownUser           = 192
	chAllConnectionsRefused = 279
)

// classify wraps err with ErrSourceUnavailable when it signals that the
// durable store cannot be reached or is misconfigured. Other errors are
// returned wrapped with op only.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConnectivityError(err) {
		return domrepo.Unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnectivityError(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	// A caller-side deadline is not an outage.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isUnavailableSQLState(pgErr.Code)
	}

	var chErr *clickhouse.Exception
	if errors.As(err, &chErr) {
		switch chErr.Code {
		case chUnknownDatabase, chUnknownTable, chAuthenticationFailed, chRequiredPassword, chUnknownUser, chAllConnectionsRefused:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// isUnavailableSQLState covers connection exceptions (08), invalid
// authorization (28), invalid catalog (3D), missing relations (42P01) and
// operator intervention (57P0x).
func isUnavailableSQLState(code string) bool {
	switch {
	case strings.HasPrefix(code, "08"),
		strings.HasPrefix(code, "28"),
		strings.HasPrefix(code, "3D"),
		code == "42P01",
		code == "57P01", code == "57P02", code == "57P03":
		return true
	default:
		return false
	}
}
