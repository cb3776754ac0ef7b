package postgres

import "time"

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds Postgres pool configuration.
type ClientConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnIdleTime  time.Duration
	MaxConnLifetime  time.Duration
	ConnectTimeout   time.Duration
	ApplicationName  string
	StatementTimeout time.Duration
}

// WithDSN sets the connection string.
func WithDSN(dsn string) ClientOption {
	return func(c *ClientConfig) {
		c.DSN = dsn
	}
}

// WithMaxConnections sets max and min pool size.
func WithMaxConnections(maxConns, minConns int32) ClientOption {
	return func(c *ClientConfig) {
		c.MaxConns = maxConns
		c.MinConns = minConns
	}
}

// WithTimeouts sets idle and connect timeouts.
func WithTimeouts(idle, connect time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.MaxConnIdleTime = idle
		c.ConnectTimeout = connect
	}
}

// WithMaxConnLifetime recycles connections older than d.
func WithMaxConnLifetime(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.MaxConnLifetime = d
	}
}

// WithApplicationName tags server-side sessions.
func WithApplicationName(name string) ClientOption {
	return func(c *ClientConfig) {
		c.ApplicationName = name
	}
}

// WithStatementTimeout cancels statements running longer than d.
func WithStatementTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.StatementTimeout = d
	}
}
