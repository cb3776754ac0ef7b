package repository

import (
	"context"

	"FinAdvise/internal/domain/models"
)

// AdvisoryStore is a read-only provider of client, account and holding data.
// Both the durable store and the static fallback dataset implement it.
// Lookups that match nothing return an empty value and a nil error.
type AdvisoryStore interface {
	SearchClients(ctx context.Context, query string, status models.StatusFilter, limit int) ([]models.Client, error)
	GetClient(ctx context.Context, idOrName string) (*models.Client, error)
	ListHoldings(ctx context.Context, accountID string) ([]models.Holding, error)
	GetAllocationPolicy(ctx context.Context, clientID string) (*models.AllocationPolicy, error)
	ListPerformance(ctx context.Context, clientID string) ([]models.PerformancePeriod, error)
}

// AlertPublisher emits rebalancing alerts to downstream consumers.
type AlertPublisher interface {
	PublishRebalanceAlert(ctx context.Context, alert *models.RebalanceAlert) error
	Close() error
}

// Metrics records tool-level measurements.
type Metrics interface {
	RecordSourceHit(op, source string)
	RecordFallback(op, reason string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
