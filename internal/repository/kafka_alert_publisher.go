package repository

import (
	"context"
	"fmt"

	"FinAdvise/internal/domain/models"
	domrepo "FinAdvise/internal/domain/repository"
	pkgkafka "FinAdvise/pkg/kafka"

	"github.com/google/uuid"
)

const alertEventType = "advisory.rebalance_needed"

// KafkaAlertPublisher implements AlertPublisher for Kafka.
// Alerts are keyed by client so one client's alerts stay ordered.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
}

// NewKafkaAlertPublisher creates Kafka alert publisher.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer}
}

func (p *KafkaAlertPublisher) PublishRebalanceAlert(ctx context.Context, alert *models.RebalanceAlert) error {
	if alert == nil {
		return nil
	}
	if alert.EventID == "" {
		alert.EventID = uuid.NewString()
	}
	err := p.producer.PublishJSON(ctx, alert.ClientID, alert,
		pkgkafka.Header{Key: "event-type", Value: alertEventType},
		pkgkafka.Header{Key: "event-id", Value: alert.EventID},
	)
	if err != nil {
		return fmt.Errorf("publish rebalance alert %s: %w", alert.ClientID, err)
	}
	return nil
}

// Ping reports whether any configured broker accepts connections.
func (p *KafkaAlertPublisher) Ping(ctx context.Context) error {
	return p.producer.Ping(ctx)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopAlertPublisher drops alerts. Used when alerting is disabled.
type NoopAlertPublisher struct{}

var (
	_ domrepo.AlertPublisher = (*KafkaAlertPublisher)(nil)
	_ domrepo.AlertPublisher = NoopAlertPublisher{}
)

func (NoopAlertPublisher) PublishRebalanceAlert(context.Context, *models.RebalanceAlert) error {
	return nil
}

func (NoopAlertPublisher) Close() error { return nil }
