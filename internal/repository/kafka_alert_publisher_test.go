package repository

import (
	"context"
	"testing"
	"time"

	"FinAdvise/internal/domain/models"
	pkgkafka "FinAdvise/pkg/kafka"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopAlertPublisher(t *testing.T) {
	var p NoopAlertPublisher
	assert.NoError(t, p.PublishRebalanceAlert(context.Background(), &models.RebalanceAlert{ClientID: "client-001"}))
	assert.NoError(t, p.Close())
}

func TestKafkaAlertPublisher_UnreachableBroker(t *testing.T) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers([]string{"127.0.0.1:1"}),
		pkgkafka.WithTopic("advisory.rebalance-alerts"),
		pkgkafka.WithMaxAttempts(1),
		pkgkafka.WithRegisterer(nil),
	)
	require.NoError(t, err)
	p := NewKafkaAlertPublisher(producer)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, p.PublishRebalanceAlert(ctx, nil))

	alert := &models.RebalanceAlert{ClientID: "client-002", MaxAbsDrift: 11.3, Threshold: 5}
	err = p.PublishRebalanceAlert(ctx, alert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client-002")
	_, perr := uuid.Parse(alert.EventID)
	assert.NoError(t, perr, "event id assigned before publishing")

	assert.Error(t, p.Ping(ctx))
}
