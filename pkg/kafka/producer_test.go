package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_Validation(t *testing.T) {
	_, err := NewProducer(WithTopic("advisory.alerts"), WithRegisterer(nil))
	require.Error(t, err)

	_, err = NewProducer(WithBrokers([]string{"localhost:9092"}), WithRegisterer(nil))
	require.Error(t, err)
}

func TestNewProducer_Defaults(t *testing.T) {
	p, err := NewProducer(
		WithBrokers([]string{"localhost:9092"}),
		WithTopic("advisory.alerts"),
		WithRegisterer(prometheus.NewRegistry()),
	)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "advisory.alerts", p.Topic())
	assert.IsType(t, &kafka.Hash{}, p.writer.Balancer)
	assert.Equal(t, kafka.RequireAll, p.writer.RequiredAcks)
	assert.Equal(t, kafka.Gzip, p.writer.Compression)
}

func TestNewProducer_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := []ProducerOption{
		WithBrokers([]string{"localhost:9092"}),
		WithTopic("advisory.alerts"),
		WithRegisterer(reg),
	}
	first, err := NewProducer(opts...)
	require.NoError(t, err)
	second, err := NewProducer(opts...)
	require.NoError(t, err)

	assert.Same(t, first.m.messages, second.m.messages)
}

func TestPublishJSON_UnreachableBroker(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewProducer(
		WithBrokers([]string{"127.0.0.1:1"}),
		WithTopic("advisory.alerts"),
		WithMaxAttempts(1),
		WithRegisterer(reg),
	)
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = p.PublishJSON(ctx, "client-001", map[string]int{"a": 1})
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.m.messages.WithLabelValues("advisory.alerts", "gzip", "error")))

	assert.Error(t, p.Ping(ctx))
}

func TestPublishJSON_Unencodable(t *testing.T) {
	p, err := NewProducer(
		WithBrokers([]string{"localhost:9092"}),
		WithTopic("advisory.alerts"),
		WithRegisterer(nil),
	)
	require.NoError(t, err)
	defer p.Close()

	err = p.PublishJSON(context.Background(), "k", func() {})
	assert.ErrorContains(t, err, "marshal value")
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression("unknown"))
}
