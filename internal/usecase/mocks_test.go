package usecase

import (
	"context"
	"sync"

	"FinAdvise/internal/domain/models"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SearchClients(ctx context.Context, query string, status models.StatusFilter, limit int) ([]models.Client, error) {
	args := m.Called(ctx, query, status, limit)
	v, _ := args.Get(0).([]models.Client)
	return v, args.Error(1)
}

func (m *mockStore) GetClient(ctx context.Context, idOrName string) (*models.Client, error) {
	args := m.Called(ctx, idOrName)
	v, _ := args.Get(0).(*models.Client)
	return v, args.Error(1)
}

func (m *mockStore) ListHoldings(ctx context.Context, accountID string) ([]models.Holding, error) {
	args := m.Called(ctx, accountID)
	v, _ := args.Get(0).([]models.Holding)
	return v, args.Error(1)
}

func (m *mockStore) GetAllocationPolicy(ctx context.Context, clientID string) (*models.AllocationPolicy, error) {
	args := m.Called(ctx, clientID)
	v, _ := args.Get(0).(*models.AllocationPolicy)
	return v, args.Error(1)
}

func (m *mockStore) ListPerformance(ctx context.Context, clientID string) ([]models.PerformancePeriod, error) {
	args := m.Called(ctx, clientID)
	v, _ := args.Get(0).([]models.PerformancePeriod)
	return v, args.Error(1)
}

type recordingMetrics struct {
	mu        sync.Mutex
	hits      map[string]int
	fallbacks map[string]int
	errors    map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{hits: map[string]int{}, fallbacks: map[string]int{}, errors: map[string]int{}}
}

func (r *recordingMetrics) RecordSourceHit(op, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits[op+"/"+source]++
}

func (r *recordingMetrics) RecordFallback(op, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks[op+"/"+reason]++
}

func (r *recordingMetrics) RecordError(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[kind]++
}

func (r *recordingMetrics) RecordLatency(string, float64) {}

type capturingAlerts struct {
	mu     sync.Mutex
	alerts []*models.RebalanceAlert
	err    error
}

func (c *capturingAlerts) PublishRebalanceAlert(_ context.Context, a *models.RebalanceAlert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, a)
	return c.err
}

func (c *capturingAlerts) Close() error { return nil }
