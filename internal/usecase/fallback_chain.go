package usecase

import (
	"context"
	"time"

	"FinAdvise/internal/domain/models"
	domrepo "FinAdvise/internal/domain/repository"
	applogger "FinAdvise/pkg/logger"
	"FinAdvise/pkg/metrics"
)

// LookupState is a node of the durable-then-fallback state machine.
type LookupState string

const (
	StateTryDurable  LookupState = "TRY_DURABLE"
	StateMatched     LookupState = "MATCHED"
	StateEmpty       LookupState = "EMPTY"
	StateError       LookupState = "ERROR"
	StateTryFallback LookupState = "TRY_FALLBACK"
	StateResultFound LookupState = "RESULT_FOUND"
	StateResultEmpty LookupState = "RESULT_EMPTY"
)

// Fallback reasons recorded in logs and metrics.
const (
	reasonEmpty       = "empty"
	reasonUnavailable = "unavailable"
	reasonNotLive     = "not_configured"
)

// Lookup is the outcome of one chained lookup.
// Err is set only when the durable store failed for a reason other than
// connectivity; such failures end the chain without consulting the fallback.
type Lookup[T any] struct {
	Value  T
	Source models.DataSource
	State  LookupState
	Trace  []LookupState
	Err    error
}

// Found reports whether either source produced a non-empty value.
func (l Lookup[T]) Found() bool {
	return l.State == StateMatched || l.State == StateResultFound
}

// FallbackChain routes lookups to the durable store when the source is Live
// and to the static dataset when it is Fallback, or when the durable attempt
// was unavailable or empty.
type FallbackChain struct {
	source   domrepo.Source
	fallback domrepo.AdvisoryStore
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

func NewFallbackChain(source domrepo.Source, fallback domrepo.AdvisoryStore, m domrepo.Metrics, l *applogger.Logger) *FallbackChain {
	if m == nil {
		m = metrics.Nop{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &FallbackChain{source: source, fallback: fallback, metrics: m, l: l}
}

// Source returns the variant chosen at start-up.
func (c *FallbackChain) Source() domrepo.Source {
	return c.source
}

type fetchFunc[T any] func(ctx context.Context, store domrepo.AdvisoryStore) (T, error)

// runLookup drives the state machine for one operation. isEmpty decides the
// EMPTY and RESULT_EMPTY transitions.
func runLookup[T any](ctx context.Context, c *FallbackChain, op string, fetch fetchFunc[T], isEmpty func(T) bool) Lookup[T] {
	start := time.Now()
	defer func() { c.metrics.RecordLatency(op, time.Since(start).Seconds()) }()

	var res Lookup[T]
	step := func(s LookupState) {
		res.State = s
		res.Trace = append(res.Trace, s)
		c.l.Debug("lookup transition", applogger.String("op", op), applogger.String("state", string(s)))
	}

	reason := reasonNotLive
	if durable, ok := c.source.Durable(); ok {
		step(StateTryDurable)
		v, err := fetch(ctx, durable)
		switch {
		case err == nil && !isEmpty(v):
			step(StateMatched)
			res.Value = v
			res.Source = models.SourceDatabase
			c.metrics.RecordSourceHit(op, string(res.Source))
			return res
		case err == nil:
			step(StateEmpty)
			reason = reasonEmpty
		case domrepo.IsSourceUnavailable(err):
			step(StateError)
			reason = reasonUnavailable
		default:
			step(StateError)
			res.Err = err
			c.metrics.RecordError("store")
			c.l.Error("durable lookup failed", applogger.String("op", op), applogger.Error(err))
			return res
		}

		fields := []applogger.Field{
			applogger.String("op", op),
			applogger.String("from", string(StateTryDurable)),
			applogger.String("to", string(StateTryFallback)),
			applogger.String("reason", reason),
		}
		if err != nil {
			fields = append(fields, applogger.Error(err))
		}
		c.l.Warn("falling back to static dataset", fields...)
		c.metrics.RecordFallback(op, reason)
	}

	step(StateTryFallback)
	res.Source = models.SourceMock
	v, err := fetch(ctx, c.fallback)
	if err != nil {
		step(StateError)
		res.Err = err
		c.metrics.RecordError("fallback")
		c.l.Error("fallback lookup failed", applogger.String("op", op), applogger.Error(err))
		return res
	}
	if isEmpty(v) {
		step(StateResultEmpty)
		c.l.Debug("lookup found nothing", applogger.String("op", op), applogger.String("reason", reason))
		return res
	}
	step(StateResultFound)
	res.Value = v
	c.metrics.RecordSourceHit(op, string(res.Source))
	return res
}

// SearchClients runs the client search through the chain.
func (c *FallbackChain) SearchClients(ctx context.Context, query string, status models.StatusFilter, limit int) Lookup[[]models.Client] {
	return runLookup(ctx, c, models.ToolResolveClients,
		func(ctx context.Context, s domrepo.AdvisoryStore) ([]models.Client, error) {
			return s.SearchClients(ctx, query, status, limit)
		},
		func(v []models.Client) bool { return len(v) == 0 },
	)
}

// GetClient resolves one client by id or full name.
func (c *FallbackChain) GetClient(ctx context.Context, op, idOrName string) Lookup[*models.Client] {
	return runLookup(ctx, c, op,
		func(ctx context.Context, s domrepo.AdvisoryStore) (*models.Client, error) {
			return s.GetClient(ctx, idOrName)
		},
		func(v *models.Client) bool { return v == nil },
	)
}

// ListHoldings returns the holdings of an open account.
func (c *FallbackChain) ListHoldings(ctx context.Context, accountID string) Lookup[[]models.Holding] {
	return runLookup(ctx, c, models.ToolAggregateHoldings,
		func(ctx context.Context, s domrepo.AdvisoryStore) ([]models.Holding, error) {
			return s.ListHoldings(ctx, accountID)
		},
		func(v []models.Holding) bool { return len(v) == 0 },
	)
}

// GetAllocationPolicy returns a client's target and actual allocation.
func (c *FallbackChain) GetAllocationPolicy(ctx context.Context, clientID string) Lookup[*models.AllocationPolicy] {
	return runLookup(ctx, c, models.ToolComputeAllocationDrift,
		func(ctx context.Context, s domrepo.AdvisoryStore) (*models.AllocationPolicy, error) {
			return s.GetAllocationPolicy(ctx, clientID)
		},
		func(v *models.AllocationPolicy) bool { return v.IsEmpty() },
	)
}

// ListPerformance returns a client's latest performance snapshot.
func (c *FallbackChain) ListPerformance(ctx context.Context, clientID string) Lookup[[]models.PerformancePeriod] {
	return runLookup(ctx, c, models.ToolGetPortfolioPerformance,
		func(ctx context.Context, s domrepo.AdvisoryStore) ([]models.PerformancePeriod, error) {
			return s.ListPerformance(ctx, clientID)
		},
		func(v []models.PerformancePeriod) bool { return len(v) == 0 },
	)
}
