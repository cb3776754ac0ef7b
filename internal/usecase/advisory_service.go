package usecase

import (
	"context"
	"time"

	"FinAdvise/internal/domain/models"
	domrepo "FinAdvise/internal/domain/repository"
	applogger "FinAdvise/pkg/logger"
	"FinAdvise/pkg/util"

	"github.com/shopspring/decimal"
)

const storeErrorMessage = "Advisory data is temporarily unavailable. Please try again later."

// AdvisoryService exposes the advisory tool operations. Every method returns
// a populated result envelope; failures are reported through Success=false.
type AdvisoryService struct {
	chain     *FallbackChain
	drift     *DriftCalculator
	alerts    domrepo.AlertPublisher
	l         *applogger.Logger
	clock     func() time.Time
	tolerance decimal.Decimal
	topN      int
	benchmark string
}

// Option configures AdvisoryService.
type Option func(*AdvisoryService)

// WithClock injects the source of asOfDate.
func WithClock(clock func() time.Time) Option {
	return func(s *AdvisoryService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithWeightTolerance sets the allowed deviation of summed holding weights from 100.
func WithWeightTolerance(tol float64) Option {
	return func(s *AdvisoryService) {
		if tol >= 0 {
			s.tolerance = decimal.NewFromFloat(tol)
		}
	}
}

// WithTopHoldings caps topHoldings in client profiles.
func WithTopHoldings(n int) Option {
	return func(s *AdvisoryService) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithDefaultBenchmark names the benchmark used when a request omits it.
func WithDefaultBenchmark(name string) Option {
	return func(s *AdvisoryService) {
		if name != "" {
			s.benchmark = name
		}
	}
}

// WithAlertPublisher enables rebalance alerts.
func WithAlertPublisher(p domrepo.AlertPublisher) Option {
	return func(s *AdvisoryService) {
		if p != nil {
			s.alerts = p
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *applogger.Logger) Option {
	return func(s *AdvisoryService) {
		if l != nil {
			s.l = l
		}
	}
}

func NewAdvisoryService(chain *FallbackChain, drift *DriftCalculator, opts ...Option) *AdvisoryService {
	s := &AdvisoryService{
		chain:     chain,
		drift:     drift,
		alerts:    noopAlerts{},
		l:         applogger.Nop(),
		clock:     time.Now,
		tolerance: decimal.NewFromFloat(0.1),
		topN:      10,
		benchmark: "S&P 500",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AdvisoryService) envelope() models.Envelope {
	return models.Envelope{AsOfDate: util.FormatDate(s.clock())}
}

// fail fills the envelope for a lookup that produced nothing.
func fail[T any](env *models.Envelope, lk Lookup[T], notFound string) {
	env.Success = false
	env.Source = lk.Source
	if lk.Err != nil {
		env.Error = storeErrorMessage
		return
	}
	env.Error = notFound
}

// storeFor returns the store that produced a lookup, so follow-up reads stay on the same source.
func (s *AdvisoryService) storeFor(source models.DataSource) domrepo.AdvisoryStore {
	if source == models.SourceDatabase {
		if d, ok := s.chain.source.Durable(); ok {
			return d
		}
	}
	return s.chain.fallback
}

type noopAlerts struct{}

func (noopAlerts) PublishRebalanceAlert(context.Context, *models.RebalanceAlert) error { return nil }
func (noopAlerts) Close() error                                                       { return nil }
