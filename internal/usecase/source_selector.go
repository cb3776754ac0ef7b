package usecase

import (
	"context"
	"time"

	domrepo "FinAdvise/internal/domain/repository"
	applogger "FinAdvise/pkg/logger"
)

// HealthFunc probes a durable store.
type HealthFunc func(ctx context.Context) error

// SelectSource decides once, at start-up, where lookups begin. A configured
// durable store yields Live; nil yields Fallback. The optional probe only
// warns: an unreachable store is still Live and each lookup demotes itself
// through the fallback chain. The decision is never revisited.
func SelectSource(ctx context.Context, durable domrepo.AdvisoryStore, probe HealthFunc, l *applogger.Logger) domrepo.Source {
	if l == nil {
		l = applogger.Nop()
	}
	if durable == nil {
		l.Info("data source selected", applogger.String("source", string(domrepo.SourceFallback)),
			applogger.String("reason", "durable store not configured"))
		return domrepo.FallbackSource()
	}

	if probe != nil {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := probe(pctx); err != nil {
			l.Warn("durable store ping failed at start-up; lookups will fall back per call",
				applogger.Error(err))
		}
	}

	l.Info("data source selected", applogger.String("source", string(domrepo.SourceLive)))
	return domrepo.LiveSource(durable)
}
