package server

import (
	"context"
	"fmt"

	"FinAdvise/internal/handler/mcptools"
	"FinAdvise/pkg/config"
	xhttp "FinAdvise/pkg/http"
	"FinAdvise/pkg/http/middleware"
	applogger "FinAdvise/pkg/logger"
)

// Resource is released when the application shuts down.
type Resource struct {
	Name  string
	Close func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	httpHandler xhttp.Handler
	mcpServer   *mcptools.Server
	limiter     middleware.Allower
	health      xhttp.HealthFunc
	resources   []Resource
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpHandler xhttp.Handler,
	mcpServer *mcptools.Server,
	limiter middleware.Allower,
	health xhttp.HealthFunc,
	resources []Resource,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:         cfg,
		l:           l,
		httpHandler: httpHandler,
		mcpServer:   mcpServer,
		limiter:     limiter,
		health:      health,
		resources:   resources,
	}
}

// Logger returns the application logger.
func (a *App) Logger() *applogger.Logger {
	return a.l
}

// Run serves the configured transport until ctx is cancelled, then releases
// every resource.
func (a *App) Run(ctx context.Context) error {
	var err error
	switch a.cfg.Transport {
	case "stdio":
		err = a.runStdio(ctx)
	default:
		err = a.runHTTP(ctx)
	}
	a.shutdown()
	return err
}

func (a *App) runStdio(ctx context.Context) error {
	if a.mcpServer == nil {
		return fmt.Errorf("stdio transport requires an mcp server")
	}
	return a.mcpServer.RunStdio(ctx)
}

func (a *App) runHTTP(ctx context.Context) error {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
		xhttp.WithSlowThreshold(a.cfg.Server.SlowThreshold),
		xhttp.WithHealth(a.health),
	}
	if a.limiter != nil {
		opts = append(opts, xhttp.WithRateLimiter(a.limiter))
	}
	a.httpServer = xhttp.NewServer(a.httpHandler, a.l, opts...)

	errCh := a.httpServer.Start()
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	}

	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		return err
	}
	return nil
}

// shutdown releases resources in reverse order of acquisition.
func (a *App) shutdown() {
	a.l.Info("shutting down...")
	for i := len(a.resources) - 1; i >= 0; i-- {
		r := a.resources[i]
		if r.Close == nil {
			continue
		}
		if err := r.Close(); err != nil {
			a.l.Warn("resource close error", applogger.String("resource", r.Name), applogger.Error(err))
		}
	}
	a.l.Info("shutdown complete")
}
