//go:build wireinject
// +build wireinject

package di

import (
	"FinAdvise/pkg/config"
	"FinAdvise/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Data sources
		ProvideDurableStore,
		ProvideFallbackDataset,
		ProvideSource,

		// Use cases
		ProvideFallbackChain,
		ProvideDriftCalculator,
		ProvideAlertPublisher,
		ProvideAdvisoryService,

		// Transports
		ProvideHTTPHandler,
		ProvideMCPServer,
		ProvideRateLimiter,
		ProvideHealth,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
