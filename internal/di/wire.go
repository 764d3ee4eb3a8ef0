//go:build wireinject
// +build wireinject

package di

import (
	"marketpulse/pkg/config"
	"marketpulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCacheStore,
		ProvidePublisher,
		ProvideTaskStore,

		// Upstream clients
		ProvideQuoteFetcher,
		ProvideHeadlineFetcher,
		ProvideSummarizer,

		// Use cases
		ProvideAggregator,
		ProvideSynthesizer,
		ProvideBriefService,

		// HTTP surface and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
