//go:build wireinject
// +build wireinject

package di

import (
	"MacroTilt/internal/usecase"
	"MacroTilt/pkg/config"
	"MacroTilt/pkg/server"

	"github.com/google/wire"
)

// coreSet builds the rebalance use case and everything under it.
var coreSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,

	// Acquisition and cache
	ProvideFREDClient,
	ProvideCacheBackend,
	ProvideCachedFetcher,
	ProvideSnapshotCollector,

	// Stores and downstream
	ProvideClickHouseClient,
	ProvideStores,
	ProvideKafkaProducer,
	ProvidePublisher,

	// Engine and use case
	ProvideEngine,
	ProvideRebalanceUseCase,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		coreSet,

		// Surfaces
		ProvideKafkaConsumer,
		ProvideKafkaRequestsHandler,
		ProvideFeedHandler,
		ProvideCacheWarmer,
		ProvideScheduler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeRebalanceUseCase wires only the use case, for one-shot callers such as the CLI.
func InitializeRebalanceUseCase(cfg *config.Config) (*usecase.RebalanceUseCase, error) {
	wire.Build(coreSet)
	return &usecase.RebalanceUseCase{}, nil
}
