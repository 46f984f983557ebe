//go:build wireinject
// +build wireinject

package di

import (
	"StockDash/pkg/config"
	"StockDash/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideKafkaProducer,
	ProvideLogger,
	ProvideMetrics,
	ProvideDomainMetrics,
	ProvideRedis,
	ProvideCache,
	ProvideClickHouse,
	ProvideAnalysisStore,
	ProvideWatchlistStore,
	ProvideEventPipeline,
	ProvideEventPublisher,
)

var upstreamSet = wire.NewSet(
	ProvideResolver,
	ProvideUpstreamClients,
	ProvideStockSource,
	ProvideNewsSource,
	ProvideAnalyzer,
	ProvideAuthenticator,
)

var usecaseSet = wire.NewSet(
	ProvideSessions,
	ProvideDetailFetcher,
	ProvideNewsAggregator,
	ProvideAnalysisUseCase,
	ProvideViewAssembler,
	ProvideAuthUseCase,
	ProvideWatchlistUseCase,
	ProvideRefreshHandler,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		infraSet,
		upstreamSet,
		usecaseSet,
		ProvideRefreshQueue,
		ProvideRefreshRequester,
		ProvideKafkaConsumer,
		ProvideSessionStream,
		ProvideHandler,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeServices wires the use cases without the HTTP server, for CLI commands.
func InitializeServices(cfg *config.Config) (*Services, func(), error) {
	wire.Build(
		infraSet,
		upstreamSet,
		usecaseSet,
		ProvideServices,
	)
	return nil, nil, nil
}
