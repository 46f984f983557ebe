//go:build !wireinject
// +build !wireinject

package di

import (
	"StockDash/pkg/config"
	"StockDash/pkg/server"
)

// Injectors from wire.go, written out by hand. Keep the call order and the
// cleanup chains in step with the provider signatures.

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	producer, cleanup, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger, cleanup2, err := ProvideLogger(cfg, producer)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	recorder := ProvideMetrics()
	resolver := ProvideResolver(cfg)
	upstreamClients := ProvideUpstreamClients(cfg, resolver, recorder)
	stockSource := ProvideStockSource(upstreamClients)
	metrics := ProvideDomainMetrics(recorder)
	detailFetcher := ProvideDetailFetcher(cfg, stockSource, resolver, metrics, logger)
	newsSource := ProvideNewsSource(upstreamClients)
	redisCache, cleanup3, err := ProvideRedis(cfg)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	service, cleanup4 := ProvideCache(redisCache)
	eventPipeline, cleanup5 := ProvideEventPipeline(cfg, producer, metrics, logger)
	eventPublisher := ProvideEventPublisher(eventPipeline)
	newsAggregator := ProvideNewsAggregator(cfg, stockSource, newsSource, service, redisCache, eventPublisher, metrics, logger)
	analyzer := ProvideAnalyzer(upstreamClients)
	client, cleanup6, err := ProvideClickHouse(cfg)
	if err != nil {
		cleanup5()
		cleanup4()
		cleanup3()
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	analysisStore, err := ProvideAnalysisStore(client, logger)
	if err != nil {
		cleanup6()
		cleanup5()
		cleanup4()
		cleanup3()
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	analysisUseCase := ProvideAnalysisUseCase(analyzer, analysisStore, eventPublisher, metrics, logger)
	viewAssembler := ProvideViewAssembler(cfg, stockSource, detailFetcher, newsAggregator, analysisUseCase, resolver, service, eventPublisher, metrics, logger)
	authenticator := ProvideAuthenticator(upstreamClients)
	manager, cleanup7 := ProvideSessions(cfg, redisCache, logger)
	authUseCase := ProvideAuthUseCase(authenticator, manager, logger)
	watchlistStore := ProvideWatchlistStore(redisCache)
	watchlistUseCase := ProvideWatchlistUseCase(authUseCase, watchlistStore)
	refreshHandler := ProvideRefreshHandler(cfg, viewAssembler, metrics, logger)
	redisQueue := ProvideRefreshQueue(cfg, redisCache, refreshHandler, logger)
	refreshRequester := ProvideRefreshRequester(cfg, producer, redisQueue, refreshHandler)
	stream := ProvideSessionStream(manager, logger)
	handler := ProvideHandler(cfg, logger, stockSource, resolver, viewAssembler, detailFetcher, newsAggregator, analysisUseCase, authUseCase, watchlistUseCase, refreshRequester, stream)
	consumer, err := ProvideKafkaConsumer(cfg, logger)
	if err != nil {
		cleanup7()
		cleanup6()
		cleanup5()
		cleanup4()
		cleanup3()
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	app := ProvideApp(cfg, logger, handler, eventPipeline, consumer, refreshHandler, redisQueue)
	return app, func() {
		cleanup7()
		cleanup6()
		cleanup5()
		cleanup4()
		cleanup3()
		cleanup2()
		cleanup()
	}, nil
}

// InitializeServices wires the use cases without the HTTP server, for CLI commands.
func InitializeServices(cfg *config.Config) (*Services, func(), error) {
	producer, cleanup, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger, cleanup2, err := ProvideLogger(cfg, producer)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	recorder := ProvideMetrics()
	resolver := ProvideResolver(cfg)
	upstreamClients := ProvideUpstreamClients(cfg, resolver, recorder)
	stockSource := ProvideStockSource(upstreamClients)
	metrics := ProvideDomainMetrics(recorder)
	detailFetcher := ProvideDetailFetcher(cfg, stockSource, resolver, metrics, logger)
	newsSource := ProvideNewsSource(upstreamClients)
	redisCache, cleanup3, err := ProvideRedis(cfg)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	service, cleanup4 := ProvideCache(redisCache)
	eventPipeline, cleanup5 := ProvideEventPipeline(cfg, producer, metrics, logger)
	eventPublisher := ProvideEventPublisher(eventPipeline)
	newsAggregator := ProvideNewsAggregator(cfg, stockSource, newsSource, service, redisCache, eventPublisher, metrics, logger)
	analyzer := ProvideAnalyzer(upstreamClients)
	client, cleanup6, err := ProvideClickHouse(cfg)
	if err != nil {
		cleanup5()
		cleanup4()
		cleanup3()
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	analysisStore, err := ProvideAnalysisStore(client, logger)
	if err != nil {
		cleanup6()
		cleanup5()
		cleanup4()
		cleanup3()
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	analysisUseCase := ProvideAnalysisUseCase(analyzer, analysisStore, eventPublisher, metrics, logger)
	viewAssembler := ProvideViewAssembler(cfg, stockSource, detailFetcher, newsAggregator, analysisUseCase, resolver, service, eventPublisher, metrics, logger)
	services := ProvideServices(logger, viewAssembler, newsAggregator, analysisUseCase, eventPipeline)
	return services, func() {
		cleanup6()
		cleanup5()
		cleanup4()
		cleanup3()
		cleanup2()
		cleanup()
	}, nil
}
