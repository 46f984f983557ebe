package di

import (
	"context"
	"fmt"
	"time"

	domrepo "StockDash/internal/domain/repository"
	domsvc "StockDash/internal/domain/service"
	"StockDash/internal/handler/api"
	mid "StockDash/internal/middleware"
	internalrepo "StockDash/internal/repository"
	"StockDash/internal/service/endpoint"
	"StockDash/internal/service/ratelimit"
	"StockDash/internal/service/session"
	"StockDash/internal/service/sessionstream"
	"StockDash/internal/services/upstream"
	"StockDash/internal/usecase"
	"StockDash/pkg/cache"
	pkgch "StockDash/pkg/clickhouse"
	"StockDash/pkg/config"
	xhttp "StockDash/pkg/http"
	pkgkafka "StockDash/pkg/kafka"
	applogger "StockDash/pkg/logger"
	"StockDash/pkg/metrics"
	"StockDash/pkg/queue"
	"StockDash/pkg/server"
)

const userAgent = "stockdash/1.0"

// ProvideLogger builds the app logger. With kafka enabled, error logs are also
// aggregated and shipped to the log topic.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil && cfg.Log.Topic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval: 30 * time.Second,
			Topic:        cfg.Log.Topic,
			Publisher:    producer,
		})
	}
	return l, l.RemoveCollector, nil
}

// ProvideMetrics registers the pipeline recorder on the default registry.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

func ProvideDomainMetrics(r *metrics.Recorder) domrepo.Metrics {
	return r
}

func ProvideResolver(cfg *config.Config) *endpoint.Resolver {
	return endpoint.FromConfig(cfg)
}

// UpstreamClients groups the per-host clients. Analysis gets its own HTTP client
// because its endpoints run a model and need a longer timeout.
type UpstreamClients struct {
	Stock    *upstream.StockClient
	News     *upstream.NewsClient
	Analysis *upstream.AnalysisClient
	Auth     *upstream.AuthClient
}

func ProvideUpstreamClients(cfg *config.Config, urls *endpoint.Resolver, rec *metrics.Recorder) *UpstreamClients {
	common := []xhttp.ClientOption{
		xhttp.WithRateLimit(cfg.Upstream.RPS, cfg.Upstream.Burst),
		xhttp.WithObserver(rec.ObserveUpstream),
		xhttp.WithUserAgent(userAgent),
	}
	base := upstream.NewHTTPServiceBase(urls, xhttp.NewClient(append(common, xhttp.WithTimeout(cfg.Upstream.Timeout))...))
	slow := upstream.NewHTTPServiceBase(urls, xhttp.NewClient(append(common, xhttp.WithTimeout(cfg.Upstream.AnalysisTimeout))...))
	return &UpstreamClients{
		Stock:    upstream.NewStockClient(base),
		News:     upstream.NewNewsClient(base),
		Analysis: upstream.NewAnalysisClient(slow),
		Auth:     upstream.NewAuthClient(base),
	}
}

func ProvideStockSource(u *UpstreamClients) domsvc.StockSource     { return u.Stock }
func ProvideNewsSource(u *UpstreamClients) domsvc.NewsSource       { return u.News }
func ProvideAnalyzer(u *UpstreamClients) domsvc.Analyzer           { return u.Analysis }
func ProvideAuthenticator(u *UpstreamClients) domsvc.Authenticator { return u.Auth }

// ProvideRedis returns nil when redis is disabled.
func ProvideRedis(cfg *config.Config) (*cache.RedisCache, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdle),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return rc, func() { _ = rc.Close() }, nil
}

// ProvideCache layers memory over redis, or runs in memory alone.
func ProvideCache(rc *cache.RedisCache) (cache.Service, func()) {
	if rc != nil {
		lc := cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(2000))
		return lc, func() {}
	}
	mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(5000))
	return mc, func() { _ = mc.Close() }
}

// ProvideKafkaProducer returns nil when kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideKafkaConsumer returns nil when kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.LoggingHook{Log: l, Slow: 10 * time.Second})
	return consumer, nil
}

// ProvideClickHouse returns nil when clickhouse is disabled.
func ProvideClickHouse(cfg *config.Config) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideAnalysisStore prefers clickhouse and falls back to memory.
func ProvideAnalysisStore(ch *pkgch.Client, l *applogger.Logger) (domrepo.AnalysisStore, error) {
	if ch == nil {
		return internalrepo.NewMemoryAnalysisStore(0), nil
	}
	store := internalrepo.NewCHAnalysisStore(ch, l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

func ProvideWatchlistStore(rc *cache.RedisCache) domrepo.WatchlistStore {
	if rc == nil {
		return internalrepo.NewMemoryWatchlistStore()
	}
	return internalrepo.NewRedisWatchlistStore(rc)
}

// ProvideEventPipeline throttles and buffers domain events in front of kafka, or the log.
func ProvideEventPipeline(cfg *config.Config, producer *pkgkafka.Producer, m domrepo.Metrics, l *applogger.Logger) (*mid.EventPipeline, func()) {
	var next domrepo.EventPublisher = internalrepo.NewLogEventPublisher(l)
	if producer != nil {
		next = internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic, nil)
	}
	p := mid.NewEventPipeline(next, m, mid.WithMaxRPS(20), mid.WithBufferSize(1000))
	return p, func() { _ = p.Close() }
}

func ProvideEventPublisher(p *mid.EventPipeline) domrepo.EventPublisher {
	return p
}

// ProvideSessions keeps tokens out of the shared response cache so cache
// pressure never logs anyone out: redis directly when enabled, otherwise an
// unbounded in-process store.
func ProvideSessions(cfg *config.Config, rc *cache.RedisCache, l *applogger.Logger) (*session.Manager, func()) {
	opts := []session.Option{session.WithLogger(l), session.WithTokenTTL(cfg.Session.TokenTTL)}
	if rc != nil {
		return session.NewManager(rc, opts...), func() {}
	}
	store := cache.NewMemoryCache(cache.WithMemoryMaxSize(0), cache.WithMemoryCleanup(time.Minute))
	return session.NewManager(store, opts...), func() { _ = store.Close() }
}

func ProvideDetailFetcher(cfg *config.Config, stocks domsvc.StockSource, urls *endpoint.Resolver, m domrepo.Metrics, l *applogger.Logger) *usecase.DetailFetcher {
	return usecase.NewDetailFetcher(stocks, urls, m, cfg.Pipeline.DetailConcurrency, l)
}

// ProvideNewsAggregator uses the shared cache for results; the in-flight guard is
// distributed only when redis backs the cache.
func ProvideNewsAggregator(
	cfg *config.Config,
	stocks domsvc.StockSource,
	news domsvc.NewsSource,
	c cache.Service,
	rc *cache.RedisCache,
	events domrepo.EventPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.NewsAggregator {
	opts := []usecase.NewsOption{
		usecase.WithNewsLimit(cfg.Pipeline.NewsLimit),
		usecase.WithNewsCache(c, cfg.Pipeline.NewsTTL),
		usecase.WithNewsEvents(events),
	}
	if rc != nil {
		opts = append(opts, usecase.WithDistributedGuard(cfg.Pipeline.InFlightTTL))
	}
	return usecase.NewNewsAggregator(stocks, news, m, l, opts...)
}

func ProvideAnalysisUseCase(analyzer domsvc.Analyzer, store domrepo.AnalysisStore, events domrepo.EventPublisher, m domrepo.Metrics, l *applogger.Logger) *usecase.AnalysisUseCase {
	return usecase.NewAnalysisUseCase(analyzer, store, events, m, l)
}

func ProvideViewAssembler(
	cfg *config.Config,
	stocks domsvc.StockSource,
	details *usecase.DetailFetcher,
	news *usecase.NewsAggregator,
	analysis *usecase.AnalysisUseCase,
	urls *endpoint.Resolver,
	c cache.Service,
	events domrepo.EventPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.ViewAssembler {
	return usecase.NewViewAssembler(stocks, details, news, analysis, urls, c, events, m, l, usecase.ViewConfig{
		PageSize:  cfg.Pipeline.PageSize,
		RankSize:  cfg.Pipeline.ChangeRankSize,
		ChartDays: cfg.Pipeline.ChartDays,
		TableTTL:  cfg.Pipeline.TableTTL,
	})
}

func ProvideAuthUseCase(auth domsvc.Authenticator, sessions *session.Manager, l *applogger.Logger) *usecase.AuthUseCase {
	return usecase.NewAuthUseCase(auth, sessions, l)
}

func ProvideWatchlistUseCase(auth *usecase.AuthUseCase, store domrepo.WatchlistStore) *usecase.WatchlistUseCase {
	return usecase.NewWatchlistUseCase(auth, store)
}

func ProvideRefreshHandler(cfg *config.Config, views *usecase.ViewAssembler, m domrepo.Metrics, l *applogger.Logger) *usecase.RefreshHandler {
	return usecase.NewRefreshHandler(cfg.Kafka.RefreshTopic, views, m, l)
}

// ProvideRefreshQueue returns the redis job queue when redis carries refreshes,
// that is when redis is on and kafka is off.
func ProvideRefreshQueue(cfg *config.Config, rc *cache.RedisCache, h *usecase.RefreshHandler, l *applogger.Logger) *queue.RedisQueue {
	if rc == nil || cfg.Kafka.Enabled {
		return nil
	}
	q := queue.NewRedisQueue(l, queue.QueueConfig{
		Workers:    cfg.Redis.Queue.Workers,
		RetryLimit: cfg.Redis.Queue.RetryLimit,
		RetryDelay: cfg.Redis.Queue.RetryDelay,
	}, rc.Client(), queue.ModeProducerConsumer, queue.WithKeyPrefix(cfg.Redis.Prefix+":queue"))
	q.RegisterJob(h.Job())
	return q
}

// ProvideRefreshRequester picks kafka, then the redis queue, then an in-process rebuild.
func ProvideRefreshRequester(cfg *config.Config, producer *pkgkafka.Producer, q *queue.RedisQueue, h *usecase.RefreshHandler) domrepo.RefreshRequester {
	switch {
	case producer != nil:
		return internalrepo.NewKafkaRefreshRequester(producer, cfg.Kafka.RefreshTopic)
	case q != nil:
		return usecase.NewQueueRefreshRequester(q)
	default:
		return usecase.NewLocalRefreshRequester(h)
	}
}

func ProvideSessionStream(sessions *session.Manager, l *applogger.Logger) *sessionstream.Stream {
	return sessionstream.New(sessions, 30*time.Second, l)
}

func ProvideHandler(
	cfg *config.Config,
	l *applogger.Logger,
	stocks domsvc.StockSource,
	urls *endpoint.Resolver,
	views *usecase.ViewAssembler,
	details *usecase.DetailFetcher,
	news *usecase.NewsAggregator,
	analysis *usecase.AnalysisUseCase,
	auth *usecase.AuthUseCase,
	watchlist *usecase.WatchlistUseCase,
	refresher domrepo.RefreshRequester,
	stream *sessionstream.Stream,
) *api.Handler {
	return api.NewHandler(l, stocks, urls, views, details, news, analysis, auth, watchlist, refresher, stream, cfg.Pipeline.ChartDays)
}

// pipelineWorker adapts the event pipeline to the server's worker lifecycle.
// Closing happens in the injector cleanup so one-shot commands flush too.
type pipelineWorker struct{ p *mid.EventPipeline }

func (w pipelineWorker) Start(ctx context.Context) error {
	w.p.Start(ctx)
	return nil
}

func (w pipelineWorker) Stop(context.Context) error { return nil }

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	h *api.Handler,
	pipeline *mid.EventPipeline,
	consumer *pkgkafka.Consumer,
	rh *usecase.RefreshHandler,
	q *queue.RedisQueue,
) *server.App {
	opts := []server.Option{server.WithWorker(pipelineWorker{pipeline})}
	if consumer != nil {
		opts = append(opts, server.WithConsumer(consumer, rh))
	}
	if q != nil {
		opts = append(opts, server.WithWorker(q))
	}
	if cfg.RateLimit.Enabled {
		opts = append(opts, server.WithLimiter(ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
	}
	return server.New(cfg, l, h, opts...)
}

// Services is what the one-shot CLI commands need.
type Services struct {
	Log      *applogger.Logger
	Views    *usecase.ViewAssembler
	News     *usecase.NewsAggregator
	Analysis *usecase.AnalysisUseCase
	Pipeline *mid.EventPipeline
}

func ProvideServices(l *applogger.Logger, views *usecase.ViewAssembler, news *usecase.NewsAggregator, analysis *usecase.AnalysisUseCase, pipeline *mid.EventPipeline) *Services {
	return &Services{Log: l, Views: views, News: news, Analysis: analysis, Pipeline: pipeline}
}
