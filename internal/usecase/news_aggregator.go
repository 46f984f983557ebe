package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
	domsvc "StockDash/internal/domain/service"
	"StockDash/pkg/cache"
	"StockDash/pkg/gather"
	applogger "StockDash/pkg/logger"

	"github.com/google/uuid"
)

// ErrInFlight is returned when the same instrument is already being aggregated.
var ErrInFlight = errors.New("news aggregation already in flight")

// NewsParams identifies one aggregation. Name defaults to Ticker.
type NewsParams struct {
	Country string
	Ticker  string
	Name    string
	Refresh bool
}

func (p NewsParams) key() string {
	return cache.GenerateKeyWithParams("news", p.Country, p.Ticker)
}

// NewsAggregator resolves a display name, lists article refs and summarises up to five of them.
type NewsAggregator struct {
	stocks  domsvc.StockSource
	news    domsvc.NewsSource
	cache   cache.Service
	events  domrepo.EventPublisher
	metrics domrepo.Metrics
	log     *applogger.Logger

	limit       int
	ttl         time.Duration
	inFlightTTL time.Duration

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewsOption configures NewsAggregator.
type NewsOption func(*NewsAggregator)

// WithNewsCache stores completed results for ttl; a zero ttl disables caching.
func WithNewsCache(c cache.Service, ttl time.Duration) NewsOption {
	return func(a *NewsAggregator) {
		a.cache = c
		a.ttl = ttl
	}
}

// WithDistributedGuard adds a cache lock so replicas dedupe too.
func WithDistributedGuard(ttl time.Duration) NewsOption {
	return func(a *NewsAggregator) { a.inFlightTTL = ttl }
}

func WithNewsLimit(n int) NewsOption {
	return func(a *NewsAggregator) {
		if n > 0 && n <= models.MaxNewsSummaries {
			a.limit = n
		}
	}
}

func WithNewsEvents(p domrepo.EventPublisher) NewsOption {
	return func(a *NewsAggregator) { a.events = p }
}

func NewNewsAggregator(stocks domsvc.StockSource, news domsvc.NewsSource, metrics domrepo.Metrics, l *applogger.Logger, opts ...NewsOption) *NewsAggregator {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	a := &NewsAggregator{
		stocks:   stocks,
		news:     news,
		metrics:  metrics,
		log:      l,
		limit:    models.MaxNewsSummaries,
		inFlight: make(map[string]struct{}),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Aggregate runs one aggregation. A repeated call for an instrument that is still
// running returns ErrInFlight without any network I/O.
func (a *NewsAggregator) Aggregate(ctx context.Context, p NewsParams) (models.NewsResult, error) {
	if p.Name == "" {
		p.Name = p.Ticker
	}
	key := p.key()

	if !p.Refresh && a.cacheEnabled() {
		if res, err := cache.GetTyped[models.NewsResult](ctx, a.cache, key); err == nil {
			a.metrics.RecordFetch("news", "cached")
			return res, nil
		}
	}

	release, err := a.acquire(ctx, key)
	if err != nil {
		return models.NewsResult{}, err
	}
	defer release()

	start := time.Now()
	res, err := a.run(ctx, p)
	a.metrics.RecordLatency("news_aggregate", time.Since(start).Seconds())
	if err != nil {
		return models.NewsResult{}, err
	}

	if a.cacheEnabled() {
		if err := a.cache.Set(ctx, key, res, a.ttl); err != nil {
			a.log.Warn("news cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	a.emit(ctx, p, res)
	return res, nil
}

func (a *NewsAggregator) run(ctx context.Context, p NewsParams) (models.NewsResult, error) {
	name := a.resolveName(ctx, p)

	refs, err := a.news.References(ctx, name)
	if err != nil {
		a.metrics.RecordFetch("news_refs", "failed")
		a.metrics.RecordError("news_refs")
		return models.NewsResult{}, fmt.Errorf("news references for %q: %w", name, err)
	}
	a.metrics.RecordFetch("news_refs", string(refs.Shape))

	list := refs.Refs
	if len(list) > a.limit {
		list = list[:a.limit]
	}
	if len(list) == 0 {
		a.metrics.RecordSentinel(string(models.SentinelNoNews))
		return models.SentinelResult(models.SentinelNoNews), nil
	}

	outcomes := gather.Each(ctx, list, 0, func(ctx context.Context, ref string) (*models.NewsSummary, error) {
		if ref == "" {
			return nil, nil
		}
		return a.news.Article(ctx, ref)
	})
	summaries := make([]models.NewsSummary, 0, len(list))
	for _, o := range outcomes {
		if !o.OK() || o.Value == nil || o.Value.Empty() {
			if o.Err != nil {
				a.log.Debug("news article dropped", applogger.String("ref", list[o.Index]), applogger.Error(o.Err))
			}
			a.metrics.RecordFetch("news_article", "dropped")
			continue
		}
		a.metrics.RecordFetch("news_article", "ok")
		summaries = append(summaries, *o.Value)
	}

	if len(summaries) == 0 {
		a.metrics.RecordSentinel(string(models.SentinelEmptySummary))
		return models.SentinelResult(models.SentinelEmptySummary), nil
	}
	return models.SummariesResult(summaries), nil
}

// resolveName swaps a foreign ticker for its Korean name; failures keep the name as given.
func (a *NewsAggregator) resolveName(ctx context.Context, p NewsParams) string {
	if p.Country != models.CountryUS {
		return p.Name
	}
	kr, err := a.stocks.KrName(ctx, p.Ticker)
	if err != nil || strings.TrimSpace(kr) == "" {
		a.log.Debug("kr name lookup failed", applogger.String("ticker", p.Ticker), applogger.Error(err))
		return p.Name
	}
	return kr
}

func (a *NewsAggregator) acquire(ctx context.Context, key string) (func(), error) {
	a.mu.Lock()
	if _, busy := a.inFlight[key]; busy {
		a.mu.Unlock()
		a.metrics.RecordFetch("news", "in_flight")
		return nil, ErrInFlight
	}
	a.inFlight[key] = struct{}{}
	a.mu.Unlock()

	local := func() {
		a.mu.Lock()
		delete(a.inFlight, key)
		a.mu.Unlock()
	}

	if a.cache == nil || a.inFlightTTL <= 0 {
		return local, nil
	}

	lockKey := key + ":lock"
	ok, err := a.cache.TryLock(ctx, lockKey, a.inFlightTTL)
	if err != nil {
		// lock store down: fall back to the local guard
		a.log.Warn("news lock failed", applogger.String("key", lockKey), applogger.Error(err))
		return local, nil
	}
	if !ok {
		local()
		a.metrics.RecordFetch("news", "in_flight")
		return nil, ErrInFlight
	}
	return func() {
		if err := a.cache.Unlock(context.WithoutCancel(ctx), lockKey); err != nil {
			a.log.Warn("news unlock failed", applogger.String("key", lockKey), applogger.Error(err))
		}
		local()
	}, nil
}

func (a *NewsAggregator) cacheEnabled() bool {
	return a.cache != nil && a.ttl > 0
}

func (a *NewsAggregator) emit(ctx context.Context, p NewsParams, res models.NewsResult) {
	if a.events == nil {
		return
	}
	payload := map[string]interface{}{
		"country": p.Country,
		"ticker":  p.Ticker,
		"count":   len(res.Summaries),
	}
	if res.Sentinel != nil {
		payload["sentinel"] = res.Sentinel.Type
	}
	ev := &models.Event{ID: uuid.NewString(), Type: models.EventNews, Key: p.Ticker, At: time.Now().UTC(), Payload: payload}
	if err := a.events.Publish(ctx, ev); err != nil {
		a.log.Warn("news event publish failed", applogger.String("ticker", p.Ticker), applogger.Error(err))
	}
}

// MainNews returns the market headlines.
func (a *NewsAggregator) MainNews(ctx context.Context) ([]models.MainNewsItem, error) {
	items, err := a.stocks.MainNews(ctx)
	if err != nil {
		a.metrics.RecordFetch("main_news", "failed")
		return nil, fmt.Errorf("main news: %w", err)
	}
	a.metrics.RecordFetch("main_news", "ok")
	return items, nil
}
