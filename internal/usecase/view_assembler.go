package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
	domsvc "StockDash/internal/domain/service"
	"StockDash/internal/service/endpoint"
	"StockDash/internal/service/session"
	"StockDash/pkg/cache"
	"StockDash/pkg/gather"
	applogger "StockDash/pkg/logger"
	xutil "StockDash/pkg/util"

	"github.com/google/uuid"
)

const (
	defaultPageSize  = 10
	defaultRankSize  = 10
	defaultChartDays = 365
)

// ViewConfig holds table and chart parameters.
type ViewConfig struct {
	PageSize  int
	RankSize  int
	ChartDays int
	TableTTL  time.Duration
}

// StockOptions selects the optional sections of a stock view.
type StockOptions struct {
	Name     string
	News     bool
	Analysis models.AnalysisKind
	Refresh  bool
	Session  *session.Session
}

// ViewAssembler merges details, news and analysis into presentation views.
type ViewAssembler struct {
	stocks   domsvc.StockSource
	details  *DetailFetcher
	news     *NewsAggregator
	analysis *AnalysisUseCase
	urls     *endpoint.Resolver
	cache    cache.Service
	events   domrepo.EventPublisher
	metrics  domrepo.Metrics
	log      *applogger.Logger
	cfg      ViewConfig
	now      func() time.Time
}

func NewViewAssembler(
	stocks domsvc.StockSource,
	details *DetailFetcher,
	news *NewsAggregator,
	analysis *AnalysisUseCase,
	urls *endpoint.Resolver,
	c cache.Service,
	events domrepo.EventPublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	cfg ViewConfig,
) *ViewAssembler {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.RankSize <= 0 {
		cfg.RankSize = defaultRankSize
	}
	if cfg.ChartDays <= 0 {
		cfg.ChartDays = defaultChartDays
	}
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	return &ViewAssembler{
		stocks:   stocks,
		details:  details,
		news:     news,
		analysis: analysis,
		urls:     urls,
		cache:    c,
		events:   events,
		metrics:  metrics,
		log:      l,
		cfg:      cfg,
		now:      time.Now,
	}
}

// AssembleStock always fetches the detail. News and analysis run concurrently when
// requested; a failed section carries its error text and the view itself never fails.
func (v *ViewAssembler) AssembleStock(ctx context.Context, country, ticker string, opts StockOptions) models.StockView {
	var view models.StockView
	start, end := xutil.ChartRange(v.now(), v.cfg.ChartDays)
	view.ChartURL = v.urls.Chart(country, ticker, start, end)

	tasks := []func(ctx context.Context) error{
		func(ctx context.Context) error {
			view.Summary = v.details.FetchOne(ctx, country, TickerRef{Ticker: ticker, Name: opts.Name})
			return nil
		},
	}
	if opts.News {
		tasks = append(tasks, func(ctx context.Context) error {
			res, err := v.news.Aggregate(ctx, NewsParams{Country: country, Ticker: ticker, Name: opts.Name, Refresh: opts.Refresh})
			if err != nil {
				view.NewsError = err.Error()
				return err
			}
			view.News = &res
			return nil
		})
	}
	if opts.Analysis != "" {
		tasks = append(tasks, func(ctx context.Context) error {
			res, err := v.analysis.Analyze(ctx, opts.Session, opts.Analysis, country, ticker)
			if err != nil {
				view.AnalysisError = err.Error()
				return err
			}
			view.Analysis = res
			return nil
		})
	}

	outcomes := gather.Gather(ctx, len(tasks), 0, func(ctx context.Context, i int) (struct{}, error) {
		return struct{}{}, tasks[i](ctx)
	})
	for _, o := range gather.Failures(outcomes) {
		if _, ok := o.Err.(*gather.PanicError); ok {
			v.log.Error("stock view section panicked", applogger.Int("section", o.Index), applogger.Error(o.Err))
		}
	}
	if view.Summary.Ticker == "" {
		view.Summary = v.details.placeholder(country, TickerRef{Ticker: ticker, Name: opts.Name})
	}
	return view
}

func tableKey(country string) string {
	return cache.GenerateKeyWithParams("table", country)
}

// Rows returns the full table for country, from cache unless refresh is set.
// A recommend failure is a hard error; per-ticker failures become placeholders.
func (v *ViewAssembler) Rows(ctx context.Context, country string, refresh bool) ([]models.StockSummary, error) {
	if !refresh && v.cache != nil && v.cfg.TableTTL > 0 {
		if rows, err := cache.GetTyped[[]models.StockSummary](ctx, v.cache, tableKey(country)); err == nil {
			v.metrics.RecordFetch("table", "cached")
			return rows, nil
		}
	}
	return v.RefreshTable(ctx, country)
}

// RefreshTable rebuilds the table and stores it for later reads.
func (v *ViewAssembler) RefreshTable(ctx context.Context, country string) ([]models.StockSummary, error) {
	start := v.now()
	items, err := v.stocks.Recommend(ctx, country)
	if err != nil {
		v.metrics.RecordFetch("recommend", "failed")
		return nil, fmt.Errorf("recommend %s: %w", country, err)
	}
	v.metrics.RecordFetch("recommend", "ok")

	refs := make([]TickerRef, len(items))
	for i, it := range items {
		refs[i] = TickerRef{Ticker: it.Ticker, Name: it.StockName}
	}
	rows := v.fetchRows(ctx, country, items, refs)
	v.metrics.RecordLatency("table_build", v.now().Sub(start).Seconds())

	if v.cache != nil && v.cfg.TableTTL > 0 {
		if err := v.cache.Set(ctx, tableKey(country), rows, v.cfg.TableTTL); err != nil {
			v.log.Warn("table cache write failed", applogger.String("country", country), applogger.Error(err))
		}
	}
	if v.events != nil {
		ev := &models.Event{
			ID:      uuid.NewString(),
			Type:    models.EventTableView,
			Key:     country,
			At:      v.now().UTC(),
			Payload: map[string]interface{}{"country": country, "rows": len(rows)},
		}
		if err := v.events.Publish(ctx, ev); err != nil {
			v.log.Warn("table event publish failed", applogger.String("country", country), applogger.Error(err))
		}
	}
	return rows, nil
}

// fetchRows skips the detail request for entries missing a ticker or a name.
func (v *ViewAssembler) fetchRows(ctx context.Context, country string, items []models.RecommendItem, refs []TickerRef) []models.StockSummary {
	rows := make([]models.StockSummary, len(items))
	fetchIdx := make([]int, 0, len(items))
	fetchRefs := make([]TickerRef, 0, len(items))
	for i, it := range items {
		if it.Ticker == "" || it.StockName == "" {
			v.log.Warn("recommend entry incomplete", applogger.String("ticker", it.Ticker), applogger.String("name", it.StockName))
			rows[i] = v.details.placeholder(country, refs[i])
			continue
		}
		fetchIdx = append(fetchIdx, i)
		fetchRefs = append(fetchRefs, refs[i])
	}
	for j, row := range v.details.Fetch(ctx, country, fetchRefs) {
		rows[fetchIdx[j]] = row
	}
	return rows
}

// AssembleTable returns one page plus the change ranking. Out-of-range pages clamp.
func (v *ViewAssembler) AssembleTable(ctx context.Context, country string, page int, mode models.SortMode, refresh bool) (*models.TableView, error) {
	rows, err := v.Rows(ctx, country, refresh)
	if err != nil {
		return nil, err
	}
	pageRows, page, pages := paginate(rows, page, v.cfg.PageSize)
	return &models.TableView{
		Country:    country,
		Page:       page,
		Pages:      pages,
		Total:      len(rows),
		Sort:       string(mode),
		Rows:       pageRows,
		ChangeRank: ChangeRank(rows, mode, v.cfg.RankSize),
		BuiltAt:    v.now().UTC(),
	}, nil
}

// AssembleHome gathers main news and both countries' change rankings with isolation.
func (v *ViewAssembler) AssembleHome(ctx context.Context) models.HomeView {
	var home models.HomeView
	tasks := []func(ctx context.Context){
		func(ctx context.Context) {
			items, err := v.news.MainNews(ctx)
			if err != nil {
				home.MainNewsError = err.Error()
				return
			}
			home.MainNews = items
		},
		func(ctx context.Context) {
			rows, err := v.Rows(ctx, models.CountryKR, false)
			if err != nil {
				home.KRError = err.Error()
				return
			}
			home.KR = ChangeRank(rows, models.SortInitial, v.cfg.RankSize)
		},
		func(ctx context.Context) {
			rows, err := v.Rows(ctx, models.CountryUS, false)
			if err != nil {
				home.USError = err.Error()
				return
			}
			home.US = ChangeRank(rows, models.SortInitial, v.cfg.RankSize)
		},
	}
	gather.Gather(ctx, len(tasks), 0, func(ctx context.Context, i int) (struct{}, error) {
		tasks[i](ctx)
		return struct{}{}, nil
	})
	return home
}

// ChangeRank orders a copy of rows by mode (stable) and keeps the first n.
func ChangeRank(rows []models.StockSummary, mode models.SortMode, n int) []models.StockSummary {
	sorted := make([]models.StockSummary, len(rows))
	copy(sorted, rows)

	var less func(a, b models.StockSummary) bool
	switch mode {
	case models.SortGainers:
		less = func(a, b models.StockSummary) bool { return a.ChangeRate > b.ChangeRate }
	case models.SortLosers:
		less = func(a, b models.StockSummary) bool { return a.ChangeRate < b.ChangeRate }
	default:
		less = func(a, b models.StockSummary) bool { return abs(a.ChangeRate) > abs(b.ChangeRate) }
	}
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// paginate returns the 1-based page after clamping it into [1, pages].
func paginate(rows []models.StockSummary, page, size int) ([]models.StockSummary, int, int) {
	pages := (len(rows) + size - 1) / size
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}
	from := (page - 1) * size
	if from >= len(rows) {
		return []models.StockSummary{}, page, pages
	}
	to := from + size
	if to > len(rows) {
		to = len(rows)
	}
	return rows[from:to], page, pages
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
