package usecase

import (
	"context"
	"strings"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
	domsvc "StockDash/internal/domain/service"
	"StockDash/internal/service/endpoint"
	"StockDash/pkg/gather"
	applogger "StockDash/pkg/logger"
	xutil "StockDash/pkg/util"
)

const (
	unnamedStock  = "이름 없음"
	unknownTicker = "티커 없음"
)

// TickerRef is one ticker to fetch; Name is an optional display hint.
type TickerRef struct {
	Ticker string
	Name   string
}

// DetailFetcher builds StockSummary rows, one detail request per ticker.
type DetailFetcher struct {
	stocks  domsvc.StockSource
	urls    *endpoint.Resolver
	metrics domrepo.Metrics
	limit   int
	log     *applogger.Logger
}

func NewDetailFetcher(stocks domsvc.StockSource, urls *endpoint.Resolver, metrics domrepo.Metrics, limit int, l *applogger.Logger) *DetailFetcher {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	return &DetailFetcher{stocks: stocks, urls: urls, metrics: metrics, limit: limit, log: l}
}

// Fetch returns one summary per ref, in input order. Failed tickers become placeholders.
func (f *DetailFetcher) Fetch(ctx context.Context, country string, refs []TickerRef) []models.StockSummary {
	outcomes := gather.Each(ctx, refs, f.limit, func(ctx context.Context, r TickerRef) (models.StockSummary, error) {
		return f.FetchOne(ctx, country, r), nil
	})
	rows := make([]models.StockSummary, len(refs))
	for _, o := range outcomes {
		if o.OK() {
			rows[o.Index] = o.Value
			continue
		}
		// only a panic lands here
		f.log.Error("detail fetch panicked", applogger.String("ticker", refs[o.Index].Ticker), applogger.Error(o.Err))
		rows[o.Index] = f.placeholder(country, refs[o.Index])
	}
	return rows
}

// FetchOne never fails: any upstream error yields the placeholder row.
func (f *DetailFetcher) FetchOne(ctx context.Context, country string, r TickerRef) models.StockSummary {
	r.Ticker = strings.TrimSpace(r.Ticker)
	if r.Ticker == "" {
		f.metrics.RecordFetch("detail", "skipped")
		return f.placeholder(country, r)
	}

	cr, err := f.stocks.ChangeRate(ctx, country, r.Ticker)
	if err != nil {
		f.metrics.RecordFetch("detail", "failed")
		f.log.Debug("detail fetch failed",
			applogger.String("country", country),
			applogger.String("ticker", r.Ticker),
			applogger.Error(err),
		)
		return f.placeholder(country, r)
	}
	f.metrics.RecordFetch("detail", "ok")

	s := models.StockSummary{
		Ticker:  r.Ticker,
		Name:    firstNonEmpty(cr.StockName, r.Name, r.Ticker),
		Price:   models.PriceNA,
		LogoURL: f.urls.Logo(country, r.Ticker),
		Country: country,
		OK:      true,
	}
	if cr.YesterdayClose != nil {
		price := *cr.YesterdayClose
		s.RawPrice = &price
		s.Price = formatPrice(country, price)
	}
	if cr.ChangeRate != nil {
		s.ChangeRate = *cr.ChangeRate
	}
	return s
}

func (f *DetailFetcher) placeholder(country string, r TickerRef) models.StockSummary {
	ticker := firstNonEmpty(r.Ticker, unknownTicker)
	name := firstNonEmpty(r.Name, r.Ticker, unnamedStock)
	return models.StockSummary{
		Ticker:     ticker,
		Name:       name,
		Price:      models.PriceNA,
		ChangeRate: 0.0,
		LogoURL:    f.urls.DefaultLogo(country),
		Country:    country,
	}
}

func formatPrice(country string, v float64) string {
	if country == models.CountryUS {
		return xutil.FormatUSD(v)
	}
	return xutil.FormatKRW(v)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
