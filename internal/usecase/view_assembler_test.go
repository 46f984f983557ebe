package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/pkg/cache"
)

func newViews(stocks *fakeStocks, news *fakeNews, an *fakeAnalyzer, c cache.Service) *ViewAssembler {
	details := NewDetailFetcher(stocks, testURLs, nil, 4, nopLog)
	agg := NewNewsAggregator(stocks, news, nil, nopLog)
	analysis := NewAnalysisUseCase(an, nil, nil, nil, nopLog)
	v := NewViewAssembler(stocks, details, agg, analysis, testURLs, c, nil, nil, nopLog, ViewConfig{TableTTL: time.Minute})
	v.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	return v
}

func tableFixture(n int) *fakeStocks {
	items := make([]models.RecommendItem, n)
	rates := map[string]*models.ChangeRate{}
	for i := 0; i < n; i++ {
		tk := fmt.Sprintf("T%02d", i)
		items[i] = models.RecommendItem{Ticker: tk, StockName: "name" + tk}
		// alternate signs with growing magnitude
		r := float64(i)
		if i%2 == 1 {
			r = -r
		}
		rates[tk] = &models.ChangeRate{YesterdayClose: f64(1000), ChangeRate: f64(r)}
	}
	return &fakeStocks{recommend: map[string][]models.RecommendItem{"kr": items}, rates: rates}
}

func TestAssembleTablePagesAndClamps(t *testing.T) {
	v := newViews(tableFixture(23), &fakeNews{}, &fakeAnalyzer{}, nil)
	ctx := context.Background()

	tv, err := v.AssembleTable(ctx, "kr", 3, models.SortInitial, false)
	if err != nil {
		t.Fatalf("AssembleTable: %v", err)
	}
	if tv.Total != 23 || tv.Pages != 3 || tv.Page != 3 || len(tv.Rows) != 3 {
		t.Fatalf("table = total %d pages %d page %d rows %d", tv.Total, tv.Pages, tv.Page, len(tv.Rows))
	}
	if tv.Rows[0].Ticker != "T20" {
		t.Errorf("page 3 starts at %s", tv.Rows[0].Ticker)
	}

	tv, _ = v.AssembleTable(ctx, "kr", 99, models.SortInitial, false)
	if tv.Page != 3 {
		t.Errorf("page 99 clamps to %d", tv.Page)
	}
	tv, _ = v.AssembleTable(ctx, "kr", -1, models.SortInitial, false)
	if tv.Page != 1 || tv.Rows[0].Ticker != "T00" {
		t.Errorf("page -1 clamps to %d", tv.Page)
	}
	if len(tv.ChangeRank) != 10 || tv.ChangeRank[0].Ticker != "T22" {
		t.Errorf("rank head = %s", tv.ChangeRank[0].Ticker)
	}
}

func TestChangeRankModesAreStable(t *testing.T) {
	rows := []models.StockSummary{
		{Ticker: "A", ChangeRate: 1},
		{Ticker: "B", ChangeRate: -3},
		{Ticker: "C", ChangeRate: 3},
		{Ticker: "D", ChangeRate: 0},
		{Ticker: "E", ChangeRate: 1},
	}
	join := func(rs []models.StockSummary) string {
		var b strings.Builder
		for _, r := range rs {
			b.WriteString(r.Ticker)
		}
		return b.String()
	}
	if got := join(ChangeRank(rows, models.SortInitial, 10)); got != "BCAED" {
		t.Errorf("initial = %s", got)
	}
	if got := join(ChangeRank(rows, models.SortGainers, 3)); got != "CAE" {
		t.Errorf("gainers = %s", got)
	}
	if got := join(ChangeRank(rows, models.SortLosers, 10)); got != "BDAEC" {
		t.Errorf("losers = %s", got)
	}
	if rows[0].Ticker != "A" {
		t.Errorf("input reordered")
	}
}

func TestAssembleTableRecommendFailureIsHard(t *testing.T) {
	stocks := &fakeStocks{recErr: upstreamStatus(502)}
	v := newViews(stocks, &fakeNews{}, &fakeAnalyzer{}, nil)
	if _, err := v.AssembleTable(context.Background(), "kr", 1, models.SortInitial, false); err == nil {
		t.Fatalf("want error")
	}
}

func TestAssembleTableEmptyRecommend(t *testing.T) {
	stocks := &fakeStocks{recommend: map[string][]models.RecommendItem{}}
	v := newViews(stocks, &fakeNews{}, &fakeAnalyzer{}, nil)
	tv, err := v.AssembleTable(context.Background(), "us", 1, models.SortGainers, false)
	if err != nil {
		t.Fatalf("AssembleTable: %v", err)
	}
	if tv.Total != 0 || tv.Pages != 0 || tv.Page != 1 || len(tv.Rows) != 0 {
		t.Errorf("empty table = %+v", tv)
	}
}

func TestIncompleteRecommendEntriesSkipFetch(t *testing.T) {
	stocks := &fakeStocks{
		recommend: map[string][]models.RecommendItem{"kr": {
			{Ticker: "005930", StockName: "삼성전자"},
			{Ticker: "NONAME"},
			{StockName: "티커없음"},
		}},
		rates: map[string]*models.ChangeRate{"005930": {YesterdayClose: f64(1), ChangeRate: f64(1)}},
	}
	v := newViews(stocks, &fakeNews{}, &fakeAnalyzer{}, nil)
	rows, err := v.Rows(context.Background(), "kr", true)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if stocks.hits("NONAME") != 0 {
		t.Errorf("entry without name was fetched")
	}
	if rows[1].Name != "NONAME" || rows[1].Price != models.PriceNA {
		t.Errorf("row1 = %+v", rows[1])
	}
	if rows[2].Ticker != unknownTicker || rows[2].Name != "티커없음" {
		t.Errorf("row2 = %+v", rows[2])
	}
}

func TestTableCacheAndRefresh(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	stocks := tableFixture(2)
	v := newViews(stocks, &fakeNews{}, &fakeAnalyzer{}, mc)
	ctx := context.Background()

	h := NewRefreshHandler("stock.refresh", v, nil, nopLog)
	if err := h.Handle(ctx, []byte(`{"country":"kr"}`)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if _, err := v.Rows(ctx, "kr", false); err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if n := stocks.hits("T00"); n != 1 {
		t.Errorf("warm read refetched: %d", n)
	}
	if err := h.Handle(ctx, []byte(`{"country":"jp"}`)); err == nil {
		t.Errorf("unknown country accepted")
	}
}

func TestAssembleStockIsolatesSections(t *testing.T) {
	stocks := &fakeStocks{rates: map[string]*models.ChangeRate{
		"005930": {YesterdayClose: f64(70000), ChangeRate: f64(1), StockName: "삼성전자"},
	}}
	news := &fakeNews{refsErr: upstreamStatus(500)}
	an := &fakeAnalyzer{text: "분석"}
	v := newViews(stocks, news, an, nil)

	view := v.AssembleStock(context.Background(), "kr", "005930", StockOptions{News: true, Analysis: models.AnalysisPrice})
	if view.Summary.Name != "삼성전자" {
		t.Errorf("summary = %+v", view.Summary)
	}
	if view.News != nil || view.NewsError == "" {
		t.Errorf("news section should carry an error: %+v", view.News)
	}
	if view.Analysis == nil || view.Analysis.Text != "분석" {
		t.Errorf("analysis = %+v", view.Analysis)
	}
	if view.ChartURL != "http://stock/chart/kr/005930/20240314/20250314" {
		t.Errorf("chart = %s", view.ChartURL)
	}

	plain := v.AssembleStock(context.Background(), "kr", "005930", StockOptions{})
	if plain.News != nil || plain.NewsError != "" || plain.Analysis != nil {
		t.Errorf("unrequested sections filled: %+v", plain)
	}
}

func TestAssembleHome(t *testing.T) {
	stocks := tableFixture(12)
	stocks.mainNews = []models.MainNewsItem{{Title: "headline"}}
	v := newViews(stocks, &fakeNews{}, &fakeAnalyzer{}, nil)

	home := v.AssembleHome(context.Background())
	if len(home.MainNews) != 1 || home.MainNewsError != "" {
		t.Errorf("main news = %+v", home.MainNews)
	}
	if len(home.KR) != 10 {
		t.Errorf("kr rank = %d", len(home.KR))
	}
	if home.USError != "" || len(home.US) != 0 {
		t.Errorf("us = %+v err %q", home.US, home.USError)
	}
}
