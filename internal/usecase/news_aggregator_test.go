package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/services/upstream"
	"StockDash/pkg/cache"
)

func summary(title string) *models.NewsSummary {
	return &models.NewsSummary{Title: title, Link: "http://x/" + title}
}

func TestNewsNoRefsIsNoNewsSentinel(t *testing.T) {
	news := &fakeNews{refs: map[string]models.CrawlerRefs{"삼성전자": {Shape: models.ShapeUnknown}}}
	a := NewNewsAggregator(&fakeStocks{}, news, nil, nopLog)

	res, err := a.Aggregate(context.Background(), NewsParams{Country: "kr", Ticker: "005930", Name: "삼성전자"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !res.IsSentinel() || res.Sentinel.Type != models.SentinelNoNews {
		t.Fatalf("want no_news, got %+v", res)
	}
	if res.Sentinel.Message != "요약할 뉴스가 없습니다." {
		t.Errorf("message = %q", res.Sentinel.Message)
	}
}

func TestNewsAllArticlesFailIsEmptySummary(t *testing.T) {
	news := &fakeNews{
		refs: map[string]models.CrawlerRefs{"n": {Shape: models.ShapeLatest, Refs: []string{"a", "b", "empty"}}},
		articles: map[string]*models.NewsSummary{
			"empty": {},
		},
	}
	a := NewNewsAggregator(&fakeStocks{}, news, nil, nopLog)

	res, err := a.Aggregate(context.Background(), NewsParams{Country: "kr", Ticker: "t", Name: "n"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !res.IsSentinel() || res.Sentinel.Type != models.SentinelEmptySummary {
		t.Fatalf("want empty_summary, got %+v", res)
	}
}

func TestNewsInvalidRefsAreEmptySummary(t *testing.T) {
	refs := upstream.ParseCrawlerResponse([]byte(`{"success":["", 123, "  "]}`))
	news := &fakeNews{refs: map[string]models.CrawlerRefs{"n": refs}}
	a := NewNewsAggregator(&fakeStocks{}, news, nil, nopLog)

	res, err := a.Aggregate(context.Background(), NewsParams{Country: "kr", Ticker: "t", Name: "n"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !res.IsSentinel() || res.Sentinel.Type != models.SentinelEmptySummary {
		t.Fatalf("want empty_summary, got %+v", res)
	}
	if n := atomic.LoadInt32(&news.articleCalls); n != 0 {
		t.Errorf("blank refs fetched %d times", n)
	}
}

func TestNewsBlankRefsCountTowardCap(t *testing.T) {
	refs := []string{"", "", "", "", "", "r5"}
	news := &fakeNews{
		refs:     map[string]models.CrawlerRefs{"n": {Shape: models.ShapeLatest, Refs: refs}},
		articles: map[string]*models.NewsSummary{"r5": summary("r5")},
	}
	a := NewNewsAggregator(&fakeStocks{}, news, nil, nopLog)

	res, err := a.Aggregate(context.Background(), NewsParams{Country: "kr", Ticker: "t", Name: "n"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !res.IsSentinel() || res.Sentinel.Type != models.SentinelEmptySummary {
		t.Fatalf("sixth ref should be past the cap, got %+v", res)
	}
}

func TestNewsCapsAtFiveAndKeepsOrder(t *testing.T) {
	refs := make([]string, 8)
	articles := map[string]*models.NewsSummary{}
	for i := range refs {
		refs[i] = fmt.Sprintf("r%d", i)
		articles[refs[i]] = summary(refs[i])
	}
	delete(articles, "r1")
	news := &fakeNews{refs: map[string]models.CrawlerRefs{"n": {Shape: models.ShapeLegacy, Refs: refs}}, articles: articles}
	a := NewNewsAggregator(&fakeStocks{}, news, nil, nopLog)

	res, err := a.Aggregate(context.Background(), NewsParams{Country: "kr", Ticker: "t", Name: "n"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if n := atomic.LoadInt32(&news.articleCalls); n != 5 {
		t.Errorf("article calls = %d, want 5", n)
	}
	var titles []string
	for _, s := range res.Summaries {
		titles = append(titles, s.Title)
	}
	if fmt.Sprint(titles) != "[r0 r2 r3 r4]" {
		t.Errorf("titles = %v", titles)
	}
}

func TestNewsReferenceFailureIsHard(t *testing.T) {
	news := &fakeNews{refsErr: upstreamStatus(503)}
	a := NewNewsAggregator(&fakeStocks{}, news, nil, nopLog)
	if _, err := a.Aggregate(context.Background(), NewsParams{Country: "kr", Ticker: "t"}); err == nil {
		t.Fatalf("want error")
	}
}

func TestNewsResolvesKoreanNameForUS(t *testing.T) {
	stocks := &fakeStocks{krNames: map[string]string{"AAPL": "애플"}}
	news := &fakeNews{refs: map[string]models.CrawlerRefs{}}
	a := NewNewsAggregator(stocks, news, nil, nopLog)

	_, _ = a.Aggregate(context.Background(), NewsParams{Country: "us", Ticker: "AAPL"})
	if got := news.lastName.Load(); got != "애플" {
		t.Errorf("crawler name = %v", got)
	}

	_, _ = a.Aggregate(context.Background(), NewsParams{Country: "us", Ticker: "TSLA", Name: "Tesla"})
	if got := news.lastName.Load(); got != "Tesla" {
		t.Errorf("failed lookup should keep name, got %v", got)
	}
}

func TestNewsInFlightGuard(t *testing.T) {
	news := &fakeNews{
		refs:    map[string]models.CrawlerRefs{"t": {Shape: models.ShapeLatest}},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	a := NewNewsAggregator(&fakeStocks{}, news, nil, nopLog)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := a.Aggregate(ctx, NewsParams{Country: "kr", Ticker: "t"})
		done <- err
	}()
	<-news.entered

	if _, err := a.Aggregate(ctx, NewsParams{Country: "kr", Ticker: "t"}); !errors.Is(err, ErrInFlight) {
		t.Fatalf("want ErrInFlight, got %v", err)
	}
	if n := atomic.LoadInt32(&news.refCalls); n != 1 {
		t.Errorf("second call reached the network: %d ref calls", n)
	}

	close(news.block)
	if err := <-done; err != nil {
		t.Fatalf("first call: %v", err)
	}
	news.entered = nil
	if _, err := a.Aggregate(ctx, NewsParams{Country: "kr", Ticker: "t"}); err != nil {
		t.Errorf("guard not released: %v", err)
	}
}

func TestNewsDistributedGuardAndCache(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	news := &fakeNews{
		refs:     map[string]models.CrawlerRefs{"t": {Shape: models.ShapeLatest, Refs: []string{"a"}}},
		articles: map[string]*models.NewsSummary{"a": summary("a")},
	}
	a := NewNewsAggregator(&fakeStocks{}, news, nil, nopLog, WithNewsCache(mc, time.Minute), WithDistributedGuard(time.Minute))
	ctx := context.Background()
	p := NewsParams{Country: "kr", Ticker: "t"}

	// another replica holds the lock
	if ok, _ := mc.TryLock(ctx, p.key()+":lock", time.Minute); !ok {
		t.Fatalf("setup lock")
	}
	if _, err := a.Aggregate(ctx, p); !errors.Is(err, ErrInFlight) {
		t.Fatalf("want ErrInFlight from distributed lock, got %v", err)
	}
	_ = mc.Unlock(ctx, p.key()+":lock")

	if _, err := a.Aggregate(ctx, p); err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	res, err := a.Aggregate(ctx, p)
	if err != nil || len(res.Summaries) != 1 {
		t.Fatalf("cached = %+v, %v", res, err)
	}
	if n := atomic.LoadInt32(&news.refCalls); n != 1 {
		t.Errorf("cache not used: %d ref calls", n)
	}

	p.Refresh = true
	_, _ = a.Aggregate(ctx, p)
	if n := atomic.LoadInt32(&news.refCalls); n != 2 {
		t.Errorf("refresh should bypass cache: %d ref calls", n)
	}
}
