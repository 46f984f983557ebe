package endpoint

import (
	"testing"
	"time"

	"StockDash/internal/domain/models"
)

func testResolver() *Resolver {
	return New(Hosts{
		Stock:    "https://h.example/api/",
		External: "https://h.example/ai",
		Auth:     "https://h.example",
	})
}

func TestResolverURLs(t *testing.T) {
	r := testResolver()
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct{ got, want string }{
		{r.Search("삼성 전자"), "https://h.example/api/search?q=%EC%82%BC%EC%84%B1+%EC%A0%84%EC%9E%90"},
		{r.Recommend("kr"), "https://h.example/api/recommend/kr"},
		{r.Detail("kr", "005930"), "https://h.example/api/changerate/kr/005930"},
		{r.AllChanges("us"), "https://h.example/api/get_ch_all/us"},
		{r.Logo("us", "AAPL"), "https://h.example/api/logo/us/AAPL"},
		{r.DefaultLogo("kr"), "https://h.example/api/logo/kr/default"},
		{r.KrName("AAPL"), "https://h.example/api/get_kr_name/AAPL"},
		{r.StockData("kr", "005930", day.AddDate(0, 0, -1), day), "https://h.example/api/kr/005930/20240501/20240502"},
		{r.MainNews(), "https://h.example/api/get_main_news"},
		{r.Crawler("삼성전자"), "https://h.example/ai/crawler/%EC%82%BC%EC%84%B1%EC%A0%84%EC%9E%90"},
		{r.Chart("kr", "005930", "20230502", "20240502"), "https://h.example/api/chart/kr/005930/20230502/20240502"},
		{r.AnalyzePrice("us", "AAPL"), "https://h.example/api/analyze-price/us/AAPL"},
		{r.AnalyzeConsolidated("us", "AAPL"), "https://h.example/api/analyze/us/AAPL"},
		{r.Analyze(models.AnalysisPrice, "kr", "005930"), "https://h.example/api/analyze-price/kr/005930"},
		{r.Login(), "https://h.example/login"},
		{r.Verify(), "https://h.example/verify"},
	}
	for i, c := range cases {
		if c.got != c.want {
			t.Errorf("case %d: got %s want %s", i, c.got, c.want)
		}
	}
}

func TestArticleRef(t *testing.T) {
	r := testResolver()
	if got := r.ArticleRef("https://news.example/a"); got != "https://news.example/a" {
		t.Fatalf("absolute ref changed: %s", got)
	}
	if got := r.ArticleRef("/summary/42"); got != "https://h.example/ai/summary/42" {
		t.Fatalf("relative ref: %s", got)
	}
	if got := r.ArticleRef("summary/42"); got != "https://h.example/ai/summary/42" {
		t.Fatalf("bare ref: %s", got)
	}
}

func TestChartHostDefaultsToStock(t *testing.T) {
	r := New(Hosts{Stock: "https://s.example"})
	if got := r.Chart("us", "AAPL", "a", "b"); got != "https://s.example/chart/us/AAPL/a/b" {
		t.Fatalf("got %s", got)
	}
	if got := r.Login(); got != "https://s.example/login" {
		t.Fatalf("auth should default to stock host, got %s", got)
	}
}

func TestCountryOf(t *testing.T) {
	cases := map[string]string{
		"US":          "us",
		"us_kr_names": "us",
		"Us_Stock":    "us",
		"KR_Stock":    "kr",
		"":            "kr",
		"u":           "kr",
		"NSDQ_Stock":  "kr",
	}
	for in, want := range cases {
		if got := CountryOf(in); got != want {
			t.Errorf("CountryOf(%q) = %s, want %s", in, got, want)
		}
	}
}
