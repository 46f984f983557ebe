package usecase

import (
	"context"
	"testing"

	"StockDash/internal/domain/models"
)

func TestDetailFetcherKeepsOrderAndSubstitutes(t *testing.T) {
	stocks := &fakeStocks{rates: map[string]*models.ChangeRate{
		"005930": {YesterdayClose: f64(71200), ChangeRate: f64(-1.234), StockName: "삼성전자"},
		"000660": {YesterdayClose: f64(180500), ChangeRate: f64(2.5)},
	}}
	f := NewDetailFetcher(stocks, testURLs, nil, 2, nopLog)

	rows := f.Fetch(context.Background(), "kr", []TickerRef{
		{Ticker: "005930"},
		{Ticker: "BROKEN", Name: "망가진종목"},
		{Ticker: "000660", Name: "SK하이닉스"},
		{Ticker: "NOHINT"},
	})
	if len(rows) != 4 {
		t.Fatalf("len = %d", len(rows))
	}

	if r := rows[0]; r.Name != "삼성전자" || r.Price != "71,200원" || r.ChangeRate != -1.234 || !r.OK {
		t.Errorf("row0 = %+v", r)
	}
	if r := rows[0]; r.LogoURL != "http://stock/logo/kr/005930" {
		t.Errorf("logo = %s", r.LogoURL)
	}

	ph := rows[1]
	if ph.Ticker != "BROKEN" || ph.Name != "망가진종목" || ph.Price != models.PriceNA || ph.ChangeRate != 0 || ph.OK {
		t.Errorf("placeholder = %+v", ph)
	}
	if ph.LogoURL != "http://stock/logo/kr/default" {
		t.Errorf("placeholder logo = %s", ph.LogoURL)
	}

	if rows[2].Name != "SK하이닉스" {
		t.Errorf("hint not used: %+v", rows[2])
	}
	if rows[3].Name != "NOHINT" {
		t.Errorf("name should fall back to ticker: %+v", rows[3])
	}
	for _, tk := range []string{"005930", "BROKEN", "000660", "NOHINT"} {
		if n := stocks.hits(tk); n != 1 {
			t.Errorf("%s fetched %d times", tk, n)
		}
	}
}

func TestDetailFetcherUSFormatting(t *testing.T) {
	stocks := &fakeStocks{rates: map[string]*models.ChangeRate{
		"AAPL": {YesterdayClose: f64(1234.5), ChangeRate: f64(0.5), StockName: "Apple"},
		"NULL": {StockName: "No Close"},
	}}
	f := NewDetailFetcher(stocks, testURLs, nil, 0, nopLog)

	if r := f.FetchOne(context.Background(), "us", TickerRef{Ticker: "AAPL"}); r.Price != "$1,234.50" {
		t.Errorf("price = %s", r.Price)
	}
	r := f.FetchOne(context.Background(), "us", TickerRef{Ticker: "NULL"})
	if r.Price != models.PriceNA || r.RawPrice != nil || !r.OK {
		t.Errorf("missing close = %+v", r)
	}
}

func TestDetailFetcherKeepsUpstreamChangeRate(t *testing.T) {
	stocks := &fakeStocks{rates: map[string]*models.ChangeRate{
		"TSLA": {YesterdayClose: f64(250), ChangeRate: f64(3.14159), StockName: "Tesla"},
	}}
	f := NewDetailFetcher(stocks, testURLs, nil, 0, nopLog)

	r := f.FetchOne(context.Background(), "us", TickerRef{Ticker: "TSLA"})
	if r.ChangeRate != 3.14159 {
		t.Fatalf("change rate = %v, want upstream value 3.14159", r.ChangeRate)
	}
}
