package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"StockDash/internal/domain/models"
	domsvc "StockDash/internal/domain/service"
	xhttp "StockDash/pkg/http"
)

// StockClient talks to the stock host.
type StockClient struct{ base *HTTPServiceBase }

func NewStockClient(base *HTTPServiceBase) *StockClient { return &StockClient{base: base} }

func (s *StockClient) Search(ctx context.Context, q string) ([]models.SearchResult, error) {
	var out []models.SearchResult
	if err := s.base.getJSON(ctx, "search", s.base.urls.Search(q), "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *StockClient) Recommend(ctx context.Context, country string) ([]models.RecommendItem, error) {
	var out []models.RecommendItem
	if err := s.base.getJSON(ctx, "recommend", s.base.urls.Recommend(country), "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// changeRateWire keeps raw values: the host sends strings or null when a close is missing.
type changeRateWire struct {
	YesterdayClose json.RawMessage `json:"yesterday_close"`
	ChangeRate     json.RawMessage `json:"change_rate"`
	StockName      json.RawMessage `json:"stock_name"`
}

func (w changeRateWire) toModel() models.ChangeRate {
	return models.ChangeRate{
		YesterdayClose: numeric(w.YesterdayClose),
		ChangeRate:     numeric(w.ChangeRate),
		StockName:      text(w.StockName),
	}
}

// numeric returns the value only when raw is a JSON number.
func numeric(raw json.RawMessage) *float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s[0] == '"' {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func text(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func (s *StockClient) ChangeRate(ctx context.Context, country, ticker string) (*models.ChangeRate, error) {
	url := s.base.urls.Detail(country, ticker)
	var raw json.RawMessage
	if err := s.base.getJSON(ctx, "changerate", url, "", &raw); err != nil {
		return nil, err
	}
	var w changeRateWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, xhttp.NewShapeError("changerate", url, err)
	}
	m := w.toModel()
	return &m, nil
}

func (s *StockClient) AllChanges(ctx context.Context, country string) ([]models.BulkChange, error) {
	url := s.base.urls.AllChanges(country)
	var wire []struct {
		Ticker     string         `json:"ticker"`
		ChangeRate changeRateWire `json:"changerate"`
	}
	if err := s.base.getJSON(ctx, "get_ch_all", url, "", &wire); err != nil {
		return nil, err
	}
	out := make([]models.BulkChange, 0, len(wire))
	for _, w := range wire {
		if w.Ticker == "" {
			continue
		}
		out = append(out, models.BulkChange{Ticker: w.Ticker, ChangeRate: w.ChangeRate.toModel()})
	}
	return out, nil
}

// KrName returns the Korean display name of a foreign ticker.
func (s *StockClient) KrName(ctx context.Context, ticker string) (string, error) {
	url := s.base.urls.KrName(ticker)
	var resp struct {
		KrName string `json:"kr_name"`
		Name   string `json:"name"`
	}
	if err := s.base.getJSON(ctx, "get_kr_name", url, "", &resp); err != nil {
		return "", err
	}
	name := strings.TrimSpace(resp.KrName)
	if name == "" {
		name = strings.TrimSpace(resp.Name)
	}
	if name == "" {
		return "", xhttp.NewShapeError("get_kr_name", url, errors.New("no name in response"))
	}
	return name, nil
}

// MainNews fetches headlines; t defeats intermediate caches.
func (s *StockClient) MainNews(ctx context.Context) ([]models.MainNewsItem, error) {
	var resp struct {
		News []models.MainNewsItem `json:"news"`
	}
	q := map[string][]string{"t": {strconv.FormatInt(time.Now().UnixMilli(), 10)}}
	if err := s.base.getWithQuery(ctx, "get_main_news", s.base.urls.MainNews(), q, &resp); err != nil {
		return nil, err
	}
	return resp.News, nil
}

var _ domsvc.StockSource = (*StockClient)(nil)
