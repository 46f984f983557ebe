package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/repository"
	"StockDash/internal/service/endpoint"
	"StockDash/internal/service/session"
	"StockDash/internal/service/sessionstream"
	"StockDash/internal/services/upstream"
	"StockDash/internal/usecase"
	"StockDash/pkg/cache"
	xhttp "StockDash/pkg/http"
	"StockDash/pkg/http/middleware"
	applogger "StockDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

func f64(v float64) *float64 { return &v }

type stubStocks struct {
	recErr error
}

func (s *stubStocks) Search(_ context.Context, q string) ([]models.SearchResult, error) {
	return []models.SearchResult{{Ticker: "005930", Name: q}}, nil
}

func (s *stubStocks) Recommend(context.Context, string) ([]models.RecommendItem, error) {
	if s.recErr != nil {
		return nil, s.recErr
	}
	return []models.RecommendItem{
		{Ticker: "005930", StockName: "삼성전자"},
		{Ticker: "000660", StockName: "SK하이닉스"},
	}, nil
}

func (s *stubStocks) ChangeRate(_ context.Context, _, ticker string) (*models.ChangeRate, error) {
	return &models.ChangeRate{YesterdayClose: f64(70000), ChangeRate: f64(1.5)}, nil
}

func (s *stubStocks) AllChanges(context.Context, string) ([]models.BulkChange, error) { return nil, nil }

func (s *stubStocks) KrName(context.Context, string) (string, error) { return "", errors.New("none") }

func (s *stubStocks) MainNews(context.Context) ([]models.MainNewsItem, error) {
	return []models.MainNewsItem{{Title: "headline"}}, nil
}

type stubNews struct{ err error }

func (n *stubNews) References(context.Context, string) (models.CrawlerRefs, error) {
	return models.CrawlerRefs{}, n.err
}

func (n *stubNews) Article(context.Context, string) (*models.NewsSummary, error) { return nil, nil }

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(context.Context, models.AnalysisKind, string, string, string) (string, error) {
	return "분석 결과", nil
}

type stubAuth struct{}

func (stubAuth) Login(_ context.Context, code string) (*models.LoginResult, error) {
	if code != "good" {
		return nil, &xhttp.UpstreamError{Kind: xhttp.KindStatus, StatusCode: http.StatusBadRequest}
	}
	return &models.LoginResult{Token: "jwt", User: models.User{ID: "u1", Name: "kim"}}, nil
}

func (stubAuth) Verify(_ context.Context, token string) (*models.User, error) {
	if token != "jwt" {
		return nil, &xhttp.UpstreamError{Kind: xhttp.KindStatus, StatusCode: http.StatusUnauthorized}
	}
	return &models.User{ID: "u1", Name: "kim"}, nil
}

type recordingRefresher struct{ countries []string }

func (r *recordingRefresher) RequestRefresh(_ context.Context, country string) error {
	r.countries = append(r.countries, country)
	return nil
}

type env struct {
	e         *echo.Echo
	h         *Handler
	refresher *recordingRefresher
}

func newEnv(t *testing.T, stocks *stubStocks, news *stubNews) *env {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { mc.Close() })
	l := applogger.Nop()
	urls := endpoint.New(endpoint.Hosts{Stock: "http://stock", External: "http://ext/ai"})

	sessions := session.NewManager(mc)
	details := usecase.NewDetailFetcher(stocks, urls, nil, 4, l)
	agg := usecase.NewNewsAggregator(stocks, news, nil, l)
	analysis := usecase.NewAnalysisUseCase(stubAnalyzer{}, repository.NewMemoryAnalysisStore(10), nil, nil, l)
	views := usecase.NewViewAssembler(stocks, details, agg, analysis, urls, mc, nil, nil, l, usecase.ViewConfig{PageSize: 1, TableTTL: time.Minute})
	auth := usecase.NewAuthUseCase(stubAuth{}, sessions, l)
	watch := usecase.NewWatchlistUseCase(auth, repository.NewMemoryWatchlistStore())
	ref := &recordingRefresher{}

	h := NewHandler(l, stocks, urls, views, details, agg, analysis, auth, watch, ref, sessionstream.New(sessions, time.Second, l), 365)
	e := echo.New()
	h.RegisterRoutes(e)
	return &env{e: e, h: h, refresher: ref}
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func (v *env) do(t *testing.T, method, target, body string, hdr map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, val := range hdr {
		req.Header.Set(k, val)
	}
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: bad body %q: %v", method, target, rec.Body.String(), err)
		}
	}
	return rec, env
}

func TestTableRouteClampsPage(t *testing.T) {
	v := newEnv(t, &stubStocks{}, &stubNews{})
	rec, env := v.do(t, http.MethodGet, "/api/stocks/kr?page=9&sort=gainers", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var tv models.TableView
	if err := json.Unmarshal(env.Data, &tv); err != nil {
		t.Fatal(err)
	}
	if tv.Page != 2 || tv.Pages != 2 || len(tv.Rows) != 1 || tv.Rows[0].Ticker != "000660" {
		t.Errorf("table = %+v", tv)
	}
	if tv.Rows[0].Price != "70,000원" {
		t.Errorf("price = %q", tv.Rows[0].Price)
	}
}

func TestTableRouteRejectsUnknownCountry(t *testing.T) {
	v := newEnv(t, &stubStocks{}, &stubNews{})
	if rec, _ := v.do(t, http.MethodGet, "/api/stocks/jp", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestTableRouteRecommendFailure(t *testing.T) {
	stocks := &stubStocks{recErr: &xhttp.UpstreamError{Kind: xhttp.KindNetwork, Err: errors.New("refused")}}
	v := newEnv(t, stocks, &stubNews{})
	if rec, _ := v.do(t, http.MethodGet, "/api/stocks/kr", "", nil); rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestStockRouteCarriesSectionErrors(t *testing.T) {
	news := &stubNews{err: &xhttp.UpstreamError{Kind: xhttp.KindStatus, StatusCode: 500}}
	v := newEnv(t, &stubStocks{}, news)
	rec, env := v.do(t, http.MethodGet, "/api/stocks/kr/005930?news=true&analysis=price", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var view models.StockView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatal(err)
	}
	if view.NewsError == "" || view.Analysis == nil || view.Analysis.Text != "분석 결과" {
		t.Errorf("view = %+v", view)
	}
}

func TestLoginVerifyLogout(t *testing.T) {
	v := newEnv(t, &stubStocks{}, &stubNews{})

	if rec, _ := v.do(t, http.MethodPost, "/api/auth/login", `{}`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("empty code status = %d", rec.Code)
	}

	rec, _ := v.do(t, http.MethodPost, "/api/auth/login", `{"code":"good"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body %s", rec.Code, rec.Body.String())
	}
	sid := rec.Header().Get(middleware.HeaderSessionID)
	if sid == "" {
		t.Fatal("no session header")
	}
	hdr := map[string]string{middleware.HeaderSessionID: sid}

	if rec, _ := v.do(t, http.MethodPost, "/api/auth/verify", "", hdr); rec.Code != http.StatusOK {
		t.Errorf("verify status = %d", rec.Code)
	}
	if rec, _ := v.do(t, http.MethodPost, "/api/me/favorites", `{"stock_code":"AAPL"}`, hdr); rec.Code != http.StatusCreated {
		t.Errorf("favorite status = %d", rec.Code)
	}
	if rec, _ := v.do(t, http.MethodPost, "/api/auth/logout", "", hdr); rec.Code != http.StatusNoContent {
		t.Errorf("logout status = %d", rec.Code)
	}
	if rec, _ := v.do(t, http.MethodPost, "/api/auth/verify", "", hdr); rec.Code != http.StatusUnauthorized {
		t.Errorf("verify after logout = %d", rec.Code)
	}
}

func TestWatchlistRequiresSession(t *testing.T) {
	v := newEnv(t, &stubStocks{}, &stubNews{})
	if rec, _ := v.do(t, http.MethodGet, "/api/me/recent", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRefreshIsAccepted(t *testing.T) {
	v := newEnv(t, &stubStocks{}, &stubNews{})
	rec, _ := v.do(t, http.MethodPost, "/api/admin/refresh/us", "", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(v.refresher.countries) != 1 || v.refresher.countries[0] != "us" {
		t.Errorf("requested = %v", v.refresher.countries)
	}
}

func TestFailMapping(t *testing.T) {
	v := newEnv(t, &stubStocks{}, &stubNews{})
	cases := []struct {
		err  error
		want int
	}{
		{usecase.ErrInFlight, http.StatusConflict},
		{session.ErrNoSession, http.StatusUnauthorized},
		{&upstream.AnalysisError{Message: "분석 실패", Err: xhttp.NewShapeError("a", "u", errors.New("x"))}, http.StatusBadGateway},
		{&upstream.AnalysisError{Message: "expired", Err: &xhttp.UpstreamError{Kind: xhttp.KindStatus, StatusCode: 401}}, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		ctx := v.e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		_ = v.h.fail(ctx, "failed", c.err)
		if rec.Code != c.want {
			t.Errorf("%v: status %d, want %d", c.err, rec.Code, c.want)
		}
	}
}
