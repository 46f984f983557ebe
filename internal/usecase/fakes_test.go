package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"StockDash/internal/domain/models"
	"StockDash/internal/service/endpoint"
	xhttp "StockDash/pkg/http"
	applogger "StockDash/pkg/logger"
)

func f64(v float64) *float64 { return &v }

var testURLs = endpoint.New(endpoint.Hosts{Stock: "http://stock", External: "http://ext/ai", Auth: "http://auth"})

func upstreamStatus(code int) error {
	return &xhttp.UpstreamError{Kind: xhttp.KindStatus, Name: "fake", StatusCode: code}
}

type fakeStocks struct {
	mu         sync.Mutex
	recommend  map[string][]models.RecommendItem
	recErr     error
	rates      map[string]*models.ChangeRate
	krNames    map[string]string
	mainNews   []models.MainNewsItem
	detailHits map[string]int
}

func (f *fakeStocks) Search(context.Context, string) ([]models.SearchResult, error) { return nil, nil }

func (f *fakeStocks) Recommend(_ context.Context, country string) ([]models.RecommendItem, error) {
	if f.recErr != nil {
		return nil, f.recErr
	}
	return f.recommend[country], nil
}

func (f *fakeStocks) ChangeRate(_ context.Context, country, ticker string) (*models.ChangeRate, error) {
	f.mu.Lock()
	if f.detailHits == nil {
		f.detailHits = map[string]int{}
	}
	f.detailHits[ticker]++
	f.mu.Unlock()
	cr, ok := f.rates[ticker]
	if !ok {
		return nil, upstreamStatus(500)
	}
	return cr, nil
}

func (f *fakeStocks) hits(ticker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailHits[ticker]
}

func (f *fakeStocks) AllChanges(context.Context, string) ([]models.BulkChange, error) { return nil, nil }

func (f *fakeStocks) KrName(_ context.Context, ticker string) (string, error) {
	if n, ok := f.krNames[ticker]; ok {
		return n, nil
	}
	return "", upstreamStatus(404)
}

func (f *fakeStocks) MainNews(context.Context) ([]models.MainNewsItem, error) {
	if f.mainNews == nil {
		return nil, upstreamStatus(502)
	}
	return f.mainNews, nil
}

type fakeNews struct {
	refs     map[string]models.CrawlerRefs
	refsErr  error
	articles map[string]*models.NewsSummary
	block    chan struct{}
	entered  chan struct{}

	refCalls     int32
	articleCalls int32
	lastName     atomic.Value
}

func (f *fakeNews) References(_ context.Context, name string) (models.CrawlerRefs, error) {
	atomic.AddInt32(&f.refCalls, 1)
	f.lastName.Store(name)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.refsErr != nil {
		return models.CrawlerRefs{}, f.refsErr
	}
	return f.refs[name], nil
}

func (f *fakeNews) Article(_ context.Context, ref string) (*models.NewsSummary, error) {
	atomic.AddInt32(&f.articleCalls, 1)
	a, ok := f.articles[ref]
	if !ok {
		return nil, errors.New("article gone")
	}
	return a, nil
}

type fakeAnalyzer struct {
	text      string
	err       error
	lastToken string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ models.AnalysisKind, _, _, token string) (string, error) {
	f.lastToken = token
	return f.text, f.err
}

type fakeAuth struct {
	token string
	user  *models.User
	err   error
}

func (f *fakeAuth) Login(context.Context, string) (*models.LoginResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.LoginResult{Token: f.token, User: *f.user}, nil
}

func (f *fakeAuth) Verify(_ context.Context, token string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if token != f.token {
		return nil, upstreamStatus(401)
	}
	return f.user, nil
}

type recordingStore struct {
	mu   sync.Mutex
	recs []*models.AnalysisRecord
}

func (s *recordingStore) Init(context.Context) error { return nil }

func (s *recordingStore) Store(_ context.Context, r *models.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, r)
	return nil
}

func (s *recordingStore) History(context.Context, string, string, int) ([]*models.AnalysisRecord, error) {
	return s.recs, nil
}

func (s *recordingStore) Health(context.Context) error { return nil }

func (s *recordingStore) Close() error { return nil }

var nopLog = applogger.Nop()
