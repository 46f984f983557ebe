package usecase

import (
	"context"
	"testing"

	"StockDash/internal/domain/models"
	"StockDash/internal/service/session"
	"StockDash/pkg/cache"
)

func TestAnalysisRecordsSuccess(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	sess := session.NewManager(mc).Session("s")
	_ = sess.SetToken(context.Background(), "jwt")

	an := &fakeAnalyzer{text: "상승 추세"}
	store := &recordingStore{}
	u := NewAnalysisUseCase(an, store, nil, nil, nopLog)

	res, err := u.AnalyzePrice(context.Background(), sess, "kr", "005930")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Text != "상승 추세" || res.Kind != models.AnalysisPrice {
		t.Errorf("result = %+v", res)
	}
	if an.lastToken != "jwt" {
		t.Errorf("token = %q", an.lastToken)
	}
	if len(store.recs) != 1 || !store.recs[0].OK {
		t.Errorf("records = %+v", store.recs)
	}
}

func TestAnalysisUnauthorizedClearsSession(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	sess := session.NewManager(mc).Session("s")
	_ = sess.SetToken(context.Background(), "expired")

	store := &recordingStore{}
	u := NewAnalysisUseCase(&fakeAnalyzer{err: upstreamStatus(401)}, store, nil, nil, nopLog)

	if _, err := u.AnalyzeConsolidated(context.Background(), sess, "us", "AAPL"); err == nil {
		t.Fatalf("want error")
	}
	if sess.LoggedIn(context.Background()) {
		t.Errorf("401 should clear the session")
	}
	if len(store.recs) != 1 || store.recs[0].OK || store.recs[0].Error == "" {
		t.Errorf("failed attempt not recorded: %+v", store.recs)
	}
}

func TestAnalysisUnauthorizedWithoutTokenKeepsSessionQuiet(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	sess := session.NewManager(mc).Session("anon")

	var events []models.SessionEvent
	defer sess.Subscribe(func(ev models.SessionEvent) { events = append(events, ev) })()

	u := NewAnalysisUseCase(&fakeAnalyzer{err: upstreamStatus(401)}, nil, nil, nil, nopLog)
	if _, err := u.AnalyzePrice(context.Background(), sess, "kr", "005930"); err == nil {
		t.Fatalf("want error")
	}
	if len(events) != 0 {
		t.Errorf("logged-out session got events: %+v", events)
	}
}

func TestAnalysisWithoutSessionAndBadKind(t *testing.T) {
	an := &fakeAnalyzer{text: "ok"}
	u := NewAnalysisUseCase(an, nil, nil, nil, nopLog)
	if _, err := u.Analyze(context.Background(), nil, models.AnalysisPrice, "kr", "t"); err != nil {
		t.Fatalf("anonymous analyze: %v", err)
	}
	if an.lastToken != "" {
		t.Errorf("token = %q", an.lastToken)
	}
	if _, err := u.Analyze(context.Background(), nil, "weekly", "kr", "t"); err == nil {
		t.Errorf("unknown kind accepted")
	}
}
