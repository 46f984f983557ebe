package usecase

import (
	"context"
	"fmt"
	"time"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
	domsvc "StockDash/internal/domain/service"
	"StockDash/internal/service/session"
	applogger "StockDash/pkg/logger"

	"github.com/google/uuid"
)

// AnalysisUseCase runs one analysis request per call. Concurrent triggers are not deduplicated.
type AnalysisUseCase struct {
	analyzer domsvc.Analyzer
	store    domrepo.AnalysisStore
	events   domrepo.EventPublisher
	metrics  domrepo.Metrics
	log      *applogger.Logger
	now      func() time.Time
}

func NewAnalysisUseCase(analyzer domsvc.Analyzer, store domrepo.AnalysisStore, events domrepo.EventPublisher, metrics domrepo.Metrics, l *applogger.Logger) *AnalysisUseCase {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	return &AnalysisUseCase{analyzer: analyzer, store: store, events: events, metrics: metrics, log: l, now: time.Now}
}

// Analyze uses the session's token when present. An upstream 401 logs the session out.
func (u *AnalysisUseCase) Analyze(ctx context.Context, sess *session.Session, kind models.AnalysisKind, country, ticker string) (*models.AnalysisResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown analysis kind %q", kind)
	}
	var token string
	if sess != nil {
		token = sess.Token(ctx)
	}

	start := u.now()
	text, err := u.analyzer.Analyze(ctx, kind, country, ticker, token)
	took := u.now().Sub(start)
	u.metrics.RecordLatency("analysis_"+string(kind), took.Seconds())

	rec := &models.AnalysisRecord{
		ID:         uuid.NewString(),
		Kind:       kind,
		Country:    country,
		Ticker:     ticker,
		OK:         err == nil,
		Text:       text,
		TookMs:     took.Milliseconds(),
		RecordedAt: start.UTC(),
	}
	if err != nil {
		rec.Error = err.Error()
		u.metrics.RecordFetch("analysis", "failed")
		if sess != nil && token != "" && sess.InvalidateOn(ctx, err) {
			u.log.Info("session cleared after upstream 401", applogger.String("session", sess.ID()))
		}
	} else {
		u.metrics.RecordFetch("analysis", "ok")
	}
	u.record(ctx, rec)

	if err != nil {
		return nil, err
	}
	return &models.AnalysisResult{
		Kind:        kind,
		Country:     country,
		Ticker:      ticker,
		Text:        text,
		RequestedAt: start.UTC(),
	}, nil
}

func (u *AnalysisUseCase) AnalyzePrice(ctx context.Context, sess *session.Session, country, ticker string) (*models.AnalysisResult, error) {
	return u.Analyze(ctx, sess, models.AnalysisPrice, country, ticker)
}

func (u *AnalysisUseCase) AnalyzeConsolidated(ctx context.Context, sess *session.Session, country, ticker string) (*models.AnalysisResult, error) {
	return u.Analyze(ctx, sess, models.AnalysisConsolidated, country, ticker)
}

// record stores and announces an attempt; failures are only logged.
func (u *AnalysisUseCase) record(ctx context.Context, rec *models.AnalysisRecord) {
	ctx = context.WithoutCancel(ctx)
	if u.store != nil {
		if err := u.store.Store(ctx, rec); err != nil {
			u.metrics.RecordError("analysis_store")
			u.log.Warn("analysis record failed", applogger.String("ticker", rec.Ticker), applogger.Error(err))
		}
	}
	if u.events != nil {
		ev := &models.Event{ID: rec.ID, Type: models.EventAnalysis, Key: rec.Ticker, At: rec.RecordedAt, Payload: rec}
		if err := u.events.Publish(ctx, ev); err != nil {
			u.log.Warn("analysis event publish failed", applogger.String("ticker", rec.Ticker), applogger.Error(err))
		}
	}
}

// History lists stored attempts, newest first.
func (u *AnalysisUseCase) History(ctx context.Context, country, ticker string, limit int) ([]*models.AnalysisRecord, error) {
	if u.store == nil {
		return []*models.AnalysisRecord{}, nil
	}
	recs, err := u.store.History(ctx, country, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("analysis history: %w", err)
	}
	return recs, nil
}
