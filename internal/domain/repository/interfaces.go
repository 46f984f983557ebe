package repository

import (
	"context"
	"time"

	"StockDash/internal/domain/models"
)

// Metrics records pipeline outcomes.
type Metrics interface {
	RecordFetch(stage, outcome string)
	RecordSentinel(kind string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

// EventPublisher emits domain events; implementations must not block callers for long.
type EventPublisher interface {
	Publish(ctx context.Context, e *models.Event) error
	Close() error
}

// AnalysisStore keeps analysis attempts for the history endpoint.
type AnalysisStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, r *models.AnalysisRecord) error
	History(ctx context.Context, country, ticker string, limit int) ([]*models.AnalysisRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// WatchlistStore keeps per-user recent and favorite stocks.
type WatchlistStore interface {
	AddRecent(ctx context.Context, userID, stockCode string, at time.Time) error
	Recent(ctx context.Context, userID string, limit int) ([]models.WatchEntry, error)
	AddFavorite(ctx context.Context, userID, stockCode string, at time.Time) error
	RemoveFavorite(ctx context.Context, userID, stockCode string) error
	Favorites(ctx context.Context, userID string) ([]models.WatchEntry, error)
}

// RefreshRequester asks for an asynchronous table rebuild.
type RefreshRequester interface {
	RequestRefresh(ctx context.Context, country string) error
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordFetch(string, string)    {}
func (NopMetrics) RecordSentinel(string)         {}
func (NopMetrics) RecordError(string)            {}
func (NopMetrics) RecordLatency(string, float64) {}
