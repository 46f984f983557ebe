package service

import (
	"context"

	"StockDash/internal/domain/models"
)

// StockSource is the stock host: search, recommendation lists and per-ticker details.
type StockSource interface {
	Search(ctx context.Context, q string) ([]models.SearchResult, error)
	Recommend(ctx context.Context, country string) ([]models.RecommendItem, error)
	ChangeRate(ctx context.Context, country, ticker string) (*models.ChangeRate, error)
	AllChanges(ctx context.Context, country string) ([]models.BulkChange, error)
	KrName(ctx context.Context, ticker string) (string, error)
	MainNews(ctx context.Context) ([]models.MainNewsItem, error)
}

// NewsSource is the external host: crawler reference lists and per-article summaries.
type NewsSource interface {
	References(ctx context.Context, name string) (models.CrawlerRefs, error)
	Article(ctx context.Context, ref string) (*models.NewsSummary, error)
}

// Analyzer runs the remote analysis models. token may be empty.
type Analyzer interface {
	Analyze(ctx context.Context, kind models.AnalysisKind, country, ticker, token string) (string, error)
}

// Authenticator is the auth host.
type Authenticator interface {
	Login(ctx context.Context, code string) (*models.LoginResult, error)
	Verify(ctx context.Context, token string) (*models.User, error)
}
