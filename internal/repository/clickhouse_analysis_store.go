package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
	pkgch "StockDash/pkg/clickhouse"
	applogger "StockDash/pkg/logger"
)

const analysisTableDDL = `
        CREATE TABLE IF NOT EXISTS %s (
            id          String,
            kind        LowCardinality(String),
            country     LowCardinality(String),
            ticker      String,
            ok          UInt8,
            text        String,
            error       String,
            took_ms     Int64,
            recorded_at DateTime64(3, 'UTC')
        )
        ENGINE = MergeTree
        PARTITION BY toYYYYMM(recorded_at)
        ORDER BY (country, ticker, recorded_at)
        TTL toDateTime(recorded_at) + INTERVAL 180 DAY
    `

// CHAnalysisStore implements AnalysisStore backed by ClickHouse.
type CHAnalysisStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHAnalysisStore(ch *pkgch.Client, l *applogger.Logger) *CHAnalysisStore {
	return &CHAnalysisStore{db: ch.DB(), table: ch.Database() + ".analysis_history", l: l}
}

func (s *CHAnalysisStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(analysisTableDDL, s.table)); err != nil {
		return fmt.Errorf("init analysis table: %w", err)
	}
	return nil
}

func (s *CHAnalysisStore) Store(ctx context.Context, r *models.AnalysisRecord) error {
	q := fmt.Sprintf("INSERT INTO %s (id, kind, country, ticker, ok, text, error, took_ms, recorded_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	var ok uint8
	if r.OK {
		ok = 1
	}
	_, err := s.db.ExecContext(ctx, q,
		r.ID,
		string(r.Kind),
		r.Country,
		r.Ticker,
		ok,
		r.Text,
		r.Error,
		r.TookMs,
		r.RecordedAt.UTC(),
	)
	if err != nil {
		s.l.Error("clickhouse store_analysis error",
			applogger.String("table", s.table),
			applogger.String("ticker", r.Ticker),
			applogger.Error(err),
		)
		return fmt.Errorf("store analysis: %w", err)
	}
	return nil
}

// History returns the newest records first.
func (s *CHAnalysisStore) History(ctx context.Context, country, ticker string, limit int) ([]*models.AnalysisRecord, error) {
	start := time.Now()
	const qtpl = `
        SELECT id, kind, country, ticker, ok, text, error, took_ms, recorded_at
        FROM %s
        WHERE country = ? AND ticker = ?
        ORDER BY recorded_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table), country, ticker, limit)
	if err != nil {
		s.l.Error("clickhouse analysis_history query error",
			applogger.String("table", s.table),
			applogger.String("ticker", ticker),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("analysis history: %w", err)
	}
	defer rows.Close()

	out := make([]*models.AnalysisRecord, 0, limit)
	for rows.Next() {
		var (
			r    models.AnalysisRecord
			kind string
			ok   uint8
		)
		if err := rows.Scan(&r.ID, &kind, &r.Country, &r.Ticker, &ok, &r.Text, &r.Error, &r.TookMs, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		r.Kind = models.AnalysisKind(kind)
		r.OK = ok == 1
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse analysis_history ok",
		applogger.String("ticker", ticker),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHAnalysisStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHAnalysisStore) Close() error {
	return nil // Managed by pkg
}

var _ domrepo.AnalysisStore = (*CHAnalysisStore)(nil)
