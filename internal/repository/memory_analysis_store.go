package repository

import (
	"context"
	"sync"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
)

// MemoryAnalysisStore keeps the latest records per instrument in process.
// It backs the history endpoint when ClickHouse is disabled.
type MemoryAnalysisStore struct {
	mu    sync.RWMutex
	max   int
	byKey map[string][]*models.AnalysisRecord
}

func NewMemoryAnalysisStore(maxPerTicker int) *MemoryAnalysisStore {
	if maxPerTicker <= 0 {
		maxPerTicker = 50
	}
	return &MemoryAnalysisStore{max: maxPerTicker, byKey: make(map[string][]*models.AnalysisRecord)}
}

func (s *MemoryAnalysisStore) Init(context.Context) error { return nil }

func (s *MemoryAnalysisStore) Store(_ context.Context, r *models.AnalysisRecord) error {
	k := r.Country + "/" + r.Ticker
	cp := *r
	s.mu.Lock()
	recs := append(s.byKey[k], &cp)
	if len(recs) > s.max {
		recs = recs[len(recs)-s.max:]
	}
	s.byKey[k] = recs
	s.mu.Unlock()
	return nil
}

func (s *MemoryAnalysisStore) History(_ context.Context, country, ticker string, limit int) ([]*models.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.byKey[country+"/"+ticker]
	out := make([]*models.AnalysisRecord, 0, len(recs))
	for i := len(recs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		cp := *recs[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryAnalysisStore) Health(context.Context) error { return nil }

func (s *MemoryAnalysisStore) Close() error { return nil }

var _ domrepo.AnalysisStore = (*MemoryAnalysisStore)(nil)
