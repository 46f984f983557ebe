package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
)

// MemoryWatchlistStore mirrors RedisWatchlistStore in process.
type MemoryWatchlistStore struct {
	mu        sync.Mutex
	recent    map[string]map[string]time.Time
	favorites map[string]map[string]time.Time
}

func NewMemoryWatchlistStore() *MemoryWatchlistStore {
	return &MemoryWatchlistStore{
		recent:    make(map[string]map[string]time.Time),
		favorites: make(map[string]map[string]time.Time),
	}
}

func (s *MemoryWatchlistStore) AddRecent(_ context.Context, userID, stockCode string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.recent[userID]
	if m == nil {
		m = make(map[string]time.Time)
		s.recent[userID] = m
	}
	m[stockCode] = at
	if len(m) > MaxRecent {
		entries := sortedEntries(m)
		for _, e := range entries[MaxRecent:] {
			delete(m, e.StockCode)
		}
	}
	return nil
}

func (s *MemoryWatchlistStore) Recent(_ context.Context, userID string, limit int) ([]models.WatchEntry, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := sortedEntries(s.recent[userID])
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *MemoryWatchlistStore) AddFavorite(_ context.Context, userID, stockCode string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.favorites[userID]
	if m == nil {
		m = make(map[string]time.Time)
		s.favorites[userID] = m
	}
	if _, ok := m[stockCode]; !ok {
		m[stockCode] = at
	}
	return nil
}

func (s *MemoryWatchlistStore) RemoveFavorite(_ context.Context, userID, stockCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.favorites[userID], stockCode)
	return nil
}

func (s *MemoryWatchlistStore) Favorites(_ context.Context, userID string) ([]models.WatchEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedEntries(s.favorites[userID]), nil
}

// sortedEntries orders newest first, ties by code.
func sortedEntries(m map[string]time.Time) []models.WatchEntry {
	out := make([]models.WatchEntry, 0, len(m))
	for code, at := range m {
		out = append(out, models.WatchEntry{StockCode: code, At: at})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.After(out[j].At)
		}
		return out[i].StockCode < out[j].StockCode
	})
	return out
}

var _ domrepo.WatchlistStore = (*MemoryWatchlistStore)(nil)
