package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"StockDash/internal/domain/models"
)

func TestMemoryWatchlistRecentKeepsLatest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryWatchlistStore()
	base := time.Unix(1_700_000_000, 0)

	for i := 0; i < MaxRecent+5; i++ {
		_ = s.AddRecent(ctx, "u", fmt.Sprintf("T%02d", i), base.Add(time.Duration(i)*time.Second))
	}
	// revisiting an old code moves it to the front
	_ = s.AddRecent(ctx, "u", "T10", base.Add(time.Hour))

	got, _ := s.Recent(ctx, "u", 0)
	if len(got) != MaxRecent {
		t.Fatalf("len = %d, want %d", len(got), MaxRecent)
	}
	if got[0].StockCode != "T10" {
		t.Errorf("front = %s, want T10", got[0].StockCode)
	}
	if got[1].StockCode != "T24" {
		t.Errorf("second = %s, want T24", got[1].StockCode)
	}
}

func TestMemoryWatchlistFavoritesIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryWatchlistStore()
	first := time.Unix(1_700_000_000, 0)

	_ = s.AddFavorite(ctx, "u", "005930", first)
	_ = s.AddFavorite(ctx, "u", "005930", first.Add(time.Hour))
	_ = s.AddFavorite(ctx, "u", "AAPL", first.Add(time.Minute))

	got, _ := s.Favorites(ctx, "u")
	if len(got) != 2 {
		t.Fatalf("favorites = %+v", got)
	}
	if got[1].StockCode != "005930" || !got[1].At.Equal(first) {
		t.Errorf("first add time not kept: %+v", got[1])
	}

	_ = s.RemoveFavorite(ctx, "u", "AAPL")
	_ = s.RemoveFavorite(ctx, "nobody", "AAPL")
	got, _ = s.Favorites(ctx, "u")
	if len(got) != 1 {
		t.Errorf("after remove = %+v", got)
	}
}

func TestMemoryAnalysisStoreHistory(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAnalysisStore(3)
	for i := 0; i < 5; i++ {
		_ = s.Store(ctx, &models.AnalysisRecord{ID: fmt.Sprint(i), Country: "kr", Ticker: "005930"})
	}
	got, _ := s.History(ctx, "kr", "005930", 2)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].ID != "4" || got[1].ID != "3" {
		t.Errorf("history = %v, %v", got[0].ID, got[1].ID)
	}
	all, _ := s.History(ctx, "kr", "005930", 0)
	if len(all) != 3 {
		t.Errorf("cap not applied: %d", len(all))
	}
}
