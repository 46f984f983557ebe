package repository

import (
	"context"
	"fmt"
	"time"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
	"StockDash/pkg/cache"

	"github.com/redis/go-redis/v9"
)

// MaxRecent is how many recent stocks are kept per user.
const MaxRecent = 20

// RedisWatchlistStore keeps recent and favorite stocks in sorted sets scored by unix millis.
type RedisWatchlistStore struct {
	rc  *cache.RedisCache
	cli *redis.Client
}

func NewRedisWatchlistStore(rc *cache.RedisCache) *RedisWatchlistStore {
	return &RedisWatchlistStore{rc: rc, cli: rc.Client()}
}

func (s *RedisWatchlistStore) recentKey(userID string) string {
	return s.rc.Key(cache.GenerateKeyWithParams("watch", userID, "recent"))
}

func (s *RedisWatchlistStore) favoritesKey(userID string) string {
	return s.rc.Key(cache.GenerateKeyWithParams("watch", userID, "favorites"))
}

// AddRecent moves stockCode to the front and trims to MaxRecent.
func (s *RedisWatchlistStore) AddRecent(ctx context.Context, userID, stockCode string, at time.Time) error {
	key := s.recentKey(userID)
	pipe := s.cli.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.UnixMilli()), Member: stockCode})
	pipe.ZRemRangeByRank(ctx, key, 0, -MaxRecent-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add recent: %w", err)
	}
	return nil
}

func (s *RedisWatchlistStore) Recent(ctx context.Context, userID string, limit int) ([]models.WatchEntry, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}
	zs, err := s.cli.ZRevRangeWithScores(ctx, s.recentKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	return toEntries(zs), nil
}

// AddFavorite is idempotent; the first add time is kept.
func (s *RedisWatchlistStore) AddFavorite(ctx context.Context, userID, stockCode string, at time.Time) error {
	err := s.cli.ZAddNX(ctx, s.favoritesKey(userID), redis.Z{Score: float64(at.UnixMilli()), Member: stockCode}).Err()
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (s *RedisWatchlistStore) RemoveFavorite(ctx context.Context, userID, stockCode string) error {
	if err := s.cli.ZRem(ctx, s.favoritesKey(userID), stockCode).Err(); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (s *RedisWatchlistStore) Favorites(ctx context.Context, userID string) ([]models.WatchEntry, error) {
	zs, err := s.cli.ZRevRangeWithScores(ctx, s.favoritesKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("favorites: %w", err)
	}
	return toEntries(zs), nil
}

func toEntries(zs []redis.Z) []models.WatchEntry {
	out := make([]models.WatchEntry, 0, len(zs))
	for _, z := range zs {
		code, _ := z.Member.(string)
		out = append(out, models.WatchEntry{StockCode: code, At: time.UnixMilli(int64(z.Score)).UTC()})
	}
	return out
}

var _ domrepo.WatchlistStore = (*RedisWatchlistStore)(nil)
