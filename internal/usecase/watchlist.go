package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
	"StockDash/internal/service/session"
)

// WatchlistUseCase keeps recent and favorite stocks of the verified user.
type WatchlistUseCase struct {
	auth  *AuthUseCase
	store domrepo.WatchlistStore
	now   func() time.Time
}

func NewWatchlistUseCase(auth *AuthUseCase, store domrepo.WatchlistStore) *WatchlistUseCase {
	return &WatchlistUseCase{auth: auth, store: store, now: time.Now}
}

func (u *WatchlistUseCase) userID(ctx context.Context, sess *session.Session) (string, error) {
	user, err := u.auth.Verify(ctx, sess)
	if err != nil {
		return "", err
	}
	id := user.ID
	if id == "" {
		id = user.Email
	}
	return id, nil
}

func (u *WatchlistUseCase) AddRecent(ctx context.Context, sess *session.Session, stockCode string) error {
	id, err := u.userID(ctx, sess)
	if err != nil {
		return err
	}
	if err := u.store.AddRecent(ctx, id, strings.TrimSpace(stockCode), u.now().UTC()); err != nil {
		return fmt.Errorf("add recent: %w", err)
	}
	return nil
}

func (u *WatchlistUseCase) Recent(ctx context.Context, sess *session.Session, limit int) ([]models.WatchEntry, error) {
	id, err := u.userID(ctx, sess)
	if err != nil {
		return nil, err
	}
	return u.store.Recent(ctx, id, limit)
}

func (u *WatchlistUseCase) AddFavorite(ctx context.Context, sess *session.Session, stockCode string) error {
	id, err := u.userID(ctx, sess)
	if err != nil {
		return err
	}
	return u.store.AddFavorite(ctx, id, strings.TrimSpace(stockCode), u.now().UTC())
}

func (u *WatchlistUseCase) RemoveFavorite(ctx context.Context, sess *session.Session, stockCode string) error {
	id, err := u.userID(ctx, sess)
	if err != nil {
		return err
	}
	return u.store.RemoveFavorite(ctx, id, strings.TrimSpace(stockCode))
}

func (u *WatchlistUseCase) Favorites(ctx context.Context, sess *session.Session) ([]models.WatchEntry, error) {
	id, err := u.userID(ctx, sess)
	if err != nil {
		return nil, err
	}
	return u.store.Favorites(ctx, id)
}
