package usecase

import (
	"context"
	"errors"
	"testing"

	"StockDash/internal/domain/models"
	"StockDash/internal/repository"
	"StockDash/internal/service/session"
	"StockDash/pkg/cache"
)

func newAuth(t *testing.T, fa *fakeAuth) *AuthUseCase {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { mc.Close() })
	return NewAuthUseCase(fa, session.NewManager(mc), nopLog)
}

func TestLoginMintsSessionAndVerifies(t *testing.T) {
	fa := &fakeAuth{token: "jwt", user: &models.User{ID: "u1", Email: "a@b.c"}}
	u := newAuth(t, fa)
	ctx := context.Background()

	sid, res, err := u.Login(ctx, "", "code")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sid == "" || res.Token != "jwt" {
		t.Fatalf("sid %q res %+v", sid, res)
	}
	user, err := u.Verify(ctx, u.Session(sid))
	if err != nil || user.ID != "u1" {
		t.Fatalf("Verify = %+v, %v", user, err)
	}

	if err := u.Logout(ctx, u.Session(sid)); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := u.Verify(ctx, u.Session(sid)); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("after logout err = %v", err)
	}
}

func TestVerifyRejectedTokenClearsSession(t *testing.T) {
	fa := &fakeAuth{token: "jwt", user: &models.User{ID: "u1"}}
	u := newAuth(t, fa)
	ctx := context.Background()

	sess := u.Session("s1")
	_ = sess.SetToken(ctx, "stale")
	if _, err := u.Verify(ctx, sess); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("err = %v", err)
	}
	if sess.LoggedIn(ctx) {
		t.Errorf("stale token kept")
	}
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	u := newAuth(t, &fakeAuth{err: upstreamStatus(400)})
	sid, _, err := u.Login(context.Background(), "s1", "bad")
	if err == nil || sid != "" {
		t.Fatalf("sid %q err %v", sid, err)
	}
	if u.Session("s1").LoggedIn(context.Background()) {
		t.Errorf("session stored after failed login")
	}
}

func TestWatchlistUsesVerifiedUser(t *testing.T) {
	fa := &fakeAuth{token: "jwt", user: &models.User{Email: "a@b.c"}}
	auth := newAuth(t, fa)
	store := repository.NewMemoryWatchlistStore()
	w := NewWatchlistUseCase(auth, store)
	ctx := context.Background()

	anon := auth.Session("anon")
	if err := w.AddRecent(ctx, anon, "005930"); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("anonymous add err = %v", err)
	}

	sid, _, err := auth.Login(ctx, "", "code")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	sess := auth.Session(sid)
	if err := w.AddRecent(ctx, sess, " 005930 "); err != nil {
		t.Fatalf("AddRecent: %v", err)
	}
	if err := w.AddFavorite(ctx, sess, "AAPL"); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	recent, _ := store.Recent(ctx, "a@b.c", 10)
	if len(recent) != 1 || recent[0].StockCode != "005930" {
		t.Errorf("recent keyed by email = %+v", recent)
	}
	if err := w.RemoveFavorite(ctx, sess, "AAPL"); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	favs, err := w.Favorites(ctx, sess)
	if err != nil || len(favs) != 0 {
		t.Errorf("favorites = %+v, %v", favs, err)
	}
}
