package usecase

import (
	"context"
	"fmt"

	"StockDash/internal/domain/models"
	domsvc "StockDash/internal/domain/service"
	"StockDash/internal/service/session"
	applogger "StockDash/pkg/logger"
)

// AuthUseCase is the only writer of session tokens.
type AuthUseCase struct {
	auth     domsvc.Authenticator
	sessions *session.Manager
	log      *applogger.Logger
}

func NewAuthUseCase(auth domsvc.Authenticator, sessions *session.Manager, l *applogger.Logger) *AuthUseCase {
	return &AuthUseCase{auth: auth, sessions: sessions, log: l}
}

// Session returns the handle for id.
func (u *AuthUseCase) Session(id string) *session.Session {
	return u.sessions.Session(id)
}

// Login exchanges code for a token and stores it under sessionID, minting one when empty.
func (u *AuthUseCase) Login(ctx context.Context, sessionID, code string) (string, *models.LoginResult, error) {
	res, err := u.auth.Login(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}
	if sessionID == "" {
		sessionID = u.sessions.NewID()
	}
	if err := u.sessions.Session(sessionID).SetToken(ctx, res.Token); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}
	u.log.Info("user logged in", applogger.String("session", sessionID), applogger.String("user", res.User.ID))
	return sessionID, res, nil
}

// Verify resolves the session's user. A 401 clears the token.
func (u *AuthUseCase) Verify(ctx context.Context, sess *session.Session) (*models.User, error) {
	token := sess.Token(ctx)
	if token == "" {
		return nil, session.ErrNoSession
	}
	user, err := u.auth.Verify(ctx, token)
	if err != nil {
		if sess.InvalidateOn(ctx, err) {
			return nil, session.ErrNoSession
		}
		return nil, fmt.Errorf("verify: %w", err)
	}
	return user, nil
}

func (u *AuthUseCase) Logout(ctx context.Context, sess *session.Session) error {
	return sess.Clear(ctx)
}
