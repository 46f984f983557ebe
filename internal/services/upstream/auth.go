package upstream

import (
	"context"
	"encoding/json"
	"errors"

	"StockDash/internal/domain/models"
	domsvc "StockDash/internal/domain/service"
	xhttp "StockDash/pkg/http"
)

// AuthClient calls the auth host.
type AuthClient struct{ base *HTTPServiceBase }

func NewAuthClient(base *HTTPServiceBase) *AuthClient { return &AuthClient{base: base} }

// Login exchanges an OAuth code for a token.
func (a *AuthClient) Login(ctx context.Context, code string) (*models.LoginResult, error) {
	url := a.base.urls.Login()
	var out models.LoginResult
	if err := a.base.postJSON(ctx, "login", url, map[string]string{"code": code}, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, xhttp.NewShapeError("login", url, errors.New("no token in response"))
	}
	return &out, nil
}

// Verify checks a token. The host answers either {user:{...}} or the bare user.
func (a *AuthClient) Verify(ctx context.Context, token string) (*models.User, error) {
	url := a.base.urls.Verify()
	var raw []byte
	if err := a.base.postJSON(ctx, "verify", url, map[string]string{"token": token}, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, xhttp.NewShapeError("verify", url, err)
	}
	u := wrapped.User
	if u == nil {
		u = &models.User{}
		if err := json.Unmarshal(raw, u); err != nil {
			return nil, xhttp.NewShapeError("verify", url, err)
		}
	}
	if u.ID == "" && u.Email == "" {
		return nil, xhttp.NewShapeError("verify", url, errors.New("no user in response"))
	}
	return u, nil
}

var _ domsvc.Authenticator = (*AuthClient)(nil)
