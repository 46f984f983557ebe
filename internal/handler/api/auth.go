package api

import (
	"StockDash/internal/domain/models"
	xhttp "StockDash/pkg/http"
	"StockDash/pkg/http/middleware"

	"github.com/labstack/echo/v4"
)

type loginResponse struct {
	SessionID string      `json:"sessionId"`
	User      models.User `json:"user"`
	IsNewUser bool        `json:"isNewUser"`
}

// Login keeps the token server side; the client only holds the session id.
func (h *Handler) Login(c echo.Context) error {
	req := &models.LoginRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sid, res, err := h.auth.Login(c.Request().Context(), sessionID(c), req.Code)
	if err != nil {
		return h.fail(c, "login failed", err)
	}
	c.Response().Header().Set(middleware.HeaderSessionID, sid)
	return xhttp.SuccessResponse(c, loginResponse{SessionID: sid, User: res.User, IsNewUser: res.IsNewUser})
}

func (h *Handler) Verify(c echo.Context) error {
	user, err := h.auth.Verify(c.Request().Context(), h.session(c))
	if err != nil {
		return h.fail(c, "verify failed", err)
	}
	return xhttp.SuccessResponse(c, user)
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), h.session(c)); err != nil {
		return h.fail(c, "logout failed", err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *Handler) Recent(c echo.Context) error {
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 20)
	entries, err := h.watchlist.Recent(c.Request().Context(), h.session(c), limit)
	if err != nil {
		return h.fail(c, "recent stocks unavailable", err)
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *Handler) AddRecent(c echo.Context) error {
	req := &models.WatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.watchlist.AddRecent(c.Request().Context(), h.session(c), req.StockCode); err != nil {
		return h.fail(c, "add recent failed", err)
	}
	return xhttp.CreatedResponse(c, req)
}

func (h *Handler) Favorites(c echo.Context) error {
	entries, err := h.watchlist.Favorites(c.Request().Context(), h.session(c))
	if err != nil {
		return h.fail(c, "favorites unavailable", err)
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *Handler) AddFavorite(c echo.Context) error {
	req := &models.WatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.watchlist.AddFavorite(c.Request().Context(), h.session(c), req.StockCode); err != nil {
		return h.fail(c, "add favorite failed", err)
	}
	return xhttp.CreatedResponse(c, req)
}

func (h *Handler) RemoveFavorite(c echo.Context) error {
	req := &models.WatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.watchlist.RemoveFavorite(c.Request().Context(), h.session(c), req.StockCode); err != nil {
		return h.fail(c, "remove favorite failed", err)
	}
	return xhttp.NoContentResponse(c)
}
