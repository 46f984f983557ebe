package api

import (
	"StockDash/internal/domain/models"
	xhttp "StockDash/pkg/http"
	applogger "StockDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Refresh queues a table rebuild; the response does not wait for it.
func (h *Handler) Refresh(c echo.Context) error {
	req := &models.RefreshRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.refresher.RequestRefresh(c.Request().Context(), req.Country); err != nil {
		return h.fail(c, "refresh request failed", err)
	}
	return xhttp.AcceptedResponse(c, map[string]string{"country": req.Country})
}

// SessionStream pushes login/logout events for one session over a websocket.
func (h *Handler) SessionStream(c echo.Context) error {
	sid := sessionID(c)
	if sid == "" {
		return xhttp.UnauthorizedResponse(c, []*xhttp.AppError{xhttp.UnauthorizedError("session id required")})
	}
	if err := h.stream.Serve(c.Request().Context(), c.Response(), c.Request(), sid); err != nil {
		h.log.Debug("session stream closed", applogger.String("session", sid), applogger.Error(err))
	}
	return nil
}
