package api

import (
	"StockDash/internal/domain/models"
	"StockDash/internal/usecase"
	xhttp "StockDash/pkg/http"

	"github.com/labstack/echo/v4"
)

// News returns 409 while the same ticker is already being aggregated.
func (h *Handler) News(c echo.Context) error {
	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.news.Aggregate(c.Request().Context(), usecase.NewsParams{
		Country: req.Country,
		Ticker:  req.Ticker,
		Name:    req.Name,
		Refresh: req.Refresh,
	})
	if err != nil {
		return h.fail(c, "news unavailable", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) MainNews(c echo.Context) error {
	items, err := h.news.MainNews(c.Request().Context())
	if err != nil {
		return h.fail(c, "main news unavailable", err)
	}
	return xhttp.ListResponse(c, items, int64(len(items)))
}

func (h *Handler) Analysis(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.analysis.Analyze(c.Request().Context(), h.session(c), models.AnalysisKind(req.Kind), req.Country, req.Ticker)
	if err != nil {
		return h.fail(c, "analysis failed", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	recs, err := h.analysis.History(c.Request().Context(), req.Country, req.Ticker, req.Limit)
	if err != nil {
		return h.fail(c, "analysis history unavailable", err)
	}
	return xhttp.ListResponse(c, recs, int64(len(recs)))
}
