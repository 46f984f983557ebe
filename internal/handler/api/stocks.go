package api

import (
	"strings"

	"StockDash/internal/domain/models"
	"StockDash/internal/usecase"
	xhttp "StockDash/pkg/http"
	xutil "StockDash/pkg/util"

	"github.com/labstack/echo/v4"
)

func (h *Handler) Search(c echo.Context) error {
	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.stocks.Search(c.Request().Context(), strings.TrimSpace(req.Q))
	if err != nil {
		return h.fail(c, "search failed", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Table serves one page; out-of-range pages are clamped rather than rejected.
func (h *Handler) Table(c echo.Context) error {
	req := &models.TableRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	view, err := h.views.AssembleTable(c.Request().Context(), req.Country, req.Page, models.NormalizeSortMode(req.Sort), req.Refresh)
	if err != nil {
		return h.fail(c, "recommendation list unavailable", err)
	}
	return xhttp.SuccessResponse(c, view)
}

func (h *Handler) Details(c echo.Context) error {
	req := &models.DetailsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	refs := make([]usecase.TickerRef, len(req.Tickers))
	for i, t := range req.Tickers {
		refs[i] = usecase.TickerRef{Ticker: strings.TrimSpace(t)}
	}
	rows := h.details.Fetch(c.Request().Context(), req.Country, refs)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Stock never fails once the request is valid; section errors travel inside the view.
func (h *Handler) Stock(c echo.Context) error {
	req := &models.StockRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	view := h.views.AssembleStock(c.Request().Context(), req.Country, req.Ticker, usecase.StockOptions{
		Name:     req.Name,
		News:     req.News,
		Analysis: models.AnalysisKind(req.Analysis),
		Refresh:  req.Refresh,
		Session:  h.session(c),
	})
	return xhttp.SuccessResponse(c, view)
}

func (h *Handler) Chart(c echo.Context) error {
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, end := xutil.ChartRange(h.now(), h.chartDays)
	if req.Start != "" {
		start = req.Start
	}
	if req.End != "" {
		end = req.End
	}
	return xhttp.SuccessResponse(c, map[string]string{"url": h.urls.Chart(req.Country, req.Ticker, start, end)})
}

func (h *Handler) Home(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.views.AssembleHome(c.Request().Context()))
}
