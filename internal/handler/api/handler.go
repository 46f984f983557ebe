package api

import (
	"context"
	"errors"
	"time"

	domrepo "StockDash/internal/domain/repository"
	domsvc "StockDash/internal/domain/service"
	"StockDash/internal/service/endpoint"
	"StockDash/internal/service/session"
	"StockDash/internal/service/sessionstream"
	"StockDash/internal/services/upstream"
	"StockDash/internal/usecase"
	xhttp "StockDash/pkg/http"
	"StockDash/pkg/http/middleware"
	applogger "StockDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Handler serves the dashboard API. Handlers stay thin: bind, call a use case, render.
type Handler struct {
	log       *applogger.Logger
	stocks    domsvc.StockSource
	urls      *endpoint.Resolver
	views     *usecase.ViewAssembler
	details   *usecase.DetailFetcher
	news      *usecase.NewsAggregator
	analysis  *usecase.AnalysisUseCase
	auth      *usecase.AuthUseCase
	watchlist *usecase.WatchlistUseCase
	refresher domrepo.RefreshRequester
	stream    *sessionstream.Stream
	chartDays int
	now       func() time.Time
}

func NewHandler(
	l *applogger.Logger,
	stocks domsvc.StockSource,
	urls *endpoint.Resolver,
	views *usecase.ViewAssembler,
	details *usecase.DetailFetcher,
	news *usecase.NewsAggregator,
	analysis *usecase.AnalysisUseCase,
	auth *usecase.AuthUseCase,
	watchlist *usecase.WatchlistUseCase,
	refresher domrepo.RefreshRequester,
	stream *sessionstream.Stream,
	chartDays int,
) *Handler {
	return &Handler{
		log:       l,
		stocks:    stocks,
		urls:      urls,
		views:     views,
		details:   details,
		news:      news,
		analysis:  analysis,
		auth:      auth,
		watchlist: watchlist,
		refresher: refresher,
		stream:    stream,
		chartDays: chartDays,
		now:       time.Now,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/search", h.Search)
	g.GET("/home", h.Home)

	g.GET("/stocks/:country", h.Table)
	g.POST("/stocks/:country/details", h.Details)
	g.GET("/stocks/:country/:ticker", h.Stock)
	g.GET("/stocks/:country/:ticker/chart", h.Chart)

	g.GET("/news/main", h.MainNews)
	g.GET("/news/:country/:ticker", h.News)

	g.GET("/analysis/history/:country/:ticker", h.History)
	g.GET("/analysis/:kind/:country/:ticker", h.Analysis)

	g.POST("/auth/login", h.Login)
	g.POST("/auth/verify", h.Verify)
	g.POST("/auth/logout", h.Logout)

	g.GET("/me/recent", h.Recent)
	g.POST("/me/recent", h.AddRecent)
	g.GET("/me/favorites", h.Favorites)
	g.POST("/me/favorites", h.AddFavorite)
	g.DELETE("/me/favorites", h.RemoveFavorite)

	g.POST("/admin/refresh/:country", h.Refresh)

	e.GET("/ws/session", h.SessionStream)
}

// sessionID reads the header, falling back to the query for browser websockets.
func sessionID(c echo.Context) string {
	if id := c.Request().Header.Get(middleware.HeaderSessionID); id != "" {
		return id
	}
	return c.QueryParam("session")
}

func (h *Handler) session(c echo.Context) *session.Session {
	return h.auth.Session(sessionID(c))
}

// fail maps use case errors onto the response envelope.
func (h *Handler) fail(c echo.Context, msg string, err error) error {
	var appErr *xhttp.AppError
	var ae *upstream.AnalysisError
	switch {
	case errors.Is(err, usecase.ErrInFlight):
		appErr = xhttp.ConflictError("news request already in progress").WithError(err)
	case errors.Is(err, session.ErrNoSession):
		appErr = xhttp.UnauthorizedError("login required").WithError(err)
	case errors.As(err, &ae):
		if ae.Err != nil {
			appErr = xhttp.FromUpstream(ae.Message, ae.Err)
		} else {
			appErr = xhttp.BadGatewayError(ae.Message)
		}
	case errors.Is(err, context.Canceled):
		appErr = xhttp.NewAppError("ERR_CANCELED", "", "request canceled", 499).WithError(err)
	default:
		appErr = xhttp.FromUpstream(msg, err)
	}

	if appErr.Status >= 500 {
		h.log.Error(msg, applogger.String("path", c.Path()), applogger.Error(err))
	} else {
		h.log.Warn(msg, applogger.String("path", c.Path()), applogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}
