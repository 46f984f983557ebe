package server

import (
	"context"
	"os/signal"
	"syscall"

	"StockDash/pkg/config"
	xhttp "StockDash/pkg/http"
	"StockDash/pkg/http/middleware"
	pkgkafka "StockDash/pkg/kafka"
	applogger "StockDash/pkg/logger"
)

// Worker is a background component started with the server and stopped on shutdown.
type Worker interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// App encapsulates the application lifecycle: HTTP server, refresh consumer and workers.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	handler  xhttp.Routes
	limiter  middleware.Allower
	consumer *pkgkafka.Consumer
	kh       pkgkafka.MessageHandler
	workers  []Worker

	httpServer *xhttp.Server
}

// Option configures App.
type Option func(*App)

// WithConsumer attaches the kafka consumer and its handler.
func WithConsumer(c *pkgkafka.Consumer, h pkgkafka.MessageHandler) Option {
	return func(a *App) {
		a.consumer = c
		a.kh = h
	}
}

// WithWorker adds a background worker.
func WithWorker(w Worker) Option {
	return func(a *App) {
		a.workers = append(a.workers, w)
	}
}

// WithLimiter enables the inbound per-client rate limit.
func WithLimiter(l middleware.Allower) Option {
	return func(a *App) { a.limiter = l }
}

func New(cfg *config.Config, l *applogger.Logger, handler xhttp.Routes, opts ...Option) *App {
	a := &App{cfg: cfg, log: l, handler: handler}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
		xhttp.WithSlowThreshold(a.cfg.Server.SlowThreshold),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	if a.limiter != nil {
		opts = append(opts, xhttp.WithRateLimiter(a.limiter))
	}
	a.httpServer = xhttp.NewServer(a.handler, opts...)

	for _, w := range a.workers {
		if err := w.Start(ctx); err != nil {
			a.log.Error("worker start failed", applogger.Error(err))
			return err
		}
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	a.log.Info("starting",
		applogger.String("env", a.cfg.Environment),
		applogger.Bool("redis", a.cfg.Redis.Enabled),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
		applogger.Bool("clickhouse", a.cfg.ClickHouse.Enabled),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops intake first, then background work.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	for i := len(a.workers) - 1; i >= 0; i-- {
		if err := a.workers[i].Stop(ctx); err != nil {
			a.log.Warn("worker stop error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
