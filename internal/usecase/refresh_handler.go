package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
	pkgkafka "StockDash/pkg/kafka"
	applogger "StockDash/pkg/logger"
	"StockDash/pkg/queue"
)

// RefreshHandler rebuilds a country's table so the next read is warm.
// It serves the Kafka refresh topic and the Redis job queue.
type RefreshHandler struct {
	topic   string
	views   *ViewAssembler
	metrics domrepo.Metrics
	log     *applogger.Logger
}

func NewRefreshHandler(topic string, views *ViewAssembler, metrics domrepo.Metrics, l *applogger.Logger) *RefreshHandler {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	return &RefreshHandler{topic: topic, views: views, metrics: metrics, log: l}
}

func (h *RefreshHandler) Topic() string { return h.topic }

// Handle decodes {country, requestedAt}.
func (h *RefreshHandler) Handle(ctx context.Context, b []byte) error {
	var cmd models.RefreshCommand
	if err := json.Unmarshal(b, &cmd); err != nil {
		h.metrics.RecordError("refresh_unmarshal")
		return err
	}
	return h.refresh(ctx, cmd)
}

func (h *RefreshHandler) refresh(ctx context.Context, cmd models.RefreshCommand) error {
	if cmd.Country != models.CountryKR && cmd.Country != models.CountryUS {
		h.metrics.RecordError("refresh_country")
		return fmt.Errorf("refresh: unknown country %q", cmd.Country)
	}
	if !cmd.RequestedAt.IsZero() {
		h.metrics.RecordLatency("refresh_queue_seconds", time.Since(cmd.RequestedAt).Seconds())
	}

	start := time.Now()
	rows, err := h.views.RefreshTable(ctx, cmd.Country)
	if err != nil {
		h.metrics.RecordError("refresh_build")
		return err
	}
	h.log.Info("table refreshed",
		applogger.String("country", cmd.Country),
		applogger.Int("rows", len(rows)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

// Job adapts the handler to the Redis queue.
func (h *RefreshHandler) Job() queue.Job { return refreshJob{h} }

type refreshJob struct{ h *RefreshHandler }

func (refreshJob) Name() string { return "table-refresh" }

func (refreshJob) Type() string { return string(models.EventRefresh) }

func (j refreshJob) Handle(ctx context.Context, payload interface{}) error {
	cmd, err := queue.ParsePayload[models.RefreshCommand](payload)
	if err != nil {
		return err
	}
	return j.h.refresh(ctx, *cmd)
}

// QueueRefreshRequester enqueues refresh jobs on a queue.
type QueueRefreshRequester struct {
	q queue.QueueService
}

func NewQueueRefreshRequester(q queue.QueueService) *QueueRefreshRequester {
	return &QueueRefreshRequester{q: q}
}

func (r *QueueRefreshRequester) RequestRefresh(ctx context.Context, country string) error {
	return r.q.PublishMessage(ctx, string(models.EventRefresh), models.RefreshCommand{Country: country, RequestedAt: time.Now().UTC()})
}

// LocalRefreshRequester rebuilds in a background goroutine when no broker is configured.
type LocalRefreshRequester struct {
	h *RefreshHandler
}

func NewLocalRefreshRequester(h *RefreshHandler) *LocalRefreshRequester {
	return &LocalRefreshRequester{h: h}
}

func (r *LocalRefreshRequester) RequestRefresh(ctx context.Context, country string) error {
	cmd := models.RefreshCommand{Country: country, RequestedAt: time.Now().UTC()}
	if cmd.Country != models.CountryKR && cmd.Country != models.CountryUS {
		return fmt.Errorf("refresh: unknown country %q", country)
	}
	go func() {
		if err := r.h.refresh(context.WithoutCancel(ctx), cmd); err != nil {
			r.h.log.Warn("local refresh failed", applogger.String("country", country), applogger.Error(err))
		}
	}()
	return nil
}

var (
	_ pkgkafka.MessageHandler  = (*RefreshHandler)(nil)
	_ queue.Job                = refreshJob{}
	_ domrepo.RefreshRequester = (*QueueRefreshRequester)(nil)
	_ domrepo.RefreshRequester = (*LocalRefreshRequester)(nil)
)
