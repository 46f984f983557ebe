package repository

import (
	"context"
	"time"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
	pkgkafka "StockDash/pkg/kafka"
	applogger "StockDash/pkg/logger"

	"github.com/google/uuid"
)

// KafkaEventPublisher implements EventPublisher for Kafka; events are keyed by Event.Key.
type KafkaEventPublisher struct {
	producer pkgkafka.Publisher
	topic    string
	close    func() error
}

// NewKafkaEventPublisher creates a publisher; closeFn may be nil when the producer is shared.
func NewKafkaEventPublisher(producer pkgkafka.Publisher, topic string, closeFn func() error) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic, close: closeFn}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, e *models.Event) error {
	if e.ID != "" {
		ctx = pkgkafka.WithTraceID(ctx, e.ID)
	}
	return p.producer.Publish(ctx, p.topic, []byte(e.Key), e)
}

func (p *KafkaEventPublisher) Close() error {
	if p.close != nil {
		return p.close()
	}
	return nil
}

// KafkaRefreshRequester publishes RefreshCommand messages keyed by country.
type KafkaRefreshRequester struct {
	producer pkgkafka.Publisher
	topic    string
}

func NewKafkaRefreshRequester(producer pkgkafka.Publisher, topic string) *KafkaRefreshRequester {
	return &KafkaRefreshRequester{producer: producer, topic: topic}
}

func (r *KafkaRefreshRequester) RequestRefresh(ctx context.Context, country string) error {
	ctx = pkgkafka.WithTraceID(ctx, uuid.NewString())
	return r.producer.Publish(ctx, r.topic, []byte(country), models.RefreshCommand{
		Country:     country,
		RequestedAt: time.Now().UTC(),
	})
}

// LogEventPublisher writes events to the log; it stands in when Kafka is disabled.
type LogEventPublisher struct {
	l *applogger.Logger
}

func NewLogEventPublisher(l *applogger.Logger) *LogEventPublisher {
	return &LogEventPublisher{l: l}
}

func (p *LogEventPublisher) Publish(_ context.Context, e *models.Event) error {
	p.l.Debug("event",
		applogger.String("id", e.ID),
		applogger.String("type", string(e.Type)),
		applogger.String("key", e.Key),
		applogger.Any("payload", e.Payload),
	)
	return nil
}

func (p *LogEventPublisher) Close() error { return nil }

var (
	_ domrepo.EventPublisher   = (*KafkaEventPublisher)(nil)
	_ domrepo.EventPublisher   = (*LogEventPublisher)(nil)
	_ domrepo.RefreshRequester = (*KafkaRefreshRequester)(nil)
)
