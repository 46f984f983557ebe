package kafka

import (
	"context"
	"time"

	applogger "StockDash/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// ConsumerHook defines lifecycle hooks around message handling.
// Returning a non-nil error from BeforeHandle skips the handler and counts as a failed attempt.
type ConsumerHook interface {
	BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error)
	AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
	OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
}

// NoopHook is a default hook that does nothing.
type NoopHook struct{}

func (NoopHook) BeforeHandle(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	return ctx, km, data, nil
}

func (NoopHook) AfterHandle(context.Context, string, kafka.Message, []byte, error) {}

func (NoopHook) OnError(context.Context, string, kafka.Message, []byte, error) {}

type ctxKey string

const (
	// CtxStartTime holds time.Time for when handling started.
	CtxStartTime ctxKey = "kafka_hook_start_time"
	// CtxTraceID holds correlation id extracted from headers.
	CtxTraceID ctxKey = "kafka_hook_trace_id"
)

// HeaderTraceID is set by Producer when the context carries a trace id.
const HeaderTraceID = "trace_id"

// WithTraceID stores a correlation id in ctx.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, CtxTraceID, traceID)
}

// TraceID returns the correlation id stored in ctx.
func TraceID(ctx context.Context) string {
	s, _ := ctx.Value(CtxTraceID).(string)
	return s
}

// ExtractTraceID tries to get trace id from Kafka headers.
func ExtractTraceID(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == HeaderTraceID && len(h.Value) > 0 {
			return string(h.Value)
		}
	}
	return ""
}

// LoggingHook threads the trace id into the handler context and logs slow or failed handling.
type LoggingHook struct {
	Log  *applogger.Logger
	Slow time.Duration
}

func (h LoggingHook) BeforeHandle(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	ctx = context.WithValue(ctx, CtxStartTime, time.Now())
	return WithTraceID(ctx, ExtractTraceID(km)), km, data, nil
}

func (h LoggingHook) AfterHandle(ctx context.Context, topic string, _ kafka.Message, _ []byte, err error) {
	start, ok := ctx.Value(CtxStartTime).(time.Time)
	if !ok || err != nil || h.Slow <= 0 {
		return
	}
	if took := time.Since(start); took >= h.Slow {
		h.Log.Warn("slow message handling",
			applogger.String("topic", topic),
			applogger.String("trace_id", TraceID(ctx)),
			applogger.Duration("took_ms", took),
		)
	}
}

func (h LoggingHook) OnError(ctx context.Context, topic string, km kafka.Message, _ []byte, err error) {
	h.Log.Warn("message attempt failed",
		applogger.String("topic", topic),
		applogger.String("key", string(km.Key)),
		applogger.String("trace_id", TraceID(ctx)),
		applogger.Error(err),
	)
}
