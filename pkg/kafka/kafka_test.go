package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue(map[string]string{"country": "kr"})
	if err != nil || string(b) != `{"country":"kr"}` {
		t.Fatalf("got %s err=%v", b, err)
	}
	b, _ = encodeValue("raw")
	if string(b) != "raw" {
		t.Fatalf("strings must pass through, got %s", b)
	}
	if _, err := encodeValue(make(chan int)); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestParseCompression(t *testing.T) {
	if parseCompression("zstd") != kafka.Zstd {
		t.Fatalf("zstd not mapped")
	}
	if parseCompression("none") != 0 {
		t.Fatalf("none should disable compression")
	}
	if parseCompression("bogus") != kafka.Gzip {
		t.Fatalf("unknown should fall back to gzip")
	}
}

func TestBackoffWithJitterBounds(t *testing.T) {
	min, max := 10*time.Millisecond, 80*time.Millisecond
	for attempt := 1; attempt <= 8; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		if d <= 0 || d > max {
			t.Fatalf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
}

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "req-1")
	if TraceID(ctx) != "req-1" {
		t.Fatalf("trace id lost")
	}
	msg := kafka.Message{Headers: []kafka.Header{{Key: HeaderTraceID, Value: []byte("req-1")}}}
	if ExtractTraceID(msg) != "req-1" {
		t.Fatalf("header not extracted")
	}
	if WithTraceID(context.Background(), "") != context.Background() {
		t.Fatalf("empty trace id should not wrap context")
	}
}
