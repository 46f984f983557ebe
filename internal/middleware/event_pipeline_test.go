package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"StockDash/internal/domain/models"
)

type fakePublisher struct {
	mu     sync.Mutex
	fail   bool
	got    []*models.Event
	closed bool
}

func (f *fakePublisher) Publish(_ context.Context, e *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker down")
	}
	f.got = append(f.got, e)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func event(key string) *models.Event {
	return &models.Event{ID: "1", Type: models.EventAnalysis, Key: key, At: time.Now()}
}

func TestPipelineRejectsInvalid(t *testing.T) {
	p := NewEventPipeline(&fakePublisher{}, nil)
	if err := p.Publish(context.Background(), &models.Event{Type: models.EventNews}); err == nil {
		t.Fatalf("event without key should fail")
	}
	if err := p.Publish(context.Background(), nil); err == nil {
		t.Fatalf("nil event should fail")
	}
}

func TestPipelineThrottlesPerKey(t *testing.T) {
	next := &fakePublisher{}
	p := NewEventPipeline(next, nil, WithMaxRPS(1))
	ctx := context.Background()

	_ = p.Publish(ctx, event("005930"))
	_ = p.Publish(ctx, event("005930"))
	_ = p.Publish(ctx, event("AAPL"))

	if n := next.count(); n != 2 {
		t.Errorf("forwarded = %d, want 2", n)
	}
}

func TestPipelineBuffersAndFlushes(t *testing.T) {
	next := &fakePublisher{fail: true}
	p := NewEventPipeline(next, nil, WithBufferSize(4))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Publish(ctx, event("a")); err == nil {
		t.Fatalf("want downstream error")
	}
	if p.Buffered() != 1 {
		t.Fatalf("Buffered = %d", p.Buffered())
	}

	next.mu.Lock()
	next.fail = false
	next.mu.Unlock()
	p.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for next.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("buffered event never flushed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := p.Close(); err != nil || !next.closed {
		t.Errorf("Close = %v, closed = %v", err, next.closed)
	}
}

func TestPipelineForgetsIdleKeys(t *testing.T) {
	p := NewEventPipeline(&fakePublisher{}, nil)
	t0 := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		p.allow(fmt.Sprintf("analysis.completed:T%03d", i), t0)
	}
	if p.allow("analysis.completed:T000", t0.Add(time.Millisecond)) {
		t.Fatal("second event inside the window should be throttled")
	}
	if n := len(p.lastSeen); n != 100 {
		t.Fatalf("tracked = %d, want 100", n)
	}

	if !p.allow("news.aggregated:005930", t0.Add(2*keyIdleTTL)) {
		t.Fatal("fresh key throttled")
	}
	if n := len(p.lastSeen); n != 1 {
		t.Fatalf("idle keys kept: tracked = %d", n)
	}
}
