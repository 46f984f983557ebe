package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
)

// EventPipeline sits between the use cases and the event publisher.
// It validates, throttles per key, and buffers when downstream is unavailable.
type EventPipeline struct {
	next    domrepo.EventPublisher
	metrics domrepo.Metrics
	maxRPS  int
	bufSize int
	bufCh   chan *models.Event
	stopCh  chan struct{}
	done    chan struct{}

	mu       sync.Mutex
	started  bool
	lastSeen map[string]time.Time // per key last accepted time
	sweepAt  time.Time
}

// keys idle this long are forgotten; any throttle window is far shorter
const keyIdleTTL = time.Minute

type PipelineOption func(*EventPipeline)

// WithMaxRPS sets the max events per second per key.
func WithMaxRPS(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer size.
func WithBufferSize(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewEventPipeline wraps next.
func NewEventPipeline(next domrepo.EventPublisher, metrics domrepo.Metrics, opts ...PipelineOption) *EventPipeline {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	p := &EventPipeline{
		next:     next,
		metrics:  metrics,
		maxRPS:   20,
		bufSize:  1000,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.Event, p.bufSize)
	return p
}

// Start launches background flushing of buffered events.
func (p *EventPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		defer close(p.done)
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case e := <-p.bufCh:
				if err := p.next.Publish(ctx, e); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					select {
					case <-time.After(backoff):
					case <-p.stopCh:
						return
					}
					select {
					case p.bufCh <- e:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Publish validates, throttles and forwards e, buffering on downstream errors.
// Throttled events are dropped without error.
func (p *EventPipeline) Publish(ctx context.Context, e *models.Event) error {
	start := time.Now()
	if err := validateEvent(e); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(string(e.Type)+"/"+e.Key, start) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.next.Publish(ctx, e); err != nil {
		p.metrics.RecordError("pipeline_publish")
		select {
		case p.bufCh <- e:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_publish", time.Since(start).Seconds())
	return nil
}

// Buffered reports events awaiting a retry.
func (p *EventPipeline) Buffered() int { return len(p.bufCh) }

// Close stops flushing and closes the downstream publisher.
func (p *EventPipeline) Close() error {
	p.mu.Lock()
	started := p.started
	if started {
		p.started = false
		close(p.stopCh)
	}
	p.mu.Unlock()
	if started {
		<-p.done
	}
	return p.next.Close()
}

func validateEvent(e *models.Event) error {
	if e == nil {
		return fmt.Errorf("event nil")
	}
	if e.Type == "" {
		return fmt.Errorf("event type empty")
	}
	if e.Key == "" {
		return fmt.Errorf("event key empty")
	}
	if e.At.IsZero() {
		return fmt.Errorf("event time missing")
	}
	return nil
}

func (p *EventPipeline) allow(key string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sweepLocked(now)
	last := p.lastSeen[key]
	if !last.IsZero() && now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[key] = now
	return true
}

func (p *EventPipeline) sweepLocked(now time.Time) {
	if now.Before(p.sweepAt) {
		return
	}
	for k, t := range p.lastSeen {
		if now.Sub(t) > keyIdleTTL {
			delete(p.lastSeen, k)
		}
	}
	p.sweepAt = now.Add(keyIdleTTL)
}

var _ domrepo.EventPublisher = (*EventPipeline)(nil)
