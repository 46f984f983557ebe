package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&Config{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	l.With(String("component", "news")).Info("done", Int("count", 3), Error(errors.New("boom")))

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}
	if m["component"] != "news" || m["message"] != "done" || m["error"] != "boom" {
		t.Fatalf("unexpected entry %v", m)
	}
	if m["count"].(float64) != 3 {
		t.Fatalf("unexpected count %v", m["count"])
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&Config{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestInvalidLevel(t *testing.T) {
	if _, err := NewWithWriter(&Config{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error")
	}
}

type capturePublisher struct {
	mu      sync.Mutex
	batches []LogBatch
}

func (p *capturePublisher) PublishMessage(_ context.Context, _ string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, payload.(LogBatch))
	return nil
}

func TestCollectorAggregatesDuplicates(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 10, Topic: "logs", Publisher: pub})

	c.AddLog("error", "upstream down", map[string]interface{}{"host": "a"}, "x.go:1")
	c.AddLog("error", "upstream down", map[string]interface{}{"host": "a"}, "x.go:1")
	c.AddLog("error", "other", nil, "x.go:2")
	if got := c.Pending(); got != 2 {
		t.Fatalf("expected 2 unique entries, got %d", got)
	}
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 {
		t.Fatalf("expected one batch on close, got %d", len(pub.batches))
	}
	total := 0
	for _, e := range pub.batches[0].Entries {
		total += e.Count
	}
	if total != 3 {
		t.Fatalf("expected 3 counted entries, got %d", total)
	}
}
