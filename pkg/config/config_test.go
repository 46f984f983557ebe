package config

import (
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
upstream:
  stock_host: http://stock.local/api
  external_host: http://stock.local/ai
`

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Pipeline.NewsLimit != 5 {
		t.Fatalf("expected news limit 5, got %d", c.Pipeline.NewsLimit)
	}
	if c.Pipeline.PageSize != 10 || c.Pipeline.ChangeRankSize != 10 {
		t.Fatalf("unexpected page sizes %d/%d", c.Pipeline.PageSize, c.Pipeline.ChangeRankSize)
	}
	if c.Upstream.ChartHost != "http://stock.local/api" {
		t.Fatalf("chart host should default to stock host, got %q", c.Upstream.ChartHost)
	}
	if c.Upstream.Timeout != 20*time.Second {
		t.Fatalf("unexpected timeout %v", c.Upstream.Timeout)
	}
	if c.Kafka.RefreshTopic != "stock.refresh" {
		t.Fatalf("unexpected refresh topic %q", c.Kafka.RefreshTopic)
	}
}

func TestParseRejectsMissingHosts(t *testing.T) {
	_, err := Parse([]byte("environment: test\n"))
	if err == nil || !strings.Contains(err.Error(), "stock_host") {
		t.Fatalf("expected stock_host error, got %v", err)
	}
}

func TestParseRejectsLargeNewsLimit(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + "pipeline:\n  news_limit: 8\n"))
	if err == nil {
		t.Fatalf("expected error for news_limit > 5")
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("PORT", "9999")
	c.applyEnv()
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 {
		t.Fatalf("expected kafka enabled with 2 brokers, got %v %v", c.Kafka.Enabled, c.Kafka.Brokers)
	}
	if c.Server.Port != 9999 {
		t.Fatalf("expected port override, got %d", c.Server.Port)
	}
}
