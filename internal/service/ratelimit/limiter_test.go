package ratelimit

import (
	"testing"
	"time"
)

func TestAllowPerKey(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	l := New(1, 2)
	l.now = func() time.Time { return base }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("burst of 2 should pass")
	}
	if l.Allow("a") {
		t.Fatalf("third request should be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("other key must have its own bucket")
	}

	base = base.Add(time.Second)
	if !l.Allow("a") {
		t.Errorf("token should refill after a second")
	}
}

func TestIdleBucketsAreSwept(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	l := New(1, 1)
	l.now = func() time.Time { return base }

	l.Allow("a")
	l.Allow("b")
	base = base.Add(2 * defaultIdleTTL)
	l.Allow("c")
	if n := l.Len(); n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}
}
