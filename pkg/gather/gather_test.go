package gather

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestGatherKeepsOrderAndIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	out := Gather(context.Background(), 4, 0, func(_ context.Context, i int) (int, error) {
		// finish in reverse order
		time.Sleep(time.Duration(4-i) * 5 * time.Millisecond)
		if i == 1 {
			return 0, boom
		}
		return i * 10, nil
	})

	if len(out) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(out))
	}
	for i, o := range out {
		if o.Index != i {
			t.Fatalf("outcome %d has index %d", i, o.Index)
		}
	}
	if !errors.Is(out[1].Err, boom) {
		t.Fatalf("expected failure at index 1, got %v", out[1].Err)
	}
	vals := Values(out)
	if len(vals) != 3 || vals[0] != 0 || vals[1] != 20 || vals[2] != 30 {
		t.Fatalf("unexpected values %v", vals)
	}
	if f := Failures(out); len(f) != 1 || f[0].Index != 1 {
		t.Fatalf("unexpected failures %+v", f)
	}
}

func TestGatherRecoversPanics(t *testing.T) {
	out := Gather(context.Background(), 2, 0, func(_ context.Context, i int) (string, error) {
		if i == 0 {
			panic("bad ref")
		}
		return "ok", nil
	})
	var pe *PanicError
	if !errors.As(out[0].Err, &pe) || pe.Value != "bad ref" {
		t.Fatalf("expected recovered panic, got %v", out[0].Err)
	}
	if !out[1].OK() || out[1].Value != "ok" {
		t.Fatalf("sibling should succeed, got %+v", out[1])
	}
}

func TestGatherRespectsLimit(t *testing.T) {
	var inFlight, peak int32
	Gather(context.Background(), 10, 3, func(_ context.Context, _ int) (struct{}, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}, nil
	})
	if peak > 3 {
		t.Fatalf("limit exceeded: peak %d", peak)
	}
}

func TestEachAndEmpty(t *testing.T) {
	out := Each(context.Background(), []string{"a", "bb"}, 0, func(_ context.Context, s string) (int, error) {
		return len(s), nil
	})
	if out[0].Value != 1 || out[1].Value != 2 {
		t.Fatalf("unexpected %+v", out)
	}
	if got := Gather(context.Background(), 0, 0, func(context.Context, int) (int, error) { return 0, nil }); len(got) != 0 {
		t.Fatalf("expected empty result")
	}
}
