// Package gather runs independent operations concurrently and keeps every
// outcome, so one failure never hides or cancels its siblings.
package gather

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of the operation at Index.
type Outcome[T any] struct {
	Index int
	Value T
	Err   error
}

// OK reports whether the operation succeeded.
func (o Outcome[T]) OK() bool { return o.Err == nil }

// PanicError wraps a value recovered from a panicking operation.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("gather: operation panicked: %v", e.Value)
}

// Gather calls fn for i in [0,n) with at most limit in flight (limit <= 0 means
// unbounded) and waits for all of them. Outcomes are returned in input order.
func Gather[T any](ctx context.Context, n, limit int, fn func(ctx context.Context, i int) (T, error)) []Outcome[T] {
	out := make([]Outcome[T], n)
	if n <= 0 {
		return out
	}

	// plain group: a failed operation must not cancel its siblings
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			out[i] = run(ctx, i, fn)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Each is Gather over a slice.
func Each[In, T any](ctx context.Context, items []In, limit int, fn func(ctx context.Context, item In) (T, error)) []Outcome[T] {
	return Gather(ctx, len(items), limit, func(ctx context.Context, i int) (T, error) {
		return fn(ctx, items[i])
	})
}

func run[T any](ctx context.Context, i int, fn func(ctx context.Context, i int) (T, error)) (o Outcome[T]) {
	o.Index = i
	defer func() {
		if r := recover(); r != nil {
			o.Err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	o.Value, o.Err = fn(ctx, i)
	return o
}

// Values returns the successful values in input order.
func Values[T any](outcomes []Outcome[T]) []T {
	vals := make([]T, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err == nil {
			vals = append(vals, o.Value)
		}
	}
	return vals
}

// Failures returns the failed outcomes in input order.
func Failures[T any](outcomes []Outcome[T]) []Outcome[T] {
	var failed []Outcome[T]
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
