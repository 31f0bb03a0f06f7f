package worker

import (
	"context"
	"slices"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPool(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{5, 5},
		{0, 1},
		{-1, 1},
	}

	for _, tt := range tests {
		if got := NewPool[int](context.Background(), tt.size).Size(); got != tt.want {
			t.Errorf("NewPool(%d).Size() = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestPool_CollectsEveryValue(t *testing.T) {
	pool := NewPool[int](context.Background(), 3)
	pool.Start()

	// More tasks than buffer slots must not deadlock
	count := 50
	for i := range count {
		if !pool.Submit(func(context.Context) int { return i }) {
			t.Fatalf("task %d rejected", i)
		}
	}

	got := pool.Wait()
	if len(got) != count {
		t.Fatalf("Expected %d values, got %d", count, len(got))
	}
	slices.Sort(got)
	for i, v := range got {
		if v != i {
			t.Fatalf("Expected value %d at %d, got %d", i, i, v)
		}
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	size := 4
	pool := NewPool[struct{}](context.Background(), size)
	pool.Start()

	var current, peak atomic.Int32
	for range size * 3 {
		pool.Submit(func(context.Context) struct{} {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return struct{}{}
		})
	}

	if got := len(pool.Wait()); got != size*3 {
		t.Errorf("Expected %d values, got %d", size*3, got)
	}
	if peak.Load() > int32(size) {
		t.Errorf("Peak concurrency %d exceeded pool size %d", peak.Load(), size)
	}
}

func TestPool_ParentContextCancelsTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool[error](ctx, 1)
	pool.Start()

	pool.Submit(func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	time.AfterFunc(20*time.Millisecond, cancel)

	done := make(chan []error)
	go func() { done <- pool.Wait() }()

	select {
	case got := <-done:
		if len(got) != 1 || got[0] == nil {
			t.Errorf("Expected one cancelled task, got %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after parent context was cancelled")
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool[int](context.Background(), 2)
	pool.Start()

	if got := pool.Shutdown(); len(got) != 0 {
		t.Errorf("Expected no values, got %v", got)
	}
	if pool.Submit(func(context.Context) int { return 1 }) {
		t.Error("Expected Submit after Shutdown to be rejected")
	}
	// Wait after Shutdown returns the same values without blocking
	if got := pool.Wait(); len(got) != 0 {
		t.Errorf("Expected no values after Shutdown, got %v", got)
	}
}
