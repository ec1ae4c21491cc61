package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func (l *UploadLimiter) owners() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.perOwner)
}

func TestUploadLimiter_AcquireRelease(t *testing.T) {
	l := NewUploadLimiter(UploadLimits{GlobalMax: 2, PerOwner: 1})
	ctx := context.Background()

	if err := l.Acquire(ctx, "u1"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if got := len(l.global); got != 1 {
		t.Fatalf("expected 1 global slot in use, got %d", got)
	}
	l.Release("u1")
	if got := len(l.global); got != 0 {
		t.Fatalf("expected 0 global slots in use, got %d", got)
	}
	if l.owners() != 0 {
		t.Fatalf("owner entry not pruned after release: %d left", l.owners())
	}
}

func TestUploadLimiter_GlobalLimit(t *testing.T) {
	l := NewUploadLimiter(UploadLimits{GlobalMax: 2, PerOwner: 5})
	ctx := context.Background()

	l.Acquire(ctx, "u1")
	l.Acquire(ctx, "u2")

	timeout, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := l.Acquire(timeout, "u3"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if l.owners() != 2 {
		t.Fatalf("timed-out owner should not keep an entry, owners = %d", l.owners())
	}

	l.Release("u1")
	if err := l.Acquire(ctx, "u3"); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestUploadLimiter_PerOwnerLimit(t *testing.T) {
	l := NewUploadLimiter(UploadLimits{GlobalMax: 10, PerOwner: 1})
	ctx := context.Background()

	l.Acquire(ctx, "u1")

	timeout, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := l.Acquire(timeout, "u1"); err == nil {
		t.Fatal("second slot for the same owner should block")
	}
	if got := len(l.global); got != 1 {
		t.Fatalf("global slots in use = %d, want 1", got)
	}

	if err := l.Acquire(ctx, "u2"); err != nil {
		t.Fatalf("other owner: %v", err)
	}
}

func TestUploadLimiter_QueuedOwnerDoesNotStarveOthers(t *testing.T) {
	l := NewUploadLimiter(UploadLimits{GlobalMax: 3, PerOwner: 1})
	ctx := context.Background()

	if err := l.Acquire(ctx, "alice"); err != nil {
		t.Fatal(err)
	}

	waitCtx, cancelWaiters := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(waitCtx, "alice"); err == nil {
				l.Release("alice")
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)

	if got := len(l.global); got != 1 {
		t.Fatalf("queued uploads hold global slots: %d in use, want 1", got)
	}

	timeout, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	if err := l.Acquire(timeout, "bob"); err != nil {
		t.Fatalf("bob starved by alice's queue: %v", err)
	}
	l.Release("bob")

	cancelWaiters()
	wg.Wait()
	l.Release("alice")
	if l.owners() != 0 {
		t.Fatalf("owner entries left after all releases: %d", l.owners())
	}
	if got := len(l.global); got != 0 {
		t.Fatalf("global slots left in use: %d", got)
	}
}

func TestUploadLimiter_Concurrent(t *testing.T) {
	l := NewUploadLimiter(UploadLimits{GlobalMax: 3, PerOwner: 3})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		current int
		peak    int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(ctx, "u1"); err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			current--
			mu.Unlock()
			l.Release("u1")
		}()
	}
	wg.Wait()
	if peak > 3 {
		t.Fatalf("peak concurrency %d exceeds limit 3", peak)
	}
	if l.owners() != 0 {
		t.Fatalf("owner entries left: %d", l.owners())
	}
}
