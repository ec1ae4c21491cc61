package services

import (
	"context"
	"sync"
)

// UploadLimits bounds how many upload pipelines run at once.
type UploadLimits struct {
	GlobalMax int // across all owners; default 8
	PerOwner  int // per authenticated owner; default 2
}

// UploadLimiter is a two-level counting semaphore: one global pool and one
// pool per owner. The owner slot is taken first, so uploads queued behind an
// owner's own limit never hold global slots.
type UploadLimiter struct {
	global   chan struct{}
	mu       sync.Mutex
	perOwner map[string]*ownerSlots
	limits   UploadLimits
}

// ownerSlots counts waiters and holders in refs; the entry is dropped at zero.
type ownerSlots struct {
	ch   chan struct{}
	refs int
}

func NewUploadLimiter(limits UploadLimits) *UploadLimiter {
	if limits.GlobalMax <= 0 {
		limits.GlobalMax = 8
	}
	if limits.PerOwner <= 0 {
		limits.PerOwner = 2
	}
	return &UploadLimiter{
		global:   make(chan struct{}, limits.GlobalMax),
		perOwner: make(map[string]*ownerSlots),
		limits:   limits,
	}
}

// Acquire blocks until a per-owner and a global slot are free, or ctx ends.
func (l *UploadLimiter) Acquire(ctx context.Context, ownerID string) error {
	slots := l.ref(ownerID)
	select {
	case slots.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(ownerID)
		return ctx.Err()
	}

	select {
	case l.global <- struct{}{}:
		return nil
	case <-ctx.Done():
		<-slots.ch
		l.unref(ownerID)
		return ctx.Err()
	}
}

// Release returns the slots taken by a successful Acquire.
func (l *UploadLimiter) Release(ownerID string) {
	select {
	case <-l.global:
	default:
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	slots, ok := l.perOwner[ownerID]
	if !ok {
		return
	}
	select {
	case <-slots.ch:
	default:
	}
	l.dropRefLocked(ownerID, slots)
}

func (l *UploadLimiter) ref(ownerID string) *ownerSlots {
	l.mu.Lock()
	defer l.mu.Unlock()
	slots, ok := l.perOwner[ownerID]
	if !ok {
		slots = &ownerSlots{ch: make(chan struct{}, l.limits.PerOwner)}
		l.perOwner[ownerID] = slots
	}
	slots.refs++
	return slots
}

func (l *UploadLimiter) unref(ownerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if slots, ok := l.perOwner[ownerID]; ok {
		l.dropRefLocked(ownerID, slots)
	}
}

func (l *UploadLimiter) dropRefLocked(ownerID string, slots *ownerSlots) {
	slots.refs--
	if slots.refs <= 0 {
		delete(l.perOwner, ownerID)
	}
}
