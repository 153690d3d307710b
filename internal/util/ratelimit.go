package util

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a minimum delay before every call and a minimum spacing
// between consecutive calls. Concurrent callers are queued into successive
// slots, so N calls issued together complete no sooner than N intervals.
type Throttle struct {
	interval time.Duration
	mu       sync.Mutex
	next     time.Time // earliest start time of the next slot
	now      func() time.Time
}

// NewThrottle creates a Throttle with the given interval. A non-positive
// interval disables waiting.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{
		interval: interval,
		now:      time.Now,
	}
}

// Interval returns the configured spacing.
func (t *Throttle) Interval() time.Duration { return t.interval }

// Wait blocks until the caller's slot arrives or the context is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	if t.interval <= 0 {
		return ctx.Err()
	}

	t.mu.Lock()
	now := t.now()
	start := t.next
	if start.Before(now) {
		start = now
	}
	slot := start.Add(t.interval)
	t.next = slot
	t.mu.Unlock()

	delay := slot.Sub(now)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
