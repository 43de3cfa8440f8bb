package service

import (
	"context"
	"sync"
	"time"
)

// MediaRateLimiter bounds media-generation calls to a maximum count per
// rolling window. Callers beyond capacity queue in FIFO order until the
// window frees up or their context expires. Construct one per process in
// the composition root and inject it; there is no package-level instance.
type MediaRateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	stamps  []time.Time
	waiters []chan struct{}
	timer   *time.Timer
}

// NewMediaRateLimiter creates a limiter allowing limit executions per
// rolling window.
func NewMediaRateLimiter(limit int, window time.Duration) *MediaRateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MediaRateLimiter{window: window, limit: limit}
}

// Execute runs fn once the current window has spare capacity. Queued
// callers run in submission order; a caller whose context expires while
// queued gives up its place without consuming capacity.
func (l *MediaRateLimiter) Execute(ctx context.Context, fn func() error) error {
	if err := l.acquire(ctx); err != nil {
		return err
	}
	return fn()
}

func (l *MediaRateLimiter) acquire(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	l.prune(now)

	// Immediate grant only when nobody is queued ahead of us.
	if len(l.waiters) == 0 && len(l.stamps) < l.limit {
		l.stamps = append(l.stamps, now)
		l.mu.Unlock()
		return nil
	}

	ready := make(chan struct{})
	l.waiters = append(l.waiters, ready)
	l.scheduleWake()
	l.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		// A grant may have raced the cancellation.
		select {
		case <-ready:
			l.mu.Unlock()
			return nil
		default:
		}
		for i, w := range l.waiters {
			if w == ready {
				l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
				break
			}
		}
		l.mu.Unlock()
		return NewAIError(ErrTimeout, ctx.Err())
	}
}

// prune drops execution stamps that fell out of the rolling window.
// Callers must hold l.mu.
func (l *MediaRateLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.stamps) && !l.stamps[i].After(cutoff) {
		i++
	}
	l.stamps = l.stamps[i:]
}

// scheduleWake arms a timer for the moment the oldest stamp leaves the
// window. Callers must hold l.mu.
func (l *MediaRateLimiter) scheduleWake() {
	if l.timer != nil || len(l.stamps) == 0 {
		return
	}
	wait := time.Until(l.stamps[0].Add(l.window))
	if wait < 0 {
		wait = 0
	}
	l.timer = time.AfterFunc(wait, l.wake)
}

// wake grants capacity to queued waiters in FIFO order.
func (l *MediaRateLimiter) wake() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.timer = nil
	now := time.Now()
	l.prune(now)

	for len(l.waiters) > 0 && len(l.stamps) < l.limit {
		ready := l.waiters[0]
		l.waiters = l.waiters[1:]
		l.stamps = append(l.stamps, now)
		close(ready)
	}

	if len(l.waiters) > 0 {
		l.scheduleWake()
	}
}
