// Package ratelimit gates submissions with a per-submitter cooldown.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Each submitter holds one token per cooldown window with a burst of one: a
// recorded submission drains the bucket and it refills linearly over the
// window. A missing entry behaves like a full bucket.
type Limiter struct {
	mu       sync.Mutex
	m        map[int64]*rate.Limiter
	cooldown time.Duration
	now      func() time.Time
}

func New(cooldown time.Duration) *Limiter {
	return &Limiter{
		m:        make(map[int64]*rate.Limiter),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// WithClock swaps the time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check reports whether identity may submit now and, if not, how many whole
// seconds remain (rounded up). It does not consume anything.
func (l *Limiter) Check(identity int64) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.m[identity]
	if !ok {
		return true, 0
	}
	tokens := lim.TokensAt(l.now())
	if tokens >= 1 {
		return true, 0
	}
	// Refill is linear, so the missing fraction of a token is the missing
	// fraction of the window. Rounding to the millisecond keeps float noise
	// from pushing an exact second over to the next one.
	remaining := time.Duration((1 - tokens) * float64(l.cooldown)).Round(time.Millisecond)
	if remaining <= 0 {
		return true, 0
	}
	return false, int(math.Ceil(remaining.Seconds()))
}

// Record marks an accepted submission for identity at the limiter's clock.
func (l *Limiter) Record(identity int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cooldown <= 0 {
		return
	}
	now := l.now()
	l.prune(now)

	// A fresh bucket drained at now restarts the window.
	lim := rate.NewLimiter(rate.Every(l.cooldown), 1)
	lim.AllowN(now, 1)
	l.m[identity] = lim
}

// Len returns the number of tracked submitters.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

// prune drops submitters whose bucket has refilled; a missing entry behaves
// identically. Caller holds mu.
func (l *Limiter) prune(now time.Time) {
	for k, lim := range l.m {
		if lim.TokensAt(now) >= 1 {
			delete(l.m, k)
		}
	}
}
