// Package ratelimit provides the per-owner rate limiter that ledger
// services consult before accepting writes.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether an owner may perform one more operation.
type Limiter interface {
	Allow(ownerID string) bool
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PerOwner keeps an independent token bucket for every owner.
type PerOwner struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewPerOwner allows perMinute operations per owner with bursts of up to
// burst. A non-positive perMinute disables limiting.
func NewPerOwner(perMinute, burst int) *PerOwner {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	if burst < 1 {
		burst = 1
	}
	return &PerOwner{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

// Allow consumes one token from the owner's bucket.
func (l *PerOwner) Allow(ownerID string) bool {
	now := l.now()
	l.mu.Lock()
	b, ok := l.buckets[ownerID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ownerID] = b
	}
	b.lastSeen = now
	l.mu.Unlock()
	return b.limiter.AllowN(now, 1)
}

// Sweep forgets owners idle for longer than idle and returns how many
// buckets were dropped.
func (l *PerOwner) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for owner, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, owner)
			n++
		}
	}
	return n
}

// Unlimited allows everything.
type Unlimited struct{}

func (Unlimited) Allow(string) bool { return true }
