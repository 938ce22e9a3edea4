// Package ratelimit implements a per-identity sliding-window limiter.
//
// The HTTP layer already applies a coarse global limiter; this one is the
// authoritative per-submitter quota. It keeps, for each identity, the
// timestamps recorded inside the current window and prunes stale entries
// lazily on every call. There is no background sweep.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

type Option func(*Limiter)

// WithClock replaces the time source; tests use it to move a virtual clock
// across the window boundary.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	now    func() time.Time
	hits   map[string][]time.Time
}

func New(max int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		max:    max,
		window: window,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether identity may record another event right now.
func (l *Limiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := normalize(identity)
	recent := l.prune(key)
	return len(recent) < l.max
}

// Record registers an event for identity at the given time. Zero time means
// now.
func (l *Limiter) Record(identity string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if at.IsZero() {
		at = l.now()
	}
	key := normalize(identity)
	l.hits[key] = append(l.prune(key), at)
}

// RetryAfter returns how long identity must wait before Allow can succeed
// again. Zero when the identity is not currently limited.
func (l *Limiter) RetryAfter(identity string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := normalize(identity)
	recent := l.prune(key)
	if len(recent) < l.max {
		return 0
	}
	oldest := recent[0]
	return oldest.Add(l.window).Sub(l.now())
}

// Reset drops all recorded events for every identity.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hits = make(map[string][]time.Time)
}

// prune drops timestamps older than the window and stores the survivors.
// Caller must hold the mutex.
func (l *Limiter) prune(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	recent := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	if len(recent) == 0 {
		delete(l.hits, key)
		return nil
	}
	l.hits[key] = recent
	return recent
}

func normalize(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
