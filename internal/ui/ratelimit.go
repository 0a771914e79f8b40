package ui

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// submitLimiter throttles form submissions per visitor.
type submitLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newSubmitLimiter(perSecond float64, burst int) *submitLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &submitLimiter{limit: limit, burst: burst, entries: make(map[string]*limiterEntry)}
}

// allow reports whether visitor may submit now.
func (l *submitLimiter) allow(visitor string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[visitor]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.entries[visitor] = e
	}
	e.lastSeen = time.Now()
	return e.lim.Allow()
}

// prune forgets visitors that have not submitted for idle. It returns the
// number of entries removed.
func (l *submitLimiter) prune(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-idle)
	n := 0
	for id, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, id)
			n++
		}
	}
	return n
}
