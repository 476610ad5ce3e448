package ratelimit

import (
	"sync"
	"time"
)

// FixedWindow counts events per key inside fixed-length windows. A window is
// created on first use and replaced in place once its reset time passes;
// entries for quiet keys are never evicted, matching the ingestion listener's
// historical behavior.
type FixedWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*entry

	now func() time.Time
}

type entry struct {
	count   int
	resetAt time.Time
}

// New returns a limiter allowing limit events per key per window.
func New(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:   limit,
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow reports whether one more event for key fits in the current window and
// counts it if so.
func (l *FixedWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if ok && now.Before(e.resetAt) {
		if e.count >= l.limit {
			return false
		}
		e.count++
		return true
	}

	l.entries[key] = &entry{count: 1, resetAt: now.Add(l.window)}
	return true
}

// Len returns the number of tracked keys.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
