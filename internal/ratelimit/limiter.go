// Package ratelimit provides per-client rate limiting for the lookup service.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// windowDuration is the span a client's request count is measured over.
	windowDuration = 60 * time.Second
	// cleanupInterval is how often quiet clients are swept from the table.
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long a client may stay quiet before its entry is
	// dropped.
	idleTimeout = 10 * time.Minute
)

// Limiter enforces a sliding-window request limit per client key.
type Limiter struct {
	limitPerMinute int
	entries        map[string]*clientEntry
	mutex          sync.Mutex
	stopCleanup    chan struct{}
}

type clientEntry struct {
	timestamps []time.Time // requests inside the current window
	lastSeen   time.Time   // drives the idle sweep
}

// New creates a Limiter allowing limitPerMinute requests per client per
// minute.
func New(limitPerMinute int) *Limiter {
	l := &Limiter{
		limitPerMinute: limitPerMinute,
		entries:        make(map[string]*clientEntry),
		stopCleanup:    make(chan struct{}),
	}

	go l.cleanup()

	return l
}

// Stop ends the background idle sweep.
func (l *Limiter) Stop() {
	close(l.stopCleanup)
}

// Allow reports whether a request from the given client key fits within the
// window, recording it if so.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mutex.Lock()
	defer l.mutex.Unlock()

	entry, exists := l.entries[key]
	if !exists {
		entry = &clientEntry{
			timestamps: make([]time.Time, 0, l.limitPerMinute+1),
		}
		l.entries[key] = entry
	}

	entry.lastSeen = now

	// Expire requests that slid out of the window; the slice capacity is
	// reused across calls.
	windowStart := now.Add(-windowDuration)
	validTimestamps := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			validTimestamps = append(validTimestamps, ts)
		}
	}
	entry.timestamps = validTimestamps

	if len(entry.timestamps) >= l.limitPerMinute {
		return false
	}

	entry.timestamps = append(entry.timestamps, now)
	return true
}

func (l *Limiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.removeIdleEntries()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *Limiter) removeIdleEntries() {
	cutoff := time.Now().Add(-idleTimeout)

	l.mutex.Lock()
	defer l.mutex.Unlock()

	for key, entry := range l.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.entries)
}
