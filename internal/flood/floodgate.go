// Package flood provides per-user rate limiting for incoming bot updates.
package flood

import (
	"strconv"
	"sync"
	"time"
)

const (
	// windowDuration is the sliding window for rate limiting (always 1 minute)
	windowDuration = 60 * time.Second
	// cleanupInterval is how often idle entries are swept
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long before an idle user entry is removed
	idleTimeout = 10 * time.Minute
)

// Gate limits how many updates a single user may trigger per minute,
// across private chats and inline queries alike.
type Gate struct {
	limitPerMinute int
	entries        map[string]*userEntry
	mutex          sync.Mutex
	stopCleanup    chan struct{}
	now            func() time.Time
}

type userEntry struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// New creates a Gate allowing limitPerMinute updates per user in a sliding
// one-minute window. A non-positive limit disables limiting.
func New(limitPerMinute int) *Gate {
	g := &Gate{
		limitPerMinute: limitPerMinute,
		entries:        make(map[string]*userEntry),
		stopCleanup:    make(chan struct{}),
		now:            time.Now,
	}

	go g.cleanup()

	return g
}

// Stop stops the background cleanup goroutine.
func (g *Gate) Stop() {
	close(g.stopCleanup)
}

// Allow reports whether an update from the given user should be processed.
func (g *Gate) Allow(userID int64) bool {
	if g.limitPerMinute <= 0 {
		return true
	}

	key := strconv.FormatInt(userID, 10)
	now := g.now()

	g.mutex.Lock()
	defer g.mutex.Unlock()

	entry, exists := g.entries[key]
	if !exists {
		entry = &userEntry{
			timestamps: make([]time.Time, 0, g.limitPerMinute+1),
		}
		g.entries[key] = entry
	}

	entry.lastSeen = now

	windowStart := now.Add(-windowDuration)
	valid := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	entry.timestamps = valid

	if len(entry.timestamps) >= g.limitPerMinute {
		return false
	}

	entry.timestamps = append(entry.timestamps, now)
	return true
}

// ActiveUsers returns the number of users currently tracked.
func (g *Gate) ActiveUsers() int {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return len(g.entries)
}

func (g *Gate) cleanup() {
	g.sweep()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.sweep()
		case <-g.stopCleanup:
			return
		}
	}
}

func (g *Gate) sweep() {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	cutoff := g.now().Add(-idleTimeout)
	for key, entry := range g.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(g.entries, key)
		}
	}
}
