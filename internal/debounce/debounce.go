// Package debounce coalesces bursts of identical signals. App-resume events
// tend to arrive several times in quick succession; re-running permission and
// monitoring checks for each one produces duplicate side effects.
package debounce

import (
	"sync"
	"time"
)

// Coalescer drops repeat signals for the same key inside a window.
type Coalescer struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
}

// New creates a coalescer with the given window.
func New(window time.Duration) *Coalescer {
	return &Coalescer{
		window: window,
		last:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Allow reports whether a signal for key should pass. The first signal per
// window passes; repeats inside the window are dropped and do not extend it.
func (c *Coalescer) Allow(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, ok := c.last[key]; ok && now.Sub(last) < c.window {
		return false
	}
	c.last[key] = now
	return true
}
