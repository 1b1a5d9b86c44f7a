// Package testutil holds deterministic stand-ins used by tests and the
// scenario harness.
package testutil

import "sync"

// Counter is a resettable monotonic counter.
//
// Thread-safety: All methods are safe for concurrent use.
type Counter struct {
	mu sync.Mutex
	n  int64
}

// NewCounter creates a counter whose first Next returns 1.
func NewCounter() *Counter {
	return &Counter{}
}

// Next increments and returns the counter.
func (c *Counter) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n
}

// Current returns the counter without incrementing.
func (c *Counter) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset sets the counter back to 0, so the same scenario can run twice
// with identical ids.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
