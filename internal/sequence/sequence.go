// Package sequence hands out the public ordinals of accepted submissions.
//
// Ordinals start at 1 and are not persisted: a restart begins again at 1, so
// ordinals are only unique within one process lifetime. An ordinal handed out
// for a submission whose dispatch later fails is never reused.
package sequence

import "sync"

type Counter struct {
	mu   sync.Mutex
	last uint64
}

func New() *Counter {
	return &Counter{}
}

// Next returns the next ordinal.
func (c *Counter) Next() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last++
	return c.last
}

// Last returns the most recently issued ordinal, 0 if none.
func (c *Counter) Last() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}
