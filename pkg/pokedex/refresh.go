package pokedex

import "sync/atomic"

// Coordinator serializes full refresh runs within one process. At most
// one refresh holds the slot at a time; concurrent attempts are rejected,
// never queued. The zero value is ready to use.
type Coordinator struct {
	refreshing atomic.Bool
}

// Begin claims the refresh slot. It returns false when a refresh is
// already running; the caller must not proceed in that case.
func (c *Coordinator) Begin() bool {
	return c.refreshing.CompareAndSwap(false, true)
}

// End releases the refresh slot unconditionally. Callers pair it with a
// successful Begin via defer so the slot is released on every exit path.
func (c *Coordinator) End() {
	c.refreshing.Store(false)
}

// Refreshing reports whether a refresh run is in progress.
func (c *Coordinator) Refreshing() bool {
	return c.refreshing.Load()
}
