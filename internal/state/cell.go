// Package state holds the single shared snapshot between the poller and the HTTP server.
package state

import (
	"sync/atomic"

	"github.com/kailas-cloud/usagerelay/internal/domain/snapshot"
)

// Cell is a single-writer, multi-reader slot for the current snapshot.
// Store swaps the pointer atomically, so Load never sees a partially built value
// and neither side ever blocks the other.
type Cell struct {
	current atomic.Pointer[snapshot.Snapshot]
}

// NewCell creates a Cell initialized to the pending snapshot.
func NewCell() *Cell {
	c := &Cell{}
	c.current.Store(snapshot.Pending())
	return c
}

// Load returns the current snapshot. Never nil.
func (c *Cell) Load() *snapshot.Snapshot {
	return c.current.Load()
}

// Store replaces the current snapshot. A nil snapshot is ignored.
func (c *Cell) Store(s *snapshot.Snapshot) {
	if s == nil {
		return
	}
	c.current.Store(s)
}
