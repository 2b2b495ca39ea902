package service

import (
	"sort"
	"sync/atomic"
)

// PlaceCache holds the process-wide list of known place names. The list
// is rebuilt wholesale by the scheduled refresh and swapped in one
// atomic store, so readers always see a complete snapshot — possibly a
// stale one, never a torn one.
type PlaceCache struct {
	snapshot atomic.Pointer[[]string]
}

func NewPlaceCache() *PlaceCache {
	c := &PlaceCache{}
	empty := []string{}
	c.snapshot.Store(&empty)
	return c
}

// Snapshot returns the current place list. Callers must not modify the
// returned slice.
func (c *PlaceCache) Snapshot() []string {
	return *c.snapshot.Load()
}

// Replace sorts a copy of the given places and swaps it in as the new
// snapshot. An empty list replaces a non-empty one like any other.
func (c *PlaceCache) Replace(places []string) {
	next := make([]string, len(places))
	copy(next, places)
	sort.Strings(next)
	c.snapshot.Store(&next)
}
