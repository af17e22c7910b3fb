// Package cache keeps beam-tuning parameters indexed by the microscope's
// operating point, so that a previously tuned state can be restored whenever the
// microscope returns to the same voltage, current, working distance and lens.
//
// Entries are held in a single map keyed by the whole OperatingPoint. The
// voltage > current > working distance > lens hierarchy only exists in the
// persisted document, which is written with sorted keys at every level so that
// two sessions that captured the same points in any order produce identical files.
//
// Individual calls are safe for concurrent use, but a capture followed by a
// persist is not atomic; the owning session serializes them.
package cache

import (
	"slices"

	"github.com/puzpuzpuz/xsync/v3"
)

// Cache maps operating points to tuned parameters.
type Cache struct {
	entries *xsync.MapOf[OperatingPoint, TunedParams]
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: xsync.NewMapOf[OperatingPoint, TunedParams]()}
}

// Capture stores params for point, replacing anything saved there before.
func (c *Cache) Capture(point OperatingPoint, params TunedParams) {
	c.entries.Store(point, params)
}

// Lookup returns the parameters saved for point, if any.
func (c *Cache) Lookup(point OperatingPoint) (TunedParams, bool) {
	return c.entries.Load(point)
}

// Len returns the number of saved operating points.
func (c *Cache) Len() int {
	return c.entries.Size()
}

// Points returns the saved operating points in persisted order.
func (c *Cache) Points() []OperatingPoint {
	points := make([]OperatingPoint, 0, c.entries.Size())
	c.entries.Range(func(p OperatingPoint, _ TunedParams) bool {
		points = append(points, p)
		return true
	})
	slices.SortFunc(points, OperatingPoint.Compare)

	return points
}

// Reset removes every entry.
func (c *Cache) Reset() {
	c.entries.Clear()
}

// replace swaps the contents for entries.
func (c *Cache) replace(entries map[OperatingPoint]TunedParams) {
	c.entries.Clear()
	for p, params := range entries {
		c.entries.Store(p, params)
	}
}
