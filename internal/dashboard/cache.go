package dashboard

import (
	"sync"

	"github.com/webpbin/trafficd/internal/core/bucket"
)

// Entry is one fetched traffic series plus the absolute time range it
// fully covers. Entries are replaced wholesale on fetch completion,
// never merged, so a slot always reflects exactly one server response.
type Entry struct {
	Granularity bucket.Granularity
	Covered     bucket.TimeRange
	Timestamps  []int64
	Hits        []float64
}

// Cache holds at most one entry per granularity for a single rendering
// session. It never writes back to the server; it only exists to serve
// pan/zoom interactions without a round trip.
type Cache struct {
	mu    sync.RWMutex
	slots map[bucket.Granularity]*Entry
}

func NewCache() *Cache {
	return &Cache{slots: make(map[bucket.Granularity]*Entry)}
}

// Put replaces the slot for the entry's granularity. Last write wins.
func (c *Cache) Put(e *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots[e.Granularity] = e
}

// BestFor returns the finest cached entry whose covered range fully
// contains r, or nil when no slot covers it.
func (c *Cache) BestFor(r bucket.TimeRange) *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, g := range bucket.All {
		if e := c.slots[g]; e != nil && e.Covered.Contains(r) {
			return e
		}
	}
	return nil
}

// AnyPopulated returns the finest populated entry regardless of
// coverage, for rendering a visually-approximate stand-in while the
// right data is in flight.
func (c *Cache) AnyPopulated() *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, g := range bucket.All {
		if e := c.slots[g]; e != nil {
			return e
		}
	}
	return nil
}
