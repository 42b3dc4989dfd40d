package pipeline

import (
	"log"
	"strings"
	"time"

	"github.com/flightwall/flightwall/pkg/aeroapi"
)

// cacheEntry is one memoized flight detail. Entries are owned exclusively
// by the cache; lookups hand out copies.
type cacheEntry struct {
	detail     aeroapi.FlightDetail
	insertedAt time.Time
}

// DetailCache is a TTL-bounded memo of flight detail fetches, keyed
// case-insensitively by ident. It exists to protect the rate-limited detail
// API: repeated sightings of the same flight across polling cycles must not
// repeat the fetch.
type DetailCache struct {
	ttl     time.Duration
	entries map[string]cacheEntry

	// now is the clock, swappable in tests.
	now func() time.Time
}

// NewDetailCache creates a cache with the given entry lifetime.
func NewDetailCache(ttl time.Duration) *DetailCache {
	return &DetailCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// cacheKey normalizes an ident for case-insensitive matching.
func cacheKey(ident string) string {
	return strings.ToUpper(strings.TrimSpace(ident))
}

// Prune drops all entries past the TTL. The pipeline calls this once at the
// start of each poll pass; between passes expired entries linger but are
// never returned as hits.
func (c *DetailCache) Prune() {
	cutoff := c.now().Add(-c.ttl)
	for key, e := range c.entries {
		if e.insertedAt.Before(cutoff) {
			delete(c.entries, key)
		}
	}
}

// GetOrFetch returns the detail for ident, from cache when fresh, otherwise
// via fetch if the cycle's budget allows.
//
// A hit is free. A miss consumes one unit of budget for the live fetch; a
// miss with no budget left is a silent skip. Failed fetches write nothing,
// so the next cycle tries again. The budget counts invocations, not
// successes: that is what bounds worst-case calls against the rate-limited
// API per cycle.
func (c *DetailCache) GetOrFetch(ident string, budget *int, fetch func(string) (*aeroapi.FlightDetail, error)) (*aeroapi.FlightDetail, bool) {
	key := cacheKey(ident)

	if e, ok := c.entries[key]; ok && c.now().Sub(e.insertedAt) <= c.ttl {
		detail := e.detail
		return &detail, true
	}

	if *budget <= 0 {
		return nil, false
	}
	*budget--

	detail, err := fetch(ident)
	if err != nil {
		log.Printf("Pipeline: detail fetch for %s failed: %v", ident, err)
		return nil, false
	}

	c.entries[key] = cacheEntry{detail: *detail, insertedAt: c.now()}
	result := *detail
	return &result, true
}

// Len returns the number of entries currently held, expired or not.
func (c *DetailCache) Len() int {
	return len(c.entries)
}
