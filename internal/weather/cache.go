package weather

import (
	"fmt"
	"sync"
	"time"
)

// Cache holds fetched forecasts per location with thread-safe operations.
// Entries expire after the configured duration; an expired entry behaves
// like a miss.
type Cache struct {
	entries map[string]cacheEntry
	expiry  time.Duration
	mu      sync.RWMutex
}

type cacheEntry struct {
	forecast  Forecast
	expiresAt time.Time
}

// NewCache creates a forecast cache with the given entry lifetime
func NewCache(expiry time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		expiry:  expiry,
	}
}

// Get returns the cached forecast for the coordinates, if present and fresh
func (c *Cache) Get(lat, lon float64) (*Forecast, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[cacheKey(lat, lon)]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	forecast := entry.forecast
	return &forecast, true
}

// Set stores a forecast for the coordinates
func (c *Cache) Set(lat, lon float64, forecast Forecast) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(lat, lon)] = cacheEntry{
		forecast:  forecast,
		expiresAt: time.Now().Add(c.expiry),
	}
}

// Len returns the number of entries, fresh or expired
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cacheKey rounds coordinates to 4 decimal places (~11m) so repeated
// lookups of the same airport share an entry
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}
