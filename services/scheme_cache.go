package services

import (
	"sync"
	"time"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/sirupsen/logrus"
)

// DefaultSchemeCacheTTL is how long a populated scheme list stays valid
const DefaultSchemeCacheTTL = 30 * time.Minute

// SchemeCache holds the most recently loaded scheme list for the chat paths.
//
// It is cache-aside: a miss never loads anything, the caller reads storage and
// calls Set. Expiry is lazy and checked on Get. Every method takes the same
// mutex so the list and its refresh time always change together.
type SchemeCache struct {
	schemes       []models.Scheme
	populated     bool
	lastRefreshed time.Time
	ttl           time.Duration
	now           func() time.Time
	mutex         sync.Mutex
}

func NewSchemeCache(ttl time.Duration) *SchemeCache {
	if ttl <= 0 {
		ttl = DefaultSchemeCacheTTL
	}
	return &SchemeCache{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns a copy of the cached list when it is populated and younger than the TTL
func (c *SchemeCache) Get() ([]models.Scheme, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.populated || !c.freshLocked() {
		return nil, false
	}

	out := make([]models.Scheme, len(c.schemes))
	copy(out, c.schemes)
	return out, true
}

// Set replaces the cached list wholesale and restarts the TTL
func (c *SchemeCache) Set(schemes []models.Scheme) {
	stored := make([]models.Scheme, len(schemes))
	copy(stored, schemes)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.schemes = stored
	c.populated = true
	c.lastRefreshed = c.now()

	logrus.WithFields(logrus.Fields{
		"component": "SchemeCache",
		"count":     len(stored),
	}).Debug("Scheme cache populated")
}

// Clear drops the cached list so the next Get misses
func (c *SchemeCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.schemes = nil
	c.populated = false
	c.lastRefreshed = time.Time{}

	logrus.WithField("component", "SchemeCache").Info("Scheme cache cleared")
}

func (c *SchemeCache) Stats() models.CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stats := models.CacheStats{
		Cached:     c.populated,
		Count:      len(c.schemes),
		Expired:    true,
		TTLMinutes: c.ttl.Minutes(),
	}
	if c.populated {
		refreshed := c.lastRefreshed
		stats.LastRefreshed = &refreshed
		stats.Expired = !c.freshLocked()
	}
	return stats
}

func (c *SchemeCache) freshLocked() bool {
	return c.now().Sub(c.lastRefreshed) < c.ttl
}
