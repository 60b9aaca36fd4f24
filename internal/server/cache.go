package server

import (
	"sync"
	"time"

	"github.com/mj1618/skipad/internal/model"
)

// DefaultSnapshotTTL is how long a snapshot stays available for capture.
const DefaultSnapshotTTL = 10 * time.Minute

// cacheEntry holds a cached snapshot with its timestamp.
type cacheEntry struct {
	snapshot  model.Snapshot
	timestamp time.Time
}

// SnapshotCache keeps recent snapshots by id so a later capture can refer
// to one of their rows.
type SnapshotCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewSnapshotCache creates a cache. A ttl of 0 selects DefaultSnapshotTTL.
func NewSnapshotCache(ttl time.Duration, now func() time.Time) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	if now == nil {
		now = time.Now
	}
	return &SnapshotCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

// Put stores snap and drops expired entries.
func (c *SnapshotCache) Put(snap model.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for id, e := range c.entries {
		if now.Sub(e.timestamp) >= c.ttl {
			delete(c.entries, id)
		}
	}
	c.entries[snap.ID] = cacheEntry{snapshot: snap, timestamp: now}
}

// Get returns the snapshot with the given id if it has not expired.
func (c *SnapshotCache) Get(id string) (model.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return model.Snapshot{}, false
	}
	if c.now().Sub(e.timestamp) >= c.ttl {
		delete(c.entries, id)
		return model.Snapshot{}, false
	}
	return e.snapshot, true
}

// Len returns the number of cached snapshots, expired or not.
func (c *SnapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
