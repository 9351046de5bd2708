package application

import (
	"sync"
	"time"
)

// groupSummaryCache stores recently computed recurrence group summaries
// to avoid re-aggregating a group on every read while its members remain
// unchanged. Mutations invalidate the affected group.
type groupSummaryCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]groupSummaryEntry
}

type groupSummaryEntry struct {
	summary   RecurrenceGroupSummary
	expiresAt time.Time
}

func newGroupSummaryCache(ttl time.Duration, maxEntries int, now func() time.Time) *groupSummaryCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &groupSummaryCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]groupSummaryEntry),
	}
}

func (c *groupSummaryCache) Get(groupID string) (RecurrenceGroupSummary, bool) {
	if c == nil {
		return RecurrenceGroupSummary{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[groupID]
	c.mu.RUnlock()
	if !ok {
		return RecurrenceGroupSummary{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, groupID)
		c.mu.Unlock()
		return RecurrenceGroupSummary{}, false
	}
	return entry.summary, true
}

func (c *groupSummaryCache) Store(groupID string, summary RecurrenceGroupSummary) {
	if c == nil {
		return
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[groupID] = groupSummaryEntry{summary: summary, expiresAt: expiry}
}

func (c *groupSummaryCache) Invalidate(groupID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, groupID)
	c.mu.Unlock()
}

func (c *groupSummaryCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *groupSummaryCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}
