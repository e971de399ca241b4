package cache

import "fmt"

// debug.go provides the diagnostic surface cmd/subcache-inspect talks to: a
// JSON-ready snapshot and a bounded human-readable dump.

// SnapshotJSON returns Stats as a plain map, shaped for the
// "/debug/subcache/<family>/snapshot" endpoint cmd/subcache-inspect polls.
func (c *Cache[K, V]) SnapshotJSON() map[string]any {
	s := c.Stats()
	return map[string]any{
		"hits":       s.Hits,
		"misses":     s.Misses,
		"items":      s.Items,
		"size_bytes": s.SizeBytes,
		"hit_ratio":  s.HitRatio(),
	}
}

// DebugString renders a bounded, human-readable summary of the eviction
// queue's current order (oldest-evictable first) and the number of entries
// still pending construction. maxEntries caps how many queue entries are
// listed, since a production cache's queue can hold millions.
func (c *Cache[K, V]) DebugString(maxEntries int) string {
	c.q.mu.Lock()
	defer c.q.mu.Unlock()

	s := c.Stats()
	out := fmt.Sprintf("subcache[%s]: items=%d size=%d hits=%d misses=%d hit_ratio=%.3f\n",
		c.descriptor.Name, s.Items, s.SizeBytes, s.Hits, s.Misses, s.HitRatio())

	n := 0
	pending := 0
	for e := c.q.head; e != nil; e = e.queueNext {
		if e.isPending() {
			pending++
		}
		if n < maxEntries {
			out += fmt.Sprintf("  #%d hash=%#x frame=%d size=%d refs=%d\n",
				n, e.hash, e.lastUsedFrame.Load(), e.size.Load(), e.refs())
			n++
		}
	}
	out += fmt.Sprintf("pending=%d\n", pending)
	return out
}
