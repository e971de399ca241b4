package cache

import (
	"sync/atomic"
)

// entry.go implements the cache entry: every lookup and eviction decision
// pivots on the fields here. A pending entry is one whose size has not yet
// been published; a complete entry is reachable by both pointer-chasing
// lookups and by Value()/Key() once publication happened-before the
// reader's observation (enforced by the atomic.Int64 acquire/release pair
// below, backstopped by the creating client's mutex for the slow/waiting
// path; see client.go).
//
// Entry is an opaque handle carrying entry identity and descriptor identity
// together, with Key()/Value() as ordinary accessor methods rather than raw
// pointer arithmetic against a shared allocation.

// Entry is the handle producers and consumers exchange with a Cache: the
// pointer a family's Get/IncRef/DecRef/Key operations act on.
type Entry[K Key[K], V any] struct {
	cache      *Cache[K, V]
	descriptor *Descriptor[K, V]

	hash uint64
	key  K
	val  V

	// size == 0 means pending construction; acquire/release semantics are
	// provided by atomic.Int64 itself. publish also sets constructed for
	// every entry, so readers can distinguish "pending" from "complete with
	// zero weight" (a family whose Construct legitimately returns 0).
	size        atomic.Int64
	constructed atomic.Bool

	refCount      atomic.Int32
	lastUsedFrame atomic.Uint64

	creatingClient *Client[K, V]

	// Bucket chain linkage. Guarded by the owning bucket's mutex.
	bucketNext *Entry[K, V]
	bucketPrev *Entry[K, V]
	bucketIdx  int
	inBucket   bool

	// Eviction queue linkage. Guarded by cache.q.mu.
	queueNext *Entry[K, V]
	queuePrev *Entry[K, V]
	inQueue   bool

	// Per-client promotion list linkage. Guarded by cache.promoteMu.
	promoteNext   *Entry[K, V]
	promoteQueued bool
}

// Key returns a pointer to the entry's embedded key. Valid for the lifetime
// of the entry; callers that need the key to outlive their reference to the
// entry must copy it.
func (e *Entry[K, V]) Key() *K { return &e.key }

// Value returns a pointer to the entry's embedded value. The caller must not
// call this on a pending entry (Get never returns one; see cache.go); it is
// exported chiefly so family Construct callbacks composing one cache out of
// another's entries can read the referenced value.
func (e *Entry[K, V]) Value() *V { return &e.val }

// SizeBytes returns the published size, or 0 if the entry is still pending.
func (e *Entry[K, V]) SizeBytes() int64 { return e.size.Load() }

// isPending reports whether construction has not yet published a result.
func (e *Entry[K, V]) isPending() bool {
	return e.size.Load() == 0 && !e.constructed.Load()
}

// publish stores the constructed size and marks the entry complete. Must be
// called with the creating client's mutex held so the store happens-before
// the broadcast the caller issues next.
func (e *Entry[K, V]) publish(size int64) {
	e.constructed.Store(true)
	e.size.Store(size)
}

// IncRef grows the cross-cache reference graph. Family Adopt callbacks call
// this when a key field takes a strong reference on another cache's entry;
// external callers may also call it to pin an entry past the current frame.
func (e *Entry[K, V]) IncRef() {
	e.refCount.Add(1)
}

// DecRef releases one strong reference; when the count reaches zero the
// entry is torn down. DecRef may be invoked either by a cross-cache key's
// DestroyKey or directly by external code holding a pinned reference, and
// in both cases the entry may or may not still be linked into its cache's
// bucket/queue, so teardown always unlinks (idempotently) before running
// the family destructors. Trim's eviction (Cache.evict) and Empty unlink the
// entry and drop the map's own reference themselves, so when an entry they
// left alive is later released here the unlink is a no-op; against a
// still-resident entry the same unlink is what makes an out-of-band DecRef
// safe.
func (e *Entry[K, V]) DecRef() {
	if e.refCount.Add(-1) != 0 {
		return
	}
	e.cache.retire(e)
}

// refs returns the current reference count; used by tests and DebugString.
func (e *Entry[K, V]) refs() int32 { return e.refCount.Load() }
