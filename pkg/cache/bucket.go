package cache

import "sync"

// bucket.go implements the hash map each Cache keys its entries by: a fixed
// array of buckets, each a short intrusively-linked chain behind its own
// mutex. Insertion is linearizable per bucket without any compare-and-swap
// or rescan dance, and lookups across different buckets never contend with
// one another. The pending/complete state machine and per-entry completion
// signal entries rely on live in entry.go and client.go regardless of how
// the bucket chains themselves are synchronized.
type bucket[K Key[K], V any] struct {
	mu   sync.Mutex
	head *Entry[K, V]
}

// defaultBucketCount gives each cache tens of thousands of independent
// chains by default, keeping per-bucket contention low under concurrent
// load without needing a resize policy.
const defaultBucketCount = 1 << 16

func newBuckets[K Key[K], V any](n int) []bucket[K, V] {
	return make([]bucket[K, V], n)
}

func (c *Cache[K, V]) bucketFor(hash uint64) *bucket[K, V] {
	return &c.buckets[hash%uint64(len(c.buckets))]
}

// find scans b's chain for an entry whose hash and key match. Caller must
// hold b.mu.
func (b *bucket[K, V]) find(hash uint64, key K) *Entry[K, V] {
	for e := b.head; e != nil; e = e.bucketNext {
		if e.hash == hash && e.key.Equal(key) {
			return e
		}
	}
	return nil
}

// insert splices e at the head of b's chain. Caller must hold b.mu and must
// have already confirmed (via find) that no equal key is present: the
// mutex makes that check-then-act atomic.
func (b *bucket[K, V]) insert(e *Entry[K, V]) {
	e.bucketNext = b.head
	e.bucketPrev = nil
	if b.head != nil {
		b.head.bucketPrev = e
	}
	b.head = e
	e.inBucket = true
}

// remove unlinks e from b's chain in O(1) using its prev/next pointers.
// Caller must hold b.mu. A no-op if e is already unlinked, which lets
// Entry.DecRef call this unconditionally without racing Trim's own unlink.
func (b *bucket[K, V]) remove(e *Entry[K, V]) {
	if !e.inBucket {
		return
	}
	if e.bucketPrev != nil {
		e.bucketPrev.bucketNext = e.bucketNext
	} else {
		b.head = e.bucketNext
	}
	if e.bucketNext != nil {
		e.bucketNext.bucketPrev = e.bucketPrev
	}
	e.bucketNext, e.bucketPrev = nil, nil
	e.inBucket = false
}
