package cache

// cache.go implements the coordinator for one family: it owns the bucketed
// map, the eviction queue, the size accounting, the family descriptor and
// the client roster, and serializes Trim/Empty against concurrent lookups.
//
// © 2025 subcache authors. MIT License.

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Cache is the coordinator for one family. Construct one per family with
// New; share it across every producer goroutine, each of which should hold
// its own *Client.
type Cache[K Key[K], V any] struct {
	descriptor *Descriptor[K, V]

	buckets []bucket[K, V]
	q       queue[K, V]

	// promoteMu guards every client's promoteFirst list plus each entry's
	// promoteQueued flag: touch() (called by any client, any goroutine) and
	// drainPromotions() (called only by the Trim coordinator) both take it.
	promoteMu sync.Mutex

	clientsMu sync.Mutex
	clients   map[*Client[K, V]]struct{}

	curFrame  atomic.Uint64
	sizeBytes atomic.Int64
	itemCount atomic.Int64

	hits   atomic.Uint64
	misses atomic.Uint64

	metrics metricsSink
	logger  *zap.Logger
	evictCb EvictCallback[K, V]

	zeroWeightOK bool

	closed atomic.Bool
}

// New constructs a cache for one family. descriptor must be complete (every
// callback set); see Descriptor.validate.
func New[K Key[K], V any](descriptor *Descriptor[K, V], opts ...Option[K, V]) (*Cache[K, V], error) {
	if err := descriptor.validate(); err != nil {
		return nil, err
	}

	cfg := defaultConfig[K, V]()
	if err := applyOptions(cfg, opts); err != nil {
		return nil, err
	}

	c := &Cache[K, V]{
		descriptor:   descriptor,
		buckets:      newBuckets[K, V](cfg.buckets),
		clients:      make(map[*Client[K, V]]struct{}),
		metrics:      newMetricsSink(cfg.registry, descriptor.Name),
		logger:       cfg.logger,
		evictCb:      cfg.evictCb,
		zeroWeightOK: cfg.zeroWeightOK,
	}
	return c, nil
}

// NewClient creates a client handle.
func (c *Cache[K, V]) NewClient() (*Client[K, V], error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	cl := newClient(c)
	c.clientsMu.Lock()
	c.clients[cl] = struct{}{}
	c.clientsMu.Unlock()
	return cl, nil
}

func (c *Cache[K, V]) removeClient(cl *Client[K, V]) {
	c.clientsMu.Lock()
	delete(c.clients, cl)
	c.clientsMu.Unlock()
}

// Get implements the lookup/insertion protocol: staged is the caller's
// transiently-owned key; user is passed verbatim to Construct on a miss.
// The caller's ownership of staged is always released exactly once, either
// via Adopt (on the winning miss path) or Release (on a hit, a lost race,
// or any failure path).
func (c *Cache[K, V]) Get(cl *Client[K, V], staged K, user any) (*Entry[K, V], error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	cl.mu.Lock()
	clClosed := cl.closed
	cl.mu.Unlock()
	if clClosed {
		return nil, ErrClientClosed
	}

	hash := staged.Hash()
	b := c.bucketFor(hash)

	b.mu.Lock()
	if existing := b.find(hash, staged); existing != nil {
		b.mu.Unlock()
		c.descriptor.Release(staged)
		return c.observe(cl, existing)
	}

	// Miss: allocate the speculative entry and adopt the staged key into it
	// while still holding the bucket lock, so no other lookup of the same
	// key can race ahead of us.
	e := &Entry[K, V]{
		cache:          c,
		descriptor:     c.descriptor,
		hash:           hash,
		creatingClient: cl,
	}
	if !c.descriptor.Adopt(&e.key, staged) {
		b.mu.Unlock()
		c.descriptor.Release(staged)
		return nil, ErrAdoptFailed
	}
	e.refCount.Store(1)
	e.lastUsedFrame.Store(c.curFrame.Load())
	b.insert(e)
	b.mu.Unlock()

	c.q.mu.Lock()
	c.q.pushTail(e)
	c.q.mu.Unlock()

	c.misses.Add(1)
	c.metrics.incMiss()

	// Construct runs outside every lock so a slow construction never blocks
	// lookups of unrelated keys.
	val, size, err := c.descriptor.Construct(&e.key, user)
	if err != nil {
		c.abortPending(e, nil)
		return nil, ErrConstructFailed
	}
	if size <= 0 && !c.zeroWeightOK {
		c.abortPending(e, &val)
		return nil, ErrZeroSize
	}
	if size < 0 {
		size = 0
	}

	e.val = val
	c.sizeBytes.Add(size)
	c.itemCount.Add(1)
	c.metrics.setSizeBytes(c.sizeBytes.Load())
	c.metrics.setItems(c.itemCount.Load())

	cl.publishAndBroadcast(e, size)
	return e, nil
}

// abortPending unwinds a pending entry whose Construct call failed or
// violated the size contract. val is nil when Construct itself returned an
// error (the family is responsible for cleaning up after its own failed
// attempt); val is non-nil when Construct succeeded but returned a
// non-positive size, in which case the value it handed back still owns
// whatever resources the family allocated for it and must be destroyed here.
func (c *Cache[K, V]) abortPending(e *Entry[K, V], val *V) {
	b := c.bucketFor(e.hash)
	b.mu.Lock()
	b.remove(e)
	b.mu.Unlock()

	c.q.mu.Lock()
	c.q.remove(e)
	c.q.mu.Unlock()

	if val != nil {
		c.descriptor.DestroyValue(&e.key, *val)
	}
	c.descriptor.DestroyKey(&e.key)

	cl := e.creatingClient
	cl.mu.Lock()
	e.size.Store(-1) // sentinel: with constructed set, isPending() reports false and observe sees size < 0
	e.constructed.Store(true)
	cl.mu.Unlock()
	cl.cond.Broadcast()

	c.logger.Warn("subcache: construction failed, entry discarded",
		zap.String("family", c.descriptor.Name))
}

// observe handles the hit path: optionally wait for a pending construction,
// touch for promotion, and return the value.
func (c *Cache[K, V]) observe(cl *Client[K, V], e *Entry[K, V]) (*Entry[K, V], error) {
	if e.isPending() {
		e.creatingClient.waitFor(e)
	}
	if e.size.Load() < 0 {
		// The entry that raced us failed construction and has already been
		// unlinked: report ErrConstructFailed rather than exposing a
		// half-torn entry. A later Get for the same key starts a fresh miss.
		return nil, ErrConstructFailed
	}

	cl.touch(e, c.curFrame.Load())
	c.hits.Add(1)
	c.metrics.incHit()
	return e, nil
}

// Trim folds every client's promotion list into the queue, then evicts from
// the head until the budget is met or every remaining entry was touched
// this frame.
func (c *Cache[K, V]) Trim(maxBytes int64) {
	if c.closed.Load() {
		return
	}
	c.metrics.incTrim()

	c.clientsMu.Lock()
	clients := make([]*Client[K, V], 0, len(c.clients))
	for cl := range c.clients {
		clients = append(clients, cl)
	}
	c.clientsMu.Unlock()

	c.q.mu.Lock()
	c.promoteMu.Lock()
	for _, cl := range clients {
		for e := cl.drainPromotions(); e != nil; {
			next := e.promoteNext
			e.promoteNext = nil
			e.promoteQueued = false
			c.q.promote(e)
			e = next
		}
	}
	c.promoteMu.Unlock()

	curFrame := c.curFrame.Load()
	for c.sizeBytes.Load() > maxBytes {
		head := c.q.head
		if head == nil {
			break
		}
		if head.lastUsedFrame.Load() == curFrame {
			break
		}
		c.q.remove(head)
		c.q.mu.Unlock()

		c.evict(head)

		c.q.mu.Lock()
	}
	c.q.mu.Unlock()

	c.curFrame.Add(1)
}

// unlinkAndAccount removes e from its bucket and queue if it is still
// linked, and, exactly once, walks the cache's own size/item accounting
// back by e's charged weight. It is safe to call more than once for the
// same entry: Trim's eviction and retire (an entry's last DecRef) both
// funnel through it, and only the first caller to observe e still linked
// performs the subtraction. Empty does not use it: it unlinks entries itself
// and resets the counters to zero.
func (c *Cache[K, V]) unlinkAndAccount(e *Entry[K, V]) {
	b := c.bucketFor(e.hash)
	b.mu.Lock()
	wasLinked := e.inBucket
	b.remove(e)
	b.mu.Unlock()

	c.q.mu.Lock()
	c.q.remove(e)
	c.q.mu.Unlock()

	if wasLinked {
		c.sizeBytes.Add(-e.size.Load())
		c.itemCount.Add(-1)
		c.metrics.setSizeBytes(c.sizeBytes.Load())
		c.metrics.setItems(c.itemCount.Load())
	}
}

// evict unlinks head from bucket and queue, subtracts its size from the
// budget, and drops the map's own strong reference. If no other holder
// remains this also destroys it and fires EvictCallback; if an external
// holder (e.g. another family's key) still holds a reference, destruction
// is deferred to that holder's own DecRef, and EvictCallback does not fire
// for that later, ordinary release. Only the cache's own eviction is a
// reportable eviction event.
func (c *Cache[K, V]) evict(head *Entry[K, V]) {
	c.unlinkAndAccount(head)
	c.metrics.incEvict()
	if head.refCount.Add(-1) == 0 {
		c.destroyEntry(head, EvictCapacity)
	}
}

// retire is Entry.DecRef's hook back into the cache when a reference drops
// to zero. It idempotently finishes unlinking (covering an external DecRef
// reaching zero while the entry is still map-resident) and always destroys,
// but unlike evict never reports EvictCallback: a bare reference reaching
// zero outside of Trim/Empty is an ordinary release, not a cache eviction.
func (c *Cache[K, V]) retire(e *Entry[K, V]) {
	c.unlinkAndAccount(e)
	c.destroyEntry(e, 0)
}

// destroyEntry runs the family destructors exactly once and, if reason is
// non-zero, reports the eviction to the configured EvictCallback.
func (c *Cache[K, V]) destroyEntry(e *Entry[K, V], reason EvictReason) {
	key, val := e.key, e.val
	c.descriptor.DestroyValue(&key, val)
	c.descriptor.DestroyKey(&key)
	if reason != 0 && c.evictCb != nil {
		c.evictCb(key, val, reason)
	}
}

// Empty walks every bucket, unlinks every entry, and drops the map's own
// strong reference on each.
func (c *Cache[K, V]) Empty() {
	if c.closed.Load() {
		return
	}
	c.empty()
}

func (c *Cache[K, V]) empty() {
	for i := range c.buckets {
		b := &c.buckets[i]
		b.mu.Lock()
		head := b.head
		b.head = nil
		b.mu.Unlock()

		for e := head; e != nil; {
			next := e.bucketNext
			e.bucketNext, e.bucketPrev = nil, nil
			e.inBucket = false

			c.q.mu.Lock()
			c.q.remove(e)
			c.q.mu.Unlock()

			c.emptyOne(e)
			e = next
		}
	}
	c.sizeBytes.Store(0)
	c.itemCount.Store(0)
	c.metrics.setSizeBytes(0)
	c.metrics.setItems(0)
}

func (c *Cache[K, V]) emptyOne(e *Entry[K, V]) {
	// The bucket/queue unlink already happened in Empty's caller; DecRef
	// here only needs to drop the map's own hold. External holders can
	// still keep an entry alive past this point; the cache itself simply
	// forgets it, and teardown happens on their own later DecRef.
	if e.refCount.Add(-1) != 0 {
		return
	}
	c.destroyEntry(e, EvictEmpty)
}

// Stats is a point-in-time snapshot of a cache's counters.
type Stats struct {
	SizeBytes int64
	Hits      uint64
	Misses    uint64
	Items     int64
}

// HitRatio returns Hits/(Hits+Misses), or 0 when there have been no lookups.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		SizeBytes: c.sizeBytes.Load(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Items:     c.itemCount.Load(),
	}
}

// Close destroys the cache. It does not wait for outstanding external
// references to the entries it forgets; see Empty.
func (c *Cache[K, V]) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.empty()
}
