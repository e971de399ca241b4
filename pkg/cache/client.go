package cache

import "sync"

// client.go implements the per-producer handle a goroutine uses to talk to a
// Cache. A Client owns the mutex and condition variable other goroutines
// wait on while this client is constructing a value, and it accumulates
// this frame's touched entries ahead of the next Trim.
//
// One Client must not be shared between concurrent goroutines that could
// both be constructing different entries at once: exactly one mutex/cond
// is tied to its creating client, so two constructions racing on the same
// client would corrupt which entry a waiter is actually waiting for.
// Typical usage is one Client per rendering thread.
type Client[K Key[K], V any] struct {
	cache *Cache[K, V]

	mu   sync.Mutex
	cond *sync.Cond

	// promoteFirst links entries touched this frame by this client, via
	// Entry.promoteNext, awaiting the next Trim's fold into the global
	// queue.
	promoteFirst *Entry[K, V]

	closed bool
}

func newClient[K Key[K], V any](c *Cache[K, V]) *Client[K, V] {
	cl := &Client[K, V]{cache: c}
	cl.cond = sync.NewCond(&cl.mu)
	return cl
}

// waitFor blocks until e is no longer pending. A reader matching a pending
// entry takes the creating client's mutex, rechecks, and waits on the
// condition.
func (cl *Client[K, V]) waitFor(e *Entry[K, V]) {
	cl.mu.Lock()
	for e.isPending() {
		cl.cond.Wait()
	}
	cl.mu.Unlock()
}

// publishAndBroadcast stores the constructed size under cl's mutex and wakes
// every waiter blocked on cl.cond.
func (cl *Client[K, V]) publishAndBroadcast(e *Entry[K, V], size int64) {
	cl.mu.Lock()
	e.publish(size)
	cl.mu.Unlock()
	cl.cond.Broadcast()
}

// touch records that e was used this frame: swap lastUsedFrame to curFrame;
// if it changed, push onto this client's local promote list so the next
// Trim folds it into the global queue's most-recent end.
func (cl *Client[K, V]) touch(e *Entry[K, V], curFrame uint64) {
	prev := e.lastUsedFrame.Swap(curFrame)
	if prev == curFrame {
		return
	}
	cl.cache.promoteMu.Lock()
	if !e.promoteQueued {
		e.promoteNext = cl.promoteFirst
		cl.promoteFirst = e
		e.promoteQueued = true
	}
	cl.cache.promoteMu.Unlock()
}

// drainPromotions removes and returns this client's promotion list, clearing
// it for the next frame. Called only by the coordinator during Trim;
// cache.promoteMu must be held by the caller.
func (cl *Client[K, V]) drainPromotions() *Entry[K, V] {
	head := cl.promoteFirst
	cl.promoteFirst = nil
	return head
}

// Close destroys the client. It is the caller's
// responsibility to ensure no construction is in flight on this client when
// Close runs; any entries it created remain valid (ownership already
// transferred to the cache).
func (cl *Client[K, V]) Close() {
	cl.cache.removeClient(cl)
	cl.mu.Lock()
	cl.closed = true
	cl.mu.Unlock()
}
