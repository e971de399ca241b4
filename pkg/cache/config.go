package cache

// config.go defines the functional options accepted by New: a private
// config struct filled in by defaultConfig, mutated by Option values, then
// validated by applyOptions.
//
// © 2025 subcache authors. MIT License.

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// EvictReason distinguishes why EvictCallback fired.
type EvictReason uint8

const (
	// EvictCapacity means Trim evicted the entry to meet its byte budget.
	EvictCapacity EvictReason = iota + 1
	// EvictEmpty means Empty tore the entry down.
	EvictEmpty
)

// EvictCallback is invoked, outside any cache lock, whenever Trim or Empty
// retires an entry the map itself was the last holder of. It runs after the
// family's DestroyValue/DestroyKey have already released the entry's owned
// resources, so the callback only observes the key/value's last logical
// contents: useful for external bookkeeping (metrics, a diagnostic spill to
// disk) but never for resurrecting the entry.
type EvictCallback[K any, V any] func(key K, value V, reason EvictReason)

// Option configures a Cache at construction time.
type Option[K Key[K], V any] func(*config[K, V])

type config[K Key[K], V any] struct {
	buckets  int
	registry *prometheus.Registry
	logger   *zap.Logger
	evictCb  EvictCallback[K, V]

	// zeroWeightOK relaxes the "Construct must return > 0" contract for
	// families whose values are legitimately weightless.
	zeroWeightOK bool
}

func defaultConfig[K Key[K], V any]() *config[K, V] {
	return &config[K, V]{
		buckets: defaultBucketCount,
		logger:  zap.NewNop(),
	}
}

// WithBuckets overrides the bucket-array size (tens of thousands by default;
// a family expected to hold far fewer distinct keys, e.g. sized-shaper-font,
// may reasonably ask for fewer).
func WithBuckets[K Key[K], V any](n int) Option[K, V] {
	return func(c *config[K, V]) {
		if n > 0 {
			c.buckets = n
		}
	}
}

// WithMetrics enables Prometheus metrics for the cache, labeled with family.
func WithMetrics[K Key[K], V any](reg *prometheus.Registry) Option[K, V] {
	return func(c *config[K, V]) { c.registry = reg }
}

// WithLogger plugs an external zap.Logger. The cache never logs on the hot
// path; the only event it logs is a construction that failed or returned a
// rejected size, after the pending entry is discarded.
func WithLogger[K Key[K], V any](l *zap.Logger) Option[K, V] {
	return func(c *config[K, V]) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEvictCallback registers a hook invoked whenever Trim/Empty retires an
// entry the cache itself was the last holder of. The callback runs in the
// calling goroutine (the one that called Trim/Empty) and must not block.
func WithEvictCallback[K Key[K], V any](cb EvictCallback[K, V]) Option[K, V] {
	return func(c *config[K, V]) { c.evictCb = cb }
}

// WithZeroWeightAllowed permits Construct to return a size of zero for this
// family without it being treated as a contract violation. Use this only
// for families whose values genuinely carry no accounting weight.
func WithZeroWeightAllowed[K Key[K], V any]() Option[K, V] {
	return func(c *config[K, V]) { c.zeroWeightOK = true }
}

func applyOptions[K Key[K], V any](cfg *config[K, V], opts []Option[K, V]) error {
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.buckets <= 0 {
		return ErrInvalidBuckets
	}
	return nil
}
