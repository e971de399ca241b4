package cache

// descriptor.go defines the per-family vtable. One Descriptor value is
// constructed per family (font, outline, glyph-metrics, bitmap, composite,
// sized-shaper-font) and handed to New when the family package builds its
// cache; the engine in this package never knows what K or V actually are.

// Adopt moves a staged key, owned transiently by the caller of Get, into the
// entry slot dst. Implementations must deep-copy any owned fields (strings,
// allocations) and, for key fields that reference another cache's entry,
// call IncRef on that entry so the new one owns a strong reference: this is
// the only place (besides Entry construction itself) that grows the
// cross-cache reference graph. Adopt returns false on failure (e.g. a copy
// that could not allocate); on false the caller's Get returns an error and
// Release is invoked on staged instead.
type AdoptFunc[K any] func(dst *K, staged K) bool

// Release is invoked when Get loses the insertion race or Adopt fails: it
// must undo whatever transient ownership the staged key (never installed
// anywhere) was holding, such as IncRef calls it never got to make
// permanent, or owned allocations it never got to hand off.
type ReleaseFunc[K any] func(staged K)

// DestroyKey is invoked exactly once, when an entry retires, to release the
// key's owned fields. For keys that reference another cache's entry, this is
// where DecRef on that reference belongs: it is the teardown half of what
// Adopt grew.
type DestroyKeyFunc[K any] func(key *K)

// DestroyValue is invoked exactly once, when an entry retires, to release
// the value's owned resources (rasterized buffers, shaped glyph runs, ...).
type DestroyValueFunc[K any, V any] func(key *K, value V)

// Construct materializes the value for a freshly won key. It runs outside
// every cache lock and must be safe to run concurrently with lookups on
// unrelated keys. It returns the byte size to charge against the cache's
// budget; a size of zero is a contract violation (see ErrZeroSize) unless
// the cache was built with WithZeroWeightAllowed, for families whose values
// are legitimately free to charge (see config.go).
type ConstructFunc[K any, V any] func(key *K, user any) (V, int64, error)

// Descriptor bundles the five family-specific callbacks assigned to a
// family, plus a human-readable Name used in logs and metric labels.
type Descriptor[K Key[K], V any] struct {
	Name string

	Adopt        AdoptFunc[K]
	Release      ReleaseFunc[K]
	DestroyKey   DestroyKeyFunc[K]
	DestroyValue DestroyValueFunc[K, V]
	Construct    ConstructFunc[K, V]
}

func (d *Descriptor[K, V]) validate() error {
	if d == nil {
		return ErrNilDescriptor
	}
	if d.Adopt == nil || d.Release == nil || d.DestroyKey == nil ||
		d.DestroyValue == nil || d.Construct == nil {
		return ErrIncompleteDescriptor
	}
	return nil
}
