// Package cache implements the shared memoization layer described by the
// subcache family descriptors: a generational, reference-counted cache that
// lets many independent families (fonts, outlines, glyph metrics, bitmaps,
// composite rasters, ...) share one lookup/insert/eviction engine while
// keeping their own key and value layouts.
//
// Callers never hold a [Cache] directly from more than one goroutine without
// a [Client]: the client is the rendezvous point the engine uses to let a
// second goroutine wait for the first to finish constructing a value, and to
// accumulate the current frame's touches ahead of Trim.
//
// © 2025 subcache authors. MIT License.
package cache

// Key is the constraint every family's key type must satisfy: a hash and an
// equality test, realized as methods on the key type itself rather than as
// fields on the descriptor. Go's generic dispatch already gives each family a
// distinct Hash/Equal pair at compile time, so there is no need to carry
// function pointers for them separately.
//
// Hash must be a pure function of the key's logical contents. For key fields
// that reference another cache's entry, the hash should combine the
// referenced entry's identity (its address), not its contents: two distinct
// entries with byte-identical values are still distinct references.
//
// Equal must be consistent with Hash and, for keys holding references to
// other cached values, must compare those references by identity (pointer
// equality), not by deep value equality.
type Key[K any] interface {
	Hash() uint64
	Equal(other K) bool
}
