// Package font wires a [cache.Cache] for the font family: a family keyed
// only by its face name, holding an opaque loaded-font handle with no
// cross-cache references of its own. Every other family in this module
// ultimately chains back to a font entry, so this package carries no
// Adopt-time reference-counting logic: it is the root of the cross-cache
// reference graph, not a participant in it.
//
// © 2025 subcache authors. MIT License.
package font

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/renderstack/subcache/pkg/cache"
)

// Key identifies a font purely by face name. A real font identity would
// fold in style flags (weight, slant) too; this module skips them since no
// other family needs them to exercise the cache engine.
type Key struct {
	Family string
}

// Hash uses xxhash rather than Go's hash/maphash: unlike maphash, xxhash.Sum64
// is stable across process restarts, which matters once cmd/subcache-inspect
// starts reporting hash values for diagnostics.
func (k Key) Hash() uint64 { return xxhash.Sum64String(k.Family) }

func (k Key) Equal(o Key) bool { return k.Family == o.Family }

// Value stands in for a loaded font handle. Loader records the family name
// the value was loaded for; Bytes holds what the Loader function returned
// and its length is what the cache charges against its budget.
type Value struct {
	Loader string
	Bytes  []byte
}

// Loader is invoked by Construct to materialize a Value for a newly won Key.
// Production callers plug in real font loading; tests and examples use a
// deterministic stand-in.
type Loader func(family string) ([]byte, error)

// New builds a font cache. load supplies the family's Construct behavior;
// pass nil to use a deterministic stand-in (upper-cases the family name and
// treats the result as the loaded bytes), which is sufficient to exercise
// every cache operation without this module doing real font I/O.
func New(load Loader, opts ...cache.Option[Key, *Value]) (*cache.Cache[Key, *Value], error) {
	if load == nil {
		load = func(family string) ([]byte, error) {
			return []byte(strings.ToUpper(family)), nil
		}
	}
	d := &cache.Descriptor[Key, *Value]{
		Name:         "font",
		Adopt:        func(dst *Key, staged Key) bool { *dst = staged; return true },
		Release:      func(Key) {},
		DestroyKey:   func(*Key) {},
		DestroyValue: func(*Key, *Value) {},
		Construct: func(key *Key, user any) (*Value, int64, error) {
			data, err := load(key.Family)
			if err != nil {
				return nil, 0, err
			}
			return &Value{Loader: key.Family, Bytes: data}, int64(len(data)), nil
		},
	}
	return cache.New[Key, *Value](d, opts...)
}
