// Package shaperfont wires a [cache.Cache] for the sized-shaper-font family:
// a font instantiated at one concrete point size for text shaping, keyed by
// the font it derives from plus that size. Distinct sizes of the same font
// are distinct entries, each holding its own strong reference on the
// underlying font entry.
//
// © 2025 subcache authors. MIT License.
package shaperfont

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/renderstack/subcache/families/font"
	"github.com/renderstack/subcache/pkg/cache"
)

// Key identifies one font sized for shaping. SizeMilliPt is the point size
// in thousandths of a point, so Equal never has to compare floats.
type Key struct {
	Font        *cache.Entry[font.Key, *font.Value]
	SizeMilliPt int64
}

func (k Key) Hash() uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%p:%d", k.Font, k.SizeMilliPt))
}

func (k Key) Equal(o Key) bool {
	return k.Font == o.Font && k.SizeMilliPt == o.SizeMilliPt
}

// Value is the size-instantiated shaping handle. Blob stands in for
// whatever scaled outline tables a real shaping engine would build; this
// module does not shape text.
type Value struct {
	Blob []byte
}

// New builds a sized-shaper-font cache.
func New(opts ...cache.Option[Key, *Value]) (*cache.Cache[Key, *Value], error) {
	d := &cache.Descriptor[Key, *Value]{
		Name: "shaperfont",
		Adopt: func(dst *Key, staged Key) bool {
			*dst = staged
			if staged.Font != nil {
				staged.Font.IncRef()
			}
			return true
		},
		Release: func(Key) {},
		DestroyKey: func(k *Key) {
			if k.Font != nil {
				k.Font.DecRef()
			}
		},
		DestroyValue: func(*Key, *Value) {},
		Construct: func(key *Key, user any) (*Value, int64, error) {
			if key.SizeMilliPt <= 0 {
				return nil, 0, fmt.Errorf("shaperfont: non-positive size %d", key.SizeMilliPt)
			}
			data := make([]byte, key.SizeMilliPt/1000+1)
			return &Value{Blob: data}, int64(len(data)), nil
		},
	}
	return cache.New[Key, *Value](d, opts...)
}
