// Package glyphmetrics wires a [cache.Cache] for the glyph-metrics family:
// per-glyph advance widths and bounding boxes, keyed by the font they were
// measured against plus the glyph index. Like families/outline's glyph
// variant, a metrics key holds a strong reference on the font entry it was
// measured from.
//
// © 2025 subcache authors. MIT License.
package glyphmetrics

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/renderstack/subcache/families/font"
	"github.com/renderstack/subcache/pkg/cache"
)

// Key identifies one glyph's metrics within one font.
type Key struct {
	Font       *cache.Entry[font.Key, *font.Value]
	GlyphIndex uint32
}

func (k Key) Hash() uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%p:%d", k.Font, k.GlyphIndex))
}

func (k Key) Equal(o Key) bool {
	return k.Font == o.Font && k.GlyphIndex == o.GlyphIndex
}

// Value holds the glyph's measured extents. Production callers fill these in
// from a real shaping engine; the stand-in Construct below derives
// deterministic numbers from the glyph index alone, enough to exercise
// caching without this module doing real font measurement.
type Value struct {
	AdvanceX    float64
	BoundingBox [4]float64 // xMin, yMin, xMax, yMax
}

// sizeOf is the fixed byte weight every metrics value is charged: five
// float64 fields, matching the struct's actual footprint.
const sizeOf = int64(5 * 8)

// New builds a glyph-metrics cache.
func New(opts ...cache.Option[Key, *Value]) (*cache.Cache[Key, *Value], error) {
	d := &cache.Descriptor[Key, *Value]{
		Name: "glyphmetrics",
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
			advance := float64(key.GlyphIndex) * 0.6
			return &Value{
				AdvanceX:    advance,
				BoundingBox: [4]float64{0, 0, advance, 1},
			}, sizeOf, nil
		},
	}
	return cache.New[Key, *Value](d, opts...)
}
