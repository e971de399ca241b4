// Package composite wires a [cache.Cache] for the composite family: a
// filtered stack of layers, each layer referencing a bitmap entry and,
// optionally, the outline it was rasterized from (needed by filters that
// want the original vector shape, e.g. a border blur that must not bleed
// past the unblurred outline). A composite key owns one strong reference
// per non-nil layer reference, so Adopt/DestroyKey walk the whole layer
// list rather than one fixed field.
//
// © 2025 subcache authors. MIT License.
package composite

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/renderstack/subcache/families/bitmap"
	"github.com/renderstack/subcache/families/outline"
	"github.com/renderstack/subcache/pkg/cache"
)

// FilterDescriptor names the compositing filter and its one scalar
// parameter (fixed-point, as elsewhere in this module, so keys stay
// comparable without float Equal).
type FilterDescriptor struct {
	Name       string
	ParamMilli int64
}

// LayerRef is one layer of a composite: its rasterized bitmap, and
// optionally the outline it came from.
type LayerRef struct {
	Bitmap  *cache.Entry[bitmap.Key, *bitmap.Value]
	Outline *cache.Entry[outline.Key, *outline.Value]
}

// Key is a filter plus an ordered, length-prefixed (by virtue of being a
// Go slice) list of layers. Two composites with the same filter and the
// same layers in a different order are distinct entries: compositing order
// affects the result.
type Key struct {
	Filter FilterDescriptor
	Layers []LayerRef
}

func (k Key) Hash() uint64 {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d:", k.Filter.Name, k.Filter.ParamMilli, len(k.Layers))
	for _, l := range k.Layers {
		fmt.Fprintf(&b, "%p,%p;", l.Bitmap, l.Outline)
	}
	return xxhash.Sum64String(b.String())
}

func (k Key) Equal(o Key) bool {
	if k.Filter != o.Filter || len(k.Layers) != len(o.Layers) {
		return false
	}
	for i := range k.Layers {
		if k.Layers[i] != o.Layers[i] {
			return false
		}
	}
	return true
}

// Value is the composited raster.
type Value struct {
	Width, Height int
	Coverage      []byte
}

// New builds a composite cache.
func New(opts ...cache.Option[Key, *Value]) (*cache.Cache[Key, *Value], error) {
	d := &cache.Descriptor[Key, *Value]{
		Name: "composite",
		Adopt: func(dst *Key, staged Key) bool {
			layers := make([]LayerRef, len(staged.Layers))
			copy(layers, staged.Layers)
			dst.Filter = staged.Filter
			dst.Layers = layers
			for _, l := range layers {
				if l.Bitmap != nil {
					l.Bitmap.IncRef()
				}
				if l.Outline != nil {
					l.Outline.IncRef()
				}
			}
			return true
		},
		Release: func(Key) {},
		DestroyKey: func(k *Key) {
			for _, l := range k.Layers {
				if l.Bitmap != nil {
					l.Bitmap.DecRef()
				}
				if l.Outline != nil {
					l.Outline.DecRef()
				}
			}
		},
		DestroyValue: func(*Key, *Value) {},
		Construct: func(key *Key, user any) (*Value, int64, error) {
			if len(key.Layers) == 0 {
				return nil, 0, fmt.Errorf("composite: no layers")
			}
			width := 0
			for _, l := range key.Layers {
				if l.Bitmap == nil {
					return nil, 0, fmt.Errorf("composite: layer with nil bitmap")
				}
				if w := (*l.Bitmap.Value()).Width; w > width {
					width = w
				}
			}
			return &Value{Width: width, Height: 1, Coverage: make([]byte, width)}, int64(width), nil
		},
	}
	return cache.New[Key, *Value](d, opts...)
}
