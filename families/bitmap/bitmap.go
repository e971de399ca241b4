// Package bitmap wires a [cache.Cache] for the bitmap family: a rasterized
// alpha-coverage bitmap derived from one outline entry. Bitmaps are
// typically the largest and most reconstruction-expensive values in the
// pipeline.
//
// © 2025 subcache authors. MIT License.
package bitmap

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/renderstack/subcache/families/outline"
	"github.com/renderstack/subcache/pkg/cache"
)

// Key identifies a rasterization of one outline entry.
type Key struct {
	Outline *cache.Entry[outline.Key, *outline.Value]
}

func (k Key) Hash() uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%p", k.Outline))
}

func (k Key) Equal(o Key) bool { return k.Outline == o.Outline }

// Value holds the rasterized coverage buffer plus the metrics a compositor
// needs to place it.
type Value struct {
	Width, Height int
	Coverage      []byte
}

// New builds a bitmap cache.
func New(opts ...cache.Option[Key, *Value]) (*cache.Cache[Key, *Value], error) {
	d := &cache.Descriptor[Key, *Value]{
		Name: "bitmap",
		Adopt: func(dst *Key, staged Key) bool {
			*dst = staged
			if staged.Outline != nil {
				staged.Outline.IncRef()
			}
			return true
		},
		Release: func(Key) {},
		DestroyKey: func(k *Key) {
			if k.Outline != nil {
				k.Outline.DecRef()
			}
		},
		DestroyValue: func(*Key, *Value) {},
		Construct: func(key *Key, user any) (*Value, int64, error) {
			if key.Outline == nil {
				return nil, 0, fmt.Errorf("bitmap: nil outline reference")
			}
			points := (*key.Outline.Value()).Points
			n := len(points)
			if n == 0 {
				n = 1
			}
			return &Value{Width: n, Height: 1, Coverage: make([]byte, n)}, int64(n), nil
		},
	}
	return cache.New[Key, *Value](d, opts...)
}
