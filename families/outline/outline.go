// Package outline wires a [cache.Cache] for the outline family: a tagged
// union over four distinct shapes (a glyph traced from a font, a
// user-supplied vector drawing, a border derived from another outline, or a
// plain filled box). Glyph and Border variants hold a strong cross-cache
// reference (to a [font.Key] entry and to another outline entry
// respectively), so this package is the first one in the family set that
// participates in the cross-cache reference graph's teardown discipline.
//
// © 2025 subcache authors. MIT License.
package outline

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/renderstack/subcache/families/font"
	"github.com/renderstack/subcache/pkg/cache"
)

// Tag discriminates which fields of Key are meaningful.
type Tag uint8

const (
	TagGlyph Tag = iota
	TagDrawing
	TagBorder
	TagBox
)

// Key is a tagged union; only the fields relevant to Tag are read. Pointer
// fields that reference another family's entry are compared by identity,
// since two distinct entries can hold byte-identical values.
type Key struct {
	Tag Tag

	// TagGlyph
	Font       *cache.Entry[font.Key, *font.Value]
	GlyphIndex uint32

	// TagDrawing
	Drawing string

	// TagBorder: width is fixed-point (milli-units) so Equal never has to
	// compare floats.
	Base             *cache.Entry[Key, *Value]
	BorderWidthMilli int64

	// TagBox
	BoxW, BoxH int32
}

func (k Key) Hash() uint64 {
	switch k.Tag {
	case TagGlyph:
		return xxhash.Sum64String(fmt.Sprintf("glyph:%p:%d", k.Font, k.GlyphIndex))
	case TagDrawing:
		return xxhash.Sum64String("drawing:" + k.Drawing)
	case TagBorder:
		return xxhash.Sum64String(fmt.Sprintf("border:%p:%d", k.Base, k.BorderWidthMilli))
	case TagBox:
		return xxhash.Sum64String(fmt.Sprintf("box:%d:%d", k.BoxW, k.BoxH))
	default:
		return 0
	}
}

func (k Key) Equal(o Key) bool {
	if k.Tag != o.Tag {
		return false
	}
	switch k.Tag {
	case TagGlyph:
		return k.Font == o.Font && k.GlyphIndex == o.GlyphIndex
	case TagDrawing:
		return k.Drawing == o.Drawing
	case TagBorder:
		return k.Base == o.Base && k.BorderWidthMilli == o.BorderWidthMilli
	case TagBox:
		return k.BoxW == o.BoxW && k.BoxH == o.BoxH
	default:
		return false
	}
}

// Value holds the traced outline. Points stands in for the real vector
// representation this module does not compute; its length is what gets
// charged against the cache budget.
type Value struct {
	Points []byte
}

// New builds an outline cache. Glyph and Border keys take a strong reference
// on the entry they point at when they are first adopted, and release it
// when the outline entry is itself destroyed: the reference graph grows on
// Adopt and shrinks on DestroyKey, never anywhere else.
func New(opts ...cache.Option[Key, *Value]) (*cache.Cache[Key, *Value], error) {
	d := &cache.Descriptor[Key, *Value]{
		Name: "outline",
		Adopt: func(dst *Key, staged Key) bool {
			*dst = staged
			switch staged.Tag {
			case TagGlyph:
				if staged.Font != nil {
					staged.Font.IncRef()
				}
			case TagBorder:
				if staged.Base != nil {
					staged.Base.IncRef()
				}
			}
			return true
		},
		Release: func(Key) {},
		DestroyKey: func(k *Key) {
			switch k.Tag {
			case TagGlyph:
				if k.Font != nil {
					k.Font.DecRef()
				}
			case TagBorder:
				if k.Base != nil {
					k.Base.DecRef()
				}
			}
		},
		DestroyValue: func(*Key, *Value) {},
		Construct: func(key *Key, user any) (*Value, int64, error) {
			var data []byte
			switch key.Tag {
			case TagGlyph:
				data = []byte(fmt.Sprintf("glyph-outline:%d", key.GlyphIndex))
			case TagDrawing:
				data = []byte(key.Drawing)
			case TagBorder:
				data = []byte(fmt.Sprintf("border-outline:%d", key.BorderWidthMilli))
			case TagBox:
				if key.BoxW < 0 || key.BoxH < 0 {
					return nil, 0, fmt.Errorf("outline: negative box dimensions %dx%d", key.BoxW, key.BoxH)
				}
				data = make([]byte, int(key.BoxW)*int(key.BoxH))
			default:
				return nil, 0, fmt.Errorf("outline: unknown tag %d", key.Tag)
			}
			return &Value{Points: data}, int64(len(data)), nil
		},
	}
	return cache.New[Key, *Value](d, opts...)
}
