// © 2025 subcache authors. MIT License.
package outline

import (
	"testing"

	"github.com/renderstack/subcache/families/font"
	"github.com/renderstack/subcache/pkg/cache"
)

func TestBoxAndDrawingAreIndependentKeys(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cl, _ := c.NewClient()

	box, err := c.Get(cl, Key{Tag: TagBox, BoxW: 4, BoxH: 3}, nil)
	if err != nil {
		t.Fatalf("Get box: %v", err)
	}
	if got := box.SizeBytes(); got != 12 {
		t.Fatalf("box size = %d, want 12", got)
	}

	drawing, err := c.Get(cl, Key{Tag: TagDrawing, Drawing: "m 0 0 l 1 1"}, nil)
	if err != nil {
		t.Fatalf("Get drawing: %v", err)
	}
	if box == drawing {
		t.Fatalf("box and drawing keys collided on the same entry")
	}
}

// TestGlyphOutlineHoldsAStrongFontReference exercises the cross-cache
// reference graph: adopting a glyph key must grow the referenced font
// entry's reference count, and destroying the glyph entry must shrink it
// back. A reference that outlives its own cache's sweep (font's Empty ran
// first here) must still retire cleanly through the ordinary DecRef path,
// and must not be reported through font's EvictCallback: only font's own
// Trim/Empty driving a reference to zero counts as a reportable eviction.
func TestGlyphOutlineHoldsAStrongFontReference(t *testing.T) {
	var evicted int
	fontCache, err := font.New(nil, cache.WithEvictCallback[font.Key, *font.Value](
		func(font.Key, *font.Value, cache.EvictReason) { evicted++ },
	))
	if err != nil {
		t.Fatalf("font.New: %v", err)
	}
	fontCl, _ := fontCache.NewClient()
	fontEntry, err := fontCache.Get(fontCl, font.Key{Family: "Garamond"}, nil)
	if err != nil {
		t.Fatalf("font Get: %v", err)
	}

	outlineCache, err := New()
	if err != nil {
		t.Fatalf("outline.New: %v", err)
	}
	outlineCl, _ := outlineCache.NewClient()
	if _, err := outlineCache.Get(outlineCl, Key{Tag: TagGlyph, Font: fontEntry, GlyphIndex: 3}, nil); err != nil {
		t.Fatalf("outline Get: %v", err)
	}

	// font's own sweep can't fully retire the entry: outline still holds a
	// reference, so this decrement does not reach zero and must not fire
	// EvictCallback.
	fontCache.Empty()
	if evicted != 0 {
		t.Fatalf("EvictCallback fired %d times before the font entry's last reference dropped", evicted)
	}

	// Destroying the glyph entry releases the outline family's strong
	// reference; since font's own sweep already ran, this reaches zero via
	// the ordinary DecRef path, not font's own eviction loop, and must
	// still not be reported as a font eviction.
	outlineCache.Empty()
	if evicted != 0 {
		t.Fatalf("EvictCallback fired %d times for a reference released outside font's own sweep", evicted)
	}
}
