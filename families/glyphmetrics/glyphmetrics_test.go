// © 2025 subcache authors. MIT License.
package glyphmetrics

import (
	"testing"

	"github.com/renderstack/subcache/families/font"
)

func TestMetricsAreKeyedByFontAndGlyphIndex(t *testing.T) {
	fontCache, err := font.New(nil)
	if err != nil {
		t.Fatalf("font.New: %v", err)
	}
	fontCl, _ := fontCache.NewClient()
	f1, _ := fontCache.Get(fontCl, font.Key{Family: "A"}, nil)
	f2, _ := fontCache.Get(fontCl, font.Key{Family: "B"}, nil)

	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cl, _ := c.NewClient()

	m1, err := c.Get(cl, Key{Font: f1, GlyphIndex: 5}, nil)
	if err != nil {
		t.Fatalf("Get m1: %v", err)
	}
	m2, err := c.Get(cl, Key{Font: f2, GlyphIndex: 5}, nil)
	if err != nil {
		t.Fatalf("Get m2: %v", err)
	}
	if m1 == m2 {
		t.Fatalf("metrics for the same glyph index under different fonts collided")
	}
	if (*m1.Value()).AdvanceX != (*m2.Value()).AdvanceX {
		t.Fatalf("advance widths should match for the same glyph index regardless of font identity")
	}

	m1Again, err := c.Get(cl, Key{Font: f1, GlyphIndex: 5}, nil)
	if err != nil {
		t.Fatalf("Get m1Again: %v", err)
	}
	if m1 != m1Again {
		t.Fatalf("repeated Get for the same (font, glyph) pair did not hit")
	}
}
