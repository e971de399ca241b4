// © 2025 subcache authors. MIT License.
package shaperfont

import (
	"testing"

	"github.com/renderstack/subcache/families/font"
)

func TestDistinctSizesAreDistinctEntries(t *testing.T) {
	fontCache, _ := font.New(nil)
	fontCl, _ := fontCache.NewClient()
	f, _ := fontCache.Get(fontCl, font.Key{Family: "Garamond"}, nil)

	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cl, _ := c.NewClient()

	small, err := c.Get(cl, Key{Font: f, SizeMilliPt: 12000}, nil)
	if err != nil {
		t.Fatalf("Get small: %v", err)
	}
	large, err := c.Get(cl, Key{Font: f, SizeMilliPt: 48000}, nil)
	if err != nil {
		t.Fatalf("Get large: %v", err)
	}
	if small == large {
		t.Fatalf("different sizes of the same font collided on one entry")
	}
	if small.SizeBytes() >= large.SizeBytes() {
		t.Fatalf("larger point size should charge more bytes: small=%d large=%d", small.SizeBytes(), large.SizeBytes())
	}
}

func TestNonPositiveSizeIsRejected(t *testing.T) {
	fontCache, _ := font.New(nil)
	fontCl, _ := fontCache.NewClient()
	f, _ := fontCache.Get(fontCl, font.Key{Family: "Garamond"}, nil)

	c, _ := New()
	cl, _ := c.NewClient()
	if _, err := c.Get(cl, Key{Font: f, SizeMilliPt: 0}, nil); err == nil {
		t.Fatalf("expected an error for a zero point size")
	}
}
