// © 2025 subcache authors. MIT License.
package composite

import (
	"testing"

	"github.com/renderstack/subcache/families/bitmap"
	"github.com/renderstack/subcache/families/outline"
	"github.com/renderstack/subcache/pkg/cache"
)

func buildBitmap(t *testing.T, w, h int32) *cache.Entry[bitmap.Key, *bitmap.Value] {
	t.Helper()
	oc, err := outline.New()
	if err != nil {
		t.Fatalf("outline.New: %v", err)
	}
	ocl, _ := oc.NewClient()
	box, err := oc.Get(ocl, outline.Key{Tag: outline.TagBox, BoxW: w, BoxH: h}, nil)
	if err != nil {
		t.Fatalf("outline Get: %v", err)
	}

	bc, err := bitmap.New()
	if err != nil {
		t.Fatalf("bitmap.New: %v", err)
	}
	bcl, _ := bc.NewClient()
	bm, err := bc.Get(bcl, bitmap.Key{Outline: box}, nil)
	if err != nil {
		t.Fatalf("bitmap Get: %v", err)
	}
	return bm
}

func TestCompositeWidthIsMaxOfLayers(t *testing.T) {
	small := buildBitmap(t, 2, 1)
	large := buildBitmap(t, 9, 1)

	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cl, _ := c.NewClient()
	e, err := c.Get(cl, Key{
		Filter: FilterDescriptor{Name: "blend", ParamMilli: 500},
		Layers: []LayerRef{{Bitmap: small}, {Bitmap: large}},
	}, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := (*e.Value()).Width; got != 9 {
		t.Fatalf("Width = %d, want 9 (max of layer widths)", got)
	}
}

func TestEmptyLayerListRejected(t *testing.T) {
	c, _ := New()
	cl, _ := c.NewClient()
	if _, err := c.Get(cl, Key{Filter: FilterDescriptor{Name: "blend"}, Layers: nil}, nil); err == nil {
		t.Fatalf("expected an error for an empty layer list")
	}
}
