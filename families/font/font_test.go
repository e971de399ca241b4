// © 2025 subcache authors. MIT License.
package font

import (
	"errors"
	"testing"
)

var errBoom = errors.New("boom")

func TestNewConstructsDeterministicStandIn(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cl, err := c.NewClient()
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	e, err := c.Get(cl, Key{Family: "Garamond"}, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := string((*e.Value()).Bytes); got != "GARAMOND" {
		t.Fatalf("Bytes = %q, want GARAMOND", got)
	}
	if size := e.SizeBytes(); size != 8 {
		t.Fatalf("SizeBytes = %d, want 8", size)
	}
}

func TestDistinctFamiliesAreDistinctKeys(t *testing.T) {
	c, _ := New(nil)
	cl, _ := c.NewClient()

	e1, _ := c.Get(cl, Key{Family: "A"}, nil)
	e2, _ := c.Get(cl, Key{Family: "B"}, nil)
	if e1 == e2 {
		t.Fatalf("distinct families returned the same entry")
	}
	if stats := c.Stats(); stats.Items != 2 {
		t.Fatalf("stats = %+v, want 2 items", stats)
	}
}

func TestLoaderErrorPropagates(t *testing.T) {
	c, err := New(func(family string) ([]byte, error) {
		return nil, errBoom
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cl, _ := c.NewClient()
	if _, err := c.Get(cl, Key{Family: "X"}, nil); err == nil {
		t.Fatalf("expected Construct failure to propagate")
	}
}
