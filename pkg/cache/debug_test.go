// © 2025 subcache authors. MIT License.
package cache

import "testing"

func TestSnapshotJSONAndDebugString(t *testing.T) {
	c := mustCache(t, newTestDescriptor(10, nil))
	cl, _ := c.NewClient()
	if _, err := c.Get(cl, intKey(1), nil); err != nil {
		t.Fatalf("Get: %v", err)
	}

	snap := c.SnapshotJSON()
	if snap["items"].(int64) != 1 {
		t.Fatalf("snapshot items = %v, want 1", snap["items"])
	}
	if snap["size_bytes"].(int64) != 10 {
		t.Fatalf("snapshot size_bytes = %v, want 10", snap["size_bytes"])
	}

	out := c.DebugString(10)
	if out == "" {
		t.Fatalf("DebugString returned empty output")
	}
}
