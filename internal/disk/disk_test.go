package disk

import (
	"path/filepath"
	"testing"
)

func TestProbe(t *testing.T) {
	u, err := Probe(t.TempDir())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if u.TotalBytes <= 0 {
		t.Errorf("TotalBytes = %d, want > 0", u.TotalBytes)
	}
	if u.FreeBytes < 0 || u.FreeBytes > u.TotalBytes {
		t.Errorf("FreeBytes = %d out of range [0, %d]", u.FreeBytes, u.TotalBytes)
	}
	if u.UsedPercent < 0 || u.UsedPercent > 100 {
		t.Errorf("UsedPercent = %f out of range", u.UsedPercent)
	}
}

func TestProbeMissingPath(t *testing.T) {
	if _, err := Probe(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Probe on a missing path should fail")
	}
}
