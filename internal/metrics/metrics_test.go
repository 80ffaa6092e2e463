package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsInit verifies that Init() is idempotent and registers metrics
func TestMetricsInit(t *testing.T) {
	// Call Init multiple times - should be idempotent via sync.Once
	Init()
	Init()
	Init()

	if BytesFreedTotal == nil {
		t.Error("BytesFreedTotal should be initialized")
	}
	if FilesDeletedTotal == nil {
		t.Error("FilesDeletedTotal should be initialized")
	}
	if RunDuration == nil {
		t.Error("RunDuration should be initialized")
	}
	if FreeBytes == nil {
		t.Error("FreeBytes should be initialized")
	}

	// Labeled metrics only show up once a label set exists
	DeletionsByReason.WithLabelValues("explicit")
	FreeBytes.WithLabelValues("/", "before")

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	expectedMetrics := []string{
		"cleanstore_bytes_freed_total",
		"cleanstore_files_deleted_total",
		"cleanstore_delete_errors_total",
		"cleanstore_explicit_files_missing_total",
		"cleanstore_dirs_skipped_total",
		"cleanstore_deleted_file_size_bytes",
		"cleanstore_deletions_by_reason_total",
		"cleanstore_run_duration_seconds",
		"cleanstore_run_last_timestamp",
		"cleanstore_run_last_reclaimed_bytes",
		"cleanstore_run_dirs_visited",
		"cleanstore_root_free_bytes",
	}

	foundMetrics := make(map[string]bool)
	for _, mf := range mfs {
		foundMetrics[mf.GetName()] = true
	}

	for _, expected := range expectedMetrics {
		if !foundMetrics[expected] {
			t.Errorf("Expected metric %s not found in registry", expected)
		}
	}
}

// TestRecordDeletion verifies the deletion helper updates all collectors
func TestRecordDeletion(t *testing.T) {
	Init()

	files := testutil.ToFloat64(FilesDeletedTotal)
	bytes := testutil.ToFloat64(BytesFreedTotal)
	explicit := testutil.ToFloat64(DeletionsByReason.WithLabelValues("explicit"))

	RecordDeletion("explicit", 2000)
	RecordDeletion("explicit", 0)

	if got := testutil.ToFloat64(FilesDeletedTotal) - files; got != 2 {
		t.Errorf("FilesDeletedTotal grew by %v, want 2", got)
	}
	if got := testutil.ToFloat64(BytesFreedTotal) - bytes; got != 2000 {
		t.Errorf("BytesFreedTotal grew by %v, want 2000", got)
	}
	if got := testutil.ToFloat64(DeletionsByReason.WithLabelValues("explicit")) - explicit; got != 2 {
		t.Errorf("DeletionsByReason[explicit] grew by %v, want 2", got)
	}
}

// TestRecordRun verifies run gauges
func TestRecordRun(t *testing.T) {
	Init()

	RecordRun(1500*time.Millisecond, 150, 3)
	RecordFreeBytes("/data", "after", 4096)

	if got := testutil.ToFloat64(RunLastReclaimedBytes); got != 150 {
		t.Errorf("RunLastReclaimedBytes = %v, want 150", got)
	}
	if got := testutil.ToFloat64(DirsVisited); got != 3 {
		t.Errorf("DirsVisited = %v, want 3", got)
	}
	if got := testutil.ToFloat64(RunLastTimestamp); got <= 0 {
		t.Errorf("RunLastTimestamp = %v, want a recent timestamp", got)
	}
	if got := testutil.ToFloat64(FreeBytes.WithLabelValues("/data", "after")); got != 4096 {
		t.Errorf("FreeBytes = %v, want 4096", got)
	}
}

// TestWriteTextfile verifies the textfile export
func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCounter("cleanstore_test_textfile_total", "Test counter.")
	reg.MustRegister(c)
	c.Add(3)

	path := filepath.Join(t.TempDir(), "textfile", "cleanstore.prom")
	if err := WriteTextfileFrom(path, reg); err != nil {
		t.Fatalf("WriteTextfileFrom failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("textfile not written: %v", err)
	}
	if !strings.Contains(string(data), "cleanstore_test_textfile_total 3") {
		t.Errorf("textfile content missing counter:\n%s", data)
	}
}

// TestHelperFunctions verifies that helper functions create valid metrics
func TestHelperFunctions(t *testing.T) {
	t.Run("NewDurationHistogram", func(t *testing.T) {
		if h := NewDurationHistogram("test_duration", "Test duration metric"); h == nil {
			t.Error("NewDurationHistogram returned nil")
		}
	})

	t.Run("NewBytesHistogram", func(t *testing.T) {
		if h := NewBytesHistogram("test_sizes", "Test size metric"); h == nil {
			t.Error("NewBytesHistogram returned nil")
		}
	})

	t.Run("NewSizeGaugeVec", func(t *testing.T) {
		if gv := NewSizeGaugeVec("test_gauge_vec", "Test gauge vec metric", []string{"label"}); gv == nil {
			t.Error("NewSizeGaugeVec returned nil")
		}
	})

	t.Run("NewCounterVec", func(t *testing.T) {
		if cv := NewCounterVec("test_counter_vec", "Test counter vec metric", []string{"label"}); cv == nil {
			t.Error("NewCounterVec returned nil")
		}
	})
}
