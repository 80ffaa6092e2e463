package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Cleanup subsystem metrics
var (
	// BytesFreedTotal tracks total bytes reclaimed by successful deletions
	BytesFreedTotal prometheus.Counter

	// FilesDeletedTotal tracks total files deleted
	FilesDeletedTotal prometheus.Counter

	// ErrorsTotal tracks deletions that failed or were refused
	ErrorsTotal prometheus.Counter

	// MissingFilesTotal tracks explicit files that did not exist
	MissingFilesTotal prometheus.Counter

	// DirsSkippedTotal tracks directories that could not be listed
	DirsSkippedTotal prometheus.Counter

	// DeletedFileSize tracks the size distribution of removed files
	DeletedFileSize prometheus.Histogram

	// DeletionsByReason tracks deletions per selection reason (target_name, explicit)
	DeletionsByReason *prometheus.CounterVec
)

// initCleanupMetrics initializes all cleanup subsystem metrics
func initCleanupMetrics() {
	BytesFreedTotal = NewBytesCounter(
		"cleanstore_bytes_freed_total",
		"Total bytes reclaimed by cleanstore.",
	)

	FilesDeletedTotal = NewCounter(
		"cleanstore_files_deleted_total",
		"Total number of files deleted by cleanstore.",
	)

	ErrorsTotal = NewCounter(
		"cleanstore_delete_errors_total",
		"Total number of deletions that failed or were refused.",
	)

	MissingFilesTotal = NewCounter(
		"cleanstore_explicit_files_missing_total",
		"Total number of explicitly listed files that were not present.",
	)

	DirsSkippedTotal = NewCounter(
		"cleanstore_dirs_skipped_total",
		"Total number of directories skipped because they could not be listed.",
	)

	DeletedFileSize = NewBytesHistogram(
		"cleanstore_deleted_file_size_bytes",
		"Size of deleted files in bytes.",
	)

	DeletionsByReason = NewCounterVec(
		"cleanstore_deletions_by_reason_total",
		"Deleted files by selection reason.",
		[]string{"reason"},
	)
}

// registerCleanupMetrics registers all cleanup metrics with Prometheus
func registerCleanupMetrics() {
	prometheus.MustRegister(BytesFreedTotal)
	prometheus.MustRegister(FilesDeletedTotal)
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(MissingFilesTotal)
	prometheus.MustRegister(DirsSkippedTotal)
	prometheus.MustRegister(DeletedFileSize)
	prometheus.MustRegister(DeletionsByReason)
}

// RecordDeletion records a successful deletion of size bytes
func RecordDeletion(reason string, size int64) {
	FilesDeletedTotal.Inc()
	if size > 0 {
		BytesFreedTotal.Add(float64(size))
	}
	DeletedFileSize.Observe(float64(size))
	DeletionsByReason.WithLabelValues(reason).Inc()
}
