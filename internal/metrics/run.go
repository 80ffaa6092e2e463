package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run-level metrics
var (
	// RunDuration tracks how long a full run takes
	RunDuration prometheus.Histogram

	// RunLastTimestamp records the Unix timestamp of the last run
	RunLastTimestamp prometheus.Gauge

	// RunLastReclaimedBytes records the bytes reclaimed by the last run
	RunLastReclaimedBytes prometheus.Gauge

	// DirsVisited records directories listed during the last run
	DirsVisited prometheus.Gauge

	// FreeBytes tracks free space on the filesystem containing the root
	FreeBytes *prometheus.GaugeVec
)

// initRunMetrics initializes all run metrics
func initRunMetrics() {
	RunDuration = NewDurationHistogram(
		"cleanstore_run_duration_seconds",
		"Duration of cleanstore runs in seconds.",
	)

	RunLastTimestamp = NewSizeGauge(
		"cleanstore_run_last_timestamp",
		"Timestamp of the last run (Unix epoch seconds).",
	)

	RunLastReclaimedBytes = NewSizeGauge(
		"cleanstore_run_last_reclaimed_bytes",
		"Bytes reclaimed by the last run.",
	)

	DirsVisited = NewSizeGauge(
		"cleanstore_run_dirs_visited",
		"Directories listed during the last run.",
	)

	FreeBytes = NewSizeGaugeVec(
		"cleanstore_root_free_bytes",
		"Free space available on the filesystem containing the root.",
		[]string{"root", "phase"},
	)
}

// registerRunMetrics registers all run metrics with Prometheus
func registerRunMetrics() {
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(RunLastTimestamp)
	prometheus.MustRegister(RunLastReclaimedBytes)
	prometheus.MustRegister(DirsVisited)
	prometheus.MustRegister(FreeBytes)
}

// RecordRun updates the run gauges once a run finishes
func RecordRun(elapsed time.Duration, reclaimed uint64, dirsVisited int) {
	Init()
	RunDuration.Observe(elapsed.Seconds())
	RunLastTimestamp.Set(float64(time.Now().Unix()))
	RunLastReclaimedBytes.Set(float64(reclaimed))
	DirsVisited.Set(float64(dirsVisited))
}

// RecordFreeBytes records free space for root, phase is "before" or "after"
func RecordFreeBytes(root, phase string, free int64) {
	Init()
	FreeBytes.WithLabelValues(root, phase).Set(float64(free))
}
