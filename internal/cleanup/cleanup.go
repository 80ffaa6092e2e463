package cleanup

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"cleanstore/internal/diskspace"
	"cleanstore/internal/fsops"
	"cleanstore/internal/logging"
	"cleanstore/internal/metrics"
	"cleanstore/internal/safety"
	"cleanstore/internal/scan"
)

var ErrIsDirectory = errors.New("refusing to delete a directory")

// Metrics interface for cleanup metrics
type Metrics interface {
	RecordDeletion(reason string, size int64)
	ErrorsTotal() prometheus.Counter
	MissingFilesTotal() prometheus.Counter
	DirsSkippedTotal() prometheus.Counter
}

// cleanupMetrics wraps global metrics to implement Metrics interface
type cleanupMetrics struct{}

func (cleanupMetrics) RecordDeletion(reason string, size int64) {
	metrics.RecordDeletion(reason, size)
}

func (cleanupMetrics) ErrorsTotal() prometheus.Counter {
	return metrics.ErrorsTotal
}

func (cleanupMetrics) MissingFilesTotal() prometheus.Counter {
	return metrics.MissingFilesTotal
}

func (cleanupMetrics) DirsSkippedTotal() prometheus.Counter {
	return metrics.DirsSkippedTotal
}

// Counts tallies the outcome of a run
type Counts struct {
	Deleted     int
	Failed      int
	NotFound    int
	SkippedDirs int
}

// Cleaner deletes candidates and accounts for the bytes they free.
type Cleaner struct {
	fs        afero.Fs
	validator *safety.Validator
	reporter  Reporter
	logger    logging.Leveled
	metrics   Metrics
	dryRun    bool

	acc    *diskspace.Accumulator
	counts Counts
}

// NewCleaner creates a Cleaner. A nil validator uses the default protected
// paths and a nil reporter drops events.
func NewCleaner(fs afero.Fs, validator *safety.Validator, reporter Reporter, logger *log.Logger, dryRun bool) *Cleaner {
	metrics.Init()
	if validator == nil {
		validator = safety.NewValidator(nil)
	}
	if reporter == nil {
		reporter = ReporterFunc(func(Event) {})
	}
	return &Cleaner{
		fs:        fs,
		validator: validator,
		reporter:  reporter,
		logger:    logging.Wrap(logger),
		metrics:   cleanupMetrics{},
		dryRun:    dryRun,
		acc:       diskspace.New(),
	}
}

// Accumulator returns the running byte total
func (c *Cleaner) Accumulator() *diskspace.Accumulator {
	return c.acc
}

// Counts returns the outcome counters so far
func (c *Cleaner) Counts() Counts {
	return c.counts
}

// Sweep deletes every candidate the sequence yields.
func (c *Cleaner) Sweep(candidates iter.Seq[scan.Candidate]) {
	for cand := range candidates {
		c.Delete(cand)
	}
}

// Delete removes one candidate. The size is added to the total only after
// the remove call succeeded, so a failed deletion is never counted. It
// reports whether the file is gone (or would be, in a dry run).
func (c *Cleaner) Delete(cand scan.Candidate) bool {
	if err := c.validator.ValidateDeleteTarget(cand.Path); err != nil {
		c.fail(cand, fmt.Errorf("safety check: %w", err))
		return false
	}

	kind := EventDeleted
	if c.dryRun {
		kind = EventDryRun
		c.logger.Info("[DRY RUN] Would delete file", "path", cand.Path, "size", cand.Size)
	} else if err := c.fs.Remove(cand.Path); err != nil {
		c.fail(cand, err)
		return false
	}

	size := cand.Size
	if size < 0 {
		size = 0
	}
	c.acc.Add(uint64(size))
	c.counts.Deleted++
	c.metrics.RecordDeletion(cand.Reason.String(), size)
	c.logStructured(kind, cand.Path, size, cand.Reason)
	c.reporter.Report(Event{Kind: kind, Path: cand.Path, Size: size, Reason: cand.Reason, Time: time.Now()})
	return true
}

// SkipDir records a directory the walk could not list. It has the shape of
// scan.WalkOptions.OnSkip.
func (c *Cleaner) SkipDir(path string, err error) {
	c.counts.SkippedDirs++
	c.metrics.DirsSkippedTotal().Inc()
	c.reporter.Report(Event{Kind: EventSkippedDir, Path: path, Err: err, Time: time.Now()})
}

func (c *Cleaner) fail(cand scan.Candidate, err error) {
	if errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("File vanished before removal", "path", cand.Path)
	} else {
		c.logger.Error("Failed to delete", "path", cand.Path, "error", err)
	}
	c.counts.Failed++
	c.metrics.ErrorsTotal().Inc()
	c.reporter.Report(Event{Kind: EventFailed, Path: cand.Path, Size: cand.Size, Reason: cand.Reason, Err: err, Time: time.Now()})
}

// logStructured logs with structured format: action, path, size, reason
func (c *Cleaner) logStructured(kind EventKind, path string, size int64, reason scan.Reason) {
	c.logger.Info(fmt.Sprintf("%s path=%s size=%d reason=%s", kind, path, size, reason))
}

// probe returns the file info for an explicit path, treating a missing file
// as a distinct, non-fatal outcome.
func (c *Cleaner) probe(path string) (os.FileInfo, bool, error) {
	info, err := fsops.Lstat(c.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return info, true, nil
}
