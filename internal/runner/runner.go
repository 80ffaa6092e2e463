package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/afero"

	"cleanstore/internal/cleanup"
	"cleanstore/internal/config"
	"cleanstore/internal/database"
	"cleanstore/internal/disk"
	"cleanstore/internal/fsops"
	"cleanstore/internal/logging"
	"cleanstore/internal/metrics"
	"cleanstore/internal/safety"
	"cleanstore/internal/scan"
)

// Options carries the collaborators of a run. Every field is optional.
type Options struct {
	Fs        afero.Fs
	Logger    *log.Logger
	Validator *safety.Validator
	// Reporter receives every event, typically the console.
	Reporter cleanup.Reporter
	DB       *database.DeletionDB
	RunID    string
	// Probe reports filesystem usage for the root, disk.Probe when nil.
	Probe func(path string) (disk.Usage, error)
}

// Summary is the outcome of one run
type Summary struct {
	RunID       string
	Root        string
	DryRun      bool
	Deleted     int
	NotFound    int
	Failed      int
	SkippedDirs int
	DirsVisited int
	Reclaimed   uint64
	Rendered    string
	Duration    time.Duration
	FreeBefore  int64
	FreeAfter   int64
}

// RunOnce removes the explicit files, then sweeps cfg.Root for target
// names. A root that is missing or not a directory is returned as a fatal
// error before anything is touched. Per-file problems never fail the run.
func RunOnce(ctx context.Context, cfg *config.Config, opts Options) (*Summary, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if opts.Fs == nil {
		opts.Fs = fsops.OS()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Probe == nil {
		opts.Probe = disk.Probe
	}
	if opts.RunID == "" {
		opts.RunID = NewRunID(time.Now())
	}
	logger := logging.Wrap(opts.Logger)
	metrics.Init()

	if err := config.CheckRoot(opts.Fs, cfg.Root); err != nil {
		logger.Error("Root rejected", "root", cfg.Root, "error", err)
		return nil, err
	}

	start := time.Now()
	summary := &Summary{RunID: opts.RunID, Root: cfg.Root, DryRun: cfg.DryRun}
	summary.FreeBefore = freeBytes(opts, cfg.Root, "before", logger)

	reporters := []cleanup.Reporter{opts.Reporter}
	if opts.DB != nil {
		reporters = append(reporters, opts.DB.Reporter(opts.RunID, func(err error) {
			logger.Warn("Failed to record deletion history", "error", err)
		}))
	}

	cleaner := cleanup.NewCleaner(opts.Fs, opts.Validator, cleanup.Multi(reporters...), opts.Logger, cfg.DryRun)

	logger.Info("Run started", "run_id", opts.RunID, "root", cfg.Root, "dry_run", cfg.DryRun, "max_depth", cfg.MaxDepth)

	cleaner.RemoveListed(cfg.Files)

	walker := scan.NewWalker(opts.Fs, scan.WalkOptions{
		Targets:        cfg.Targets,
		Ignore:         scan.NewIgnoreMatcher(cfg.Ignore, cfg.Home),
		MaxDepth:       cfg.MaxDepth,
		FollowSymlinks: cfg.FollowSymlinks,
		OnSkip:         cleaner.SkipDir,
	}, opts.Logger)
	cleaner.Sweep(walker.Walk(cfg.Root))

	counts := cleaner.Counts()
	acc := cleaner.Accumulator()
	summary.Deleted = counts.Deleted
	summary.NotFound = counts.NotFound
	summary.Failed = counts.Failed
	summary.SkippedDirs = counts.SkippedDirs
	summary.DirsVisited = walker.Stats().DirsVisited
	summary.Reclaimed = acc.Total()
	summary.Rendered = acc.String()
	summary.FreeAfter = freeBytes(opts, cfg.Root, "after", logger)
	summary.Duration = time.Since(start)

	metrics.RecordRun(summary.Duration, summary.Reclaimed, summary.DirsVisited)
	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("Failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
		}
	}

	logger.Info(fmt.Sprintf("run complete: deleted=%d not_found=%d failed=%d skipped_dirs=%d freed=%d bytes duration=%.3fs",
		summary.Deleted, summary.NotFound, summary.Failed, summary.SkippedDirs, summary.Reclaimed, summary.Duration.Seconds()))
	return summary, nil
}

// freeBytes probes the filesystem holding root. A failed probe is logged
// and recorded as -1.
func freeBytes(opts Options, root, phase string, logger logging.Leveled) int64 {
	usage, err := opts.Probe(root)
	if err != nil {
		logger.Warn("Failed to get disk usage", "path", root, "error", err)
		return -1
	}
	metrics.RecordFreeBytes(root, phase, usage.FreeBytes)
	return usage.FreeBytes
}

// NewRunID derives a run identifier from the start time and process id
func NewRunID(t time.Time) string {
	return fmt.Sprintf("%s-%d", t.UTC().Format("20060102T150405.000000Z"), os.Getpid())
}
