package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cleanstore/internal/database"
	"cleanstore/internal/diskspace"
)

const defaultRecent = 10

var errNoDatabase = errors.New("no deletion database configured, pass --db or set database_path")

type historyOptions struct {
	recent  int
	largest int
	action  string
	run     string
	path    string
	since   string
	until   string
	stats   bool
	dbStats bool
	days    int
	prune   int
	json    bool
}

func newHistoryCmd(v *viper.Viper, configPath *string) *cobra.Command {
	opts := historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the deletion history",
		Long: `Show what earlier runs removed. Without a query flag the ` + fmt.Sprint(defaultRecent) + ` most
recent events are listed.`,
		Example: `  cleanstore history --recent 20
  cleanstore history --largest 5
  cleanstore history --action NOT_FOUND
  cleanstore history --path '%/Downloads/%'
  cleanstore history --since 2026-01-01 --until 2026-01-31
  cleanstore history --stats --days 7 --json
  cleanstore history --prune 90`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(v, *configPath, false)
			if err != nil {
				return err
			}
			if cfg.DatabasePath == "" {
				return usageError{errNoDatabase}
			}
			if opts.prune < 0 {
				return usageError{fmt.Errorf("--prune must be a positive number of days, got %d", opts.prune)}
			}
			start, end, err := parseRange(opts.since, opts.until, time.Now())
			if err != nil {
				return usageError{err}
			}

			db, err := database.NewDeletionDB(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open deletion database: %w", err)
			}
			defer db.Close()

			if opts.prune > 0 {
				return pruneHistory(cmd.OutOrStdout(), db, opts.prune)
			}
			return showHistory(cmd.OutOrStdout(), db, opts, start, end)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.recent, "recent", 0, "show the N most recent events")
	flags.IntVar(&opts.largest, "largest", 0, "show the N largest deletions")
	flags.StringVar(&opts.action, "action", "", "show events of one action (DELETE, DRY_RUN, NOT_FOUND, ERROR, SKIP)")
	flags.StringVar(&opts.run, "run", "", "show every event of one run id")
	flags.StringVar(&opts.path, "path", "", "show events whose path matches a SQL LIKE pattern, bare text matches anywhere")
	flags.StringVar(&opts.since, "since", "", "show events at or after this date (YYYY-MM-DD or RFC3339)")
	flags.StringVar(&opts.until, "until", "", "show events up to this date, a bare date includes the whole day")
	flags.BoolVar(&opts.stats, "stats", false, "show aggregated statistics")
	flags.BoolVar(&opts.dbStats, "db-stats", false, "show database size and record counts")
	flags.IntVar(&opts.days, "days", 30, "number of days covered by --stats")
	flags.IntVar(&opts.prune, "prune", 0, "delete records older than N days and compact the database")
	flags.BoolVar(&opts.json, "json", false, "output JSON")
	return cmd
}

func showHistory(w io.Writer, db *database.DeletionDB, opts historyOptions, start, end time.Time) error {
	if opts.dbStats {
		stats, err := db.GetDatabaseStats()
		if err != nil {
			return fmt.Errorf("failed to get database statistics: %w", err)
		}
		if opts.json {
			return writeJSON(w, stats)
		}
		printDatabaseStats(w, stats)
		return nil
	}
	if opts.stats {
		stats, err := db.GetDeletionStats(opts.days)
		if err != nil {
			return fmt.Errorf("failed to get statistics: %w", err)
		}
		if opts.json {
			return writeJSON(w, stats)
		}
		printStats(w, stats, opts.days)
		return nil
	}

	var (
		records []database.DeletionRecord
		err     error
	)
	switch {
	case opts.run != "":
		records, err = db.GetDeletionsByRun(opts.run)
	case opts.path != "":
		records, err = db.GetDeletionsByPath(likePattern(opts.path))
	case !end.IsZero():
		records, err = db.GetDeletionsByDateRange(start, end)
	case opts.largest > 0:
		records, err = db.GetLargestDeletions(opts.largest)
	case opts.action != "":
		limit := opts.recent
		if limit <= 0 {
			limit = defaultRecent
		}
		records, err = db.GetDeletionsByAction(strings.ToUpper(opts.action), limit)
	default:
		limit := opts.recent
		if limit <= 0 {
			limit = defaultRecent
		}
		records, err = db.GetRecentDeletions(limit)
	}
	if err != nil {
		return fmt.Errorf("failed to query history: %w", err)
	}

	if opts.json {
		if records == nil {
			records = []database.DeletionRecord{}
		}
		return writeJSON(w, records)
	}
	printRecords(w, records)
	return nil
}

func pruneHistory(w io.Writer, db *database.DeletionDB, days int) error {
	n, err := db.DeleteOldRecords(days)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	if err := db.Vacuum(); err != nil {
		return fmt.Errorf("failed to compact database: %w", err)
	}
	fmt.Fprintf(w, "Pruned %d records older than %d days\n", n, days)
	return nil
}

// likePattern matches text anywhere in the path unless it already carries
// LIKE wildcards.
func likePattern(p string) string {
	if strings.ContainsAny(p, "%_") {
		return p
	}
	return "%" + p + "%"
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, layout == "2006-01-02", nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q, want YYYY-MM-DD or RFC3339", s)
}

// parseRange turns --since/--until into a time range. Both ends are zero
// when neither flag is set.
func parseRange(since, until string, now time.Time) (start, end time.Time, err error) {
	if since == "" && until == "" {
		return time.Time{}, time.Time{}, nil
	}
	if since != "" {
		if start, _, err = parseDate(since); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--since: %w", err)
		}
	}
	end = now
	if until != "" {
		var dateOnly bool
		if end, dateOnly, err = parseDate(until); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--until: %w", err)
		}
		if dateOnly {
			end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--until %s is before --since %s", until, since)
	}
	return start, end, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printRecords(w io.Writer, records []database.DeletionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"When", "Action", "Size", "Reason", "Path"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, r := range records {
		path := r.Path
		if r.ErrorMessage != "" {
			path += " (" + r.ErrorMessage + ")"
		}
		table.Append([]string{
			humanize.Time(r.Timestamp),
			r.Action,
			diskspace.Format(uint64(max(r.Size, 0))),
			r.Reason,
			path,
		})
	}
	table.Render()
}

func printStats(w io.Writer, stats *database.DeletionStats, days int) {
	fmt.Fprintf(w, "Deletion Statistics (Last %d days)\n", days)
	fmt.Fprintf(w, "Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Runs:             %d\n", stats.TotalRuns)
	fmt.Fprintf(w, "Total Deletions:  %d\n", stats.TotalDeletions)
	fmt.Fprintf(w, "Not Found:        %d\n", stats.TotalNotFound)
	fmt.Fprintf(w, "Skipped Dirs:     %d\n", stats.TotalSkipped)
	fmt.Fprintf(w, "Total Errors:     %d\n", stats.TotalErrors)
	fmt.Fprintf(w, "Space Freed:      %s\n", diskspace.Format(uint64(max(stats.TotalSpaceFreed, 0))))

	printCounts(w, "By Reason:", stats.ByReason)
	printCounts(w, "By Action:", stats.ByAction)
}

func printDatabaseStats(w io.Writer, stats map[string]interface{}) {
	fmt.Fprintf(w, "Records:        %v\n", stats["total_records"])
	fmt.Fprintf(w, "Runs:           %v\n", stats["total_runs"])
	if size, ok := stats["database_size_bytes"].(int64); ok {
		fmt.Fprintf(w, "Database Size:  %s\n", diskspace.Format(uint64(max(size, 0))))
	}
	if t, ok := stats["oldest_record"].(time.Time); ok {
		fmt.Fprintf(w, "Oldest Record:  %s\n", t.Format(time.RFC3339))
	}
	if t, ok := stats["newest_record"].(time.Time); ok {
		fmt.Fprintf(w, "Newest Record:  %s\n", t.Format(time.RFC3339))
	}
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "\n%s\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-15s %d\n", k, counts[k])
	}
}
