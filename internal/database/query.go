package database

import (
	"database/sql"
	"time"
)

const selectColumns = `
	SELECT id, timestamp, run_id, action, path, file_name, size, reason, error_message
	FROM deletions
`

// GetRecentDeletions returns the N most recent events
func (d *DeletionDB) GetRecentDeletions(limit int) ([]DeletionRecord, error) {
	return d.queryDeletions(selectColumns+`ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
}

// GetDeletionsByRun returns every event of one run in insertion order
func (d *DeletionDB) GetDeletionsByRun(runID string) ([]DeletionRecord, error) {
	return d.queryDeletions(selectColumns+`WHERE run_id = ? ORDER BY id`, runID)
}

// GetDeletionsByDateRange returns events within a time range
func (d *DeletionDB) GetDeletionsByDateRange(start, end time.Time) ([]DeletionRecord, error) {
	return d.queryDeletions(selectColumns+`WHERE timestamp BETWEEN ? AND ? ORDER BY timestamp DESC`, start, end)
}

// GetDeletionsByPath returns events matching a LIKE pattern
func (d *DeletionDB) GetDeletionsByPath(pathPattern string) ([]DeletionRecord, error) {
	return d.queryDeletions(selectColumns+`WHERE path LIKE ? ORDER BY timestamp DESC`, pathPattern)
}

// GetDeletionsByAction returns the N most recent events of one action
func (d *DeletionDB) GetDeletionsByAction(action string, limit int) ([]DeletionRecord, error) {
	return d.queryDeletions(selectColumns+`WHERE action = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, action, limit)
}

// GetLargestDeletions returns the N largest deletions by size
func (d *DeletionDB) GetLargestDeletions(limit int) ([]DeletionRecord, error) {
	return d.queryDeletions(selectColumns+`WHERE action = 'DELETE' ORDER BY size DESC LIMIT ?`, limit)
}

// GetTotalSpaceFreed returns total bytes freed in a time range
func (d *DeletionDB) GetTotalSpaceFreed(start, end time.Time) (int64, error) {
	query := `
	SELECT COALESCE(SUM(size), 0)
	FROM deletions
	WHERE action = 'DELETE' AND timestamp BETWEEN ? AND ?
	`

	var total int64
	err := d.db.QueryRow(query, start, end).Scan(&total)
	return total, err
}

// GetDeletionCountByAction returns count of events grouped by action since a point in time
func (d *DeletionDB) GetDeletionCountByAction(since time.Time) (map[string]int, error) {
	return d.countBy(`SELECT action, COUNT(*) FROM deletions WHERE timestamp >= ? GROUP BY action`, since)
}

// GetDeletionCountByReason returns count of deletions grouped by reason since a point in time
func (d *DeletionDB) GetDeletionCountByReason(since time.Time) (map[string]int, error) {
	return d.countBy(`SELECT reason, COUNT(*) FROM deletions WHERE action = 'DELETE' AND timestamp >= ? GROUP BY reason`, since)
}

func (d *DeletionDB) countBy(query string, args ...interface{}) (map[string]int, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key sql.NullString
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key.String] = count
	}

	return counts, rows.Err()
}

// DeletionStats holds aggregated statistics
type DeletionStats struct {
	TotalRuns       int            `json:"total_runs"`
	TotalDeletions  int            `json:"total_deletions"`
	TotalNotFound   int            `json:"total_not_found"`
	TotalSkipped    int            `json:"total_skipped"`
	TotalErrors     int            `json:"total_errors"`
	TotalSpaceFreed int64          `json:"total_space_freed"`
	ByReason        map[string]int `json:"by_reason"`
	ByAction        map[string]int `json:"by_action"`
	StartDate       time.Time      `json:"start_date"`
	EndDate         time.Time      `json:"end_date"`
}

// GetDeletionStats returns comprehensive statistics for the last days days
func (d *DeletionDB) GetDeletionStats(days int) (*DeletionStats, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	stats := &DeletionStats{
		StartDate: since,
		EndDate:   now,
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(DISTINCT run_id),
			COUNT(CASE WHEN action = 'DELETE' THEN 1 END),
			COUNT(CASE WHEN action = 'NOT_FOUND' THEN 1 END),
			COUNT(CASE WHEN action = 'SKIP' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END)
		FROM deletions
		WHERE timestamp >= ?
	`, since).Scan(&stats.TotalRuns, &stats.TotalDeletions, &stats.TotalNotFound, &stats.TotalSkipped, &stats.TotalErrors)
	if err != nil {
		return nil, err
	}

	stats.TotalSpaceFreed, err = d.GetTotalSpaceFreed(since, now)
	if err != nil {
		return nil, err
	}
	stats.ByReason, err = d.GetDeletionCountByReason(since)
	if err != nil {
		return nil, err
	}
	stats.ByAction, err = d.GetDeletionCountByAction(since)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteOldRecords removes records older than specified days
func (d *DeletionDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	result, err := d.db.Exec(`DELETE FROM deletions WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// queryDeletions is a helper function to execute queries and scan results
func (d *DeletionDB) queryDeletions(query string, args ...interface{}) ([]DeletionRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []DeletionRecord
	for rows.Next() {
		var r DeletionRecord
		var fileName, reason, errMsg sql.NullString

		err := rows.Scan(
			&r.ID, &r.Timestamp, &r.RunID, &r.Action, &r.Path,
			&fileName, &r.Size, &reason, &errMsg,
		)
		if err != nil {
			return nil, err
		}
		r.FileName = fileName.String
		r.Reason = reason.String
		r.ErrorMessage = errMsg.String

		records = append(records, r)
	}

	return records, rows.Err()
}
