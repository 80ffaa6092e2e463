package cleanup

import (
	"time"

	"cleanstore/internal/scan"
)

// RemoveListed deletes each explicitly named file that exists, wherever it
// lives and whatever it is called. A missing file produces a NOT_FOUND
// event; it is not an error.
func (c *Cleaner) RemoveListed(files []string) {
	for _, path := range files {
		info, exists, err := c.probe(path)
		cand := scan.Candidate{Path: path, Reason: scan.ReasonExplicit}

		switch {
		case err != nil:
			c.fail(cand, err)
		case !exists:
			c.counts.NotFound++
			c.metrics.MissingFilesTotal().Inc()
			c.logger.Info("Explicit file not found", "path", path)
			c.reporter.Report(Event{Kind: EventNotFound, Path: path, Reason: scan.ReasonExplicit, Time: time.Now()})
		case info.IsDir():
			c.fail(cand, ErrIsDirectory)
		default:
			cand.Size = info.Size()
			c.Delete(cand)
		}
	}
}
