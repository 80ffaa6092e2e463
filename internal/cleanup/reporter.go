package cleanup

import (
	"sync"
	"time"

	"cleanstore/internal/scan"
)

// EventKind classifies a deletion event. The values double as the action
// column of the deletion history.
type EventKind string

const (
	EventDeleted    EventKind = "DELETE"
	EventDryRun     EventKind = "DRY_RUN"
	EventNotFound   EventKind = "NOT_FOUND"
	EventFailed     EventKind = "ERROR"
	EventSkippedDir EventKind = "SKIP"
)

// Event describes one thing that happened to one path during a run.
type Event struct {
	Kind   EventKind
	Path   string
	Size   int64
	Reason scan.Reason
	Err    error
	Time   time.Time
}

// Reclaimed reports whether the event's size was added to the total
func (e Event) Reclaimed() bool {
	return e.Kind == EventDeleted || e.Kind == EventDryRun
}

// Warning reports whether the event should be surfaced as a warning
func (e Event) Warning() bool {
	return e.Kind == EventFailed || e.Kind == EventSkippedDir || e.Kind == EventNotFound
}

// Reporter receives deletion events as data. Formatting, suppression and
// storage are up to the implementation.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) {
	f(e)
}

// Multi fans every event out to each non-nil reporter, in order.
func Multi(reporters ...Reporter) Reporter {
	out := make(multiReporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

type multiReporter []Reporter

func (m multiReporter) Report(e Event) {
	for _, r := range m {
		r.Report(e)
	}
}

// Recorder keeps every event in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Paths returns the paths of recorded events of the given kind
func (r *Recorder) Paths(kind EventKind) []string {
	var out []string
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e.Path)
		}
	}
	return out
}
