package schemas

import "time"

// EventKind enumerates the notifications a macro run produces.
type EventKind string

const (
	// EventStart is emitted before a command body runs.
	EventStart EventKind = "start"
	// EventDoing carries a human readable detail line from a command.
	EventDoing EventKind = "doing"
	// EventProgress carries a 0..100 completion percentage.
	EventProgress EventKind = "progress"
	// EventFinish is emitted after a command body returns.
	EventFinish EventKind = "finish"
	// EventRunStart and EventRunFinish bracket a whole run. Detail holds the
	// final status on EventRunFinish.
	EventRunStart  EventKind = "run_start"
	EventRunFinish EventKind = "run_finish"
)

// AllEventKinds lists every kind, in emission order for a single command.
var AllEventKinds = []EventKind{
	EventRunStart, EventStart, EventDoing, EventProgress, EventFinish, EventRunFinish,
}

// Event is a single notification. Line identifies the emitting node; it is
// zero for run level events.
type Event struct {
	ID        string    `json:"id,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	Kind      EventKind `json:"kind"`
	Line      int       `json:"line"`
	Command   string    `json:"command,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Percent   int       `json:"percent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
