package audit

import "time"

type Action string

const (
	ActionAnalyze Action = "analyze"
	ActionDelete  Action = "delete"
)

// Event is one entry of the audit trail. Events are appended in
// chronological order and never rewritten.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	RecordID  string    `json:"record_id"`
	Emotion   string    `json:"emotion,omitempty"`
	IsCrisis  bool      `json:"is_crisis,omitempty"`
	AlertSent bool      `json:"alert_sent,omitempty"`
}

// Recorder abstracts persistence of audit events.
// Load should return events in chronological order.
// Implementations must be safe for concurrent use.
type Recorder interface {
	Append(event Event) error
	Load() ([]Event, error)
}
