package models

import "time"

// JobStatus enumerates pipeline job states.
//
// Transitions are pending → running → done|error. Done and error are
// terminal; there is no retry or cancellation. A worker that dies mid-run
// leaves its job running forever (known limitation).
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobError   JobStatus = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobDone || s == JobError
}

// PipelineJob is one asynchronous, persisted invocation of a pipeline stage.
type PipelineJob struct {
	ID         string            `json:"id"`
	Step       string            `json:"step"`
	Status     JobStatus         `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Progress   float64           `json:"progress"`
	Message    string            `json:"message,omitempty"`
	Payload    map[string]any    `json:"payload,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
