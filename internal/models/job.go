package models

import "time"

// JobStatus is the lifecycle state of a report job.
type JobStatus string

// Job statuses. Complete and Failed are terminal; no transitions leave
// them.
const (
	JobStatusPending      JobStatus = "pending"
	JobStatusProcessing   JobStatus = "processing"
	JobStatusExporting    JobStatus = "exporting"
	JobStatusSendingEmail JobStatus = "sending_email"
	JobStatusComplete     JobStatus = "complete"
	JobStatusFailed       JobStatus = "failed"
)

// Terminal reports whether a status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusComplete || s == JobStatusFailed
}

// Job is a durable report-job record. Only the owning worker mutates
// it; it is the sole entity shared across concurrent readers/writers.
type Job struct {
	ID          string       `json:"id"`
	Params      ReportParams `json:"params"`
	Status      JobStatus    `json:"status"`
	Progress    int          `json:"progress"` // 0-100
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	ResultPath  string       `json:"result_path,omitempty"`
	Error       string       `json:"error,omitempty"`

	// EmailError records a failed notification; it never changes a
	// complete job's terminal status.
	EmailError string `json:"email_error,omitempty"`
}
