// Package journal records upload jobs and their per-file outcomes.
package journal

import (
	"context"
	"time"
)

// ServiceName is the service registry key of the persistent Store.
const ServiceName = "journal.store"

// Status is the lifecycle state of a job.
type Status string

// Job statuses.
const (
	StatusRunning     Status = "running"
	StatusDone        Status = "done"
	StatusFailed      Status = "failed"
	StatusInterrupted Status = "interrupted"
)

// Outcome is the result of handling one file.
type Outcome string

// File outcomes.
const (
	OutcomeUploaded Outcome = "uploaded"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

// Job is one upload invocation.
type Job struct {
	ID                string    `json:"id"`
	ChatID            int64     `json:"chat_id"`
	Path              string    `json:"path"`
	Status            Status    `json:"status"`
	ProgressMessageID int       `json:"progress_message_id,omitempty"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at,omitzero"`
	Discovered        int       `json:"discovered"`
	Uploaded          int       `json:"uploaded"`
	Skipped           int       `json:"skipped"`
	Failed            int       `json:"failed"`
	Bytes             uint64    `json:"bytes"`
	Error             string    `json:"error,omitempty"`
}

// File is the outcome of one file of a job.
type File struct {
	JobID     string    `json:"job_id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      uint64    `json:"size"`
	Outcome   Outcome   `json:"outcome"`
	MessageID int       `json:"message_id,omitempty"`
	Link      string    `json:"link,omitempty"`
	At        time.Time `json:"at"`
}

// Store persists jobs. Implementations must be safe for concurrent use.
type Store interface {
	// CreateJob inserts a new job.
	CreateJob(ctx context.Context, job Job) error

	// UpdateJob overwrites the mutable fields of an existing job.
	UpdateJob(ctx context.Context, job Job) error

	// RecordFile appends a file outcome to a job.
	RecordFile(ctx context.Context, file File) error

	// Job returns one job or ErrJobNotFound.
	Job(ctx context.Context, id string) (Job, error)

	// Files returns the file outcomes of a job in insertion order.
	Files(ctx context.Context, jobID string) ([]File, error)

	// Recent returns up to limit jobs, newest first.
	Recent(ctx context.Context, limit int) ([]Job, error)

	// MarkInterrupted flags every running job as interrupted and returns
	// the affected jobs.
	MarkInterrupted(ctx context.Context, at time.Time) ([]Job, error)

	// Prune deletes finished jobs (and their files) that ended before cutoff.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}
