package domain

import (
	"database/sql"
	"time"
)

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusError      JobStatus = "error"
	JobStatusSkipped    JobStatus = "skipped"
)

// DefaultMaxAttempts bounds automatic retries per job.
const DefaultMaxAttempts = 3

// TranscodeJob is one row per (content, format). Rows are never hard-deleted;
// they are the audit trail of what was produced and from what source.
type TranscodeJob struct {
	ID           string
	ContentID    string
	Format       FormatKey
	Status       JobStatus
	Attempts     int
	MaxAttempts  int
	ResultKey    string
	ResultURL    string
	ResultSize   int64
	ErrorMessage string
	StartedAt    sql.NullTime
	CompletedAt  sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Terminal reports whether no further automatic transition can occur.
// An error row is only ever written after attempts have been exhausted.
func (j *TranscodeJob) Terminal() bool {
	switch j.Status {
	case JobStatusDone, JobStatusError, JobStatusSkipped:
		return true
	}
	return false
}

func (j *TranscodeJob) AttemptsExhausted() bool {
	return j.Attempts >= j.MaxAttempts
}

// TranscodeResult is produced by the engine adapter and discarded after the
// worker has uploaded the output and updated the job row.
type TranscodeResult struct {
	Format     FormatKey
	OutputPath string
	SizeBytes  int64
	Duration   time.Duration
}
