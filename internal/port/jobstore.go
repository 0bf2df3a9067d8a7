package port

import (
	"context"
	"time"

	"github.com/wavehaus/transcode/internal/domain"
)

// JobStore is the single source of truth for transcode jobs. Both workers
// mutate it through single-row operations scoped by job ID; a job is claimed
// and owned by exactly one worker invocation for its lifetime.
type JobStore interface {
	// CreateJobs fans out one row per format, idempotently: a terminal
	// done/skipped row is returned unchanged, an error row is reset to
	// queued with attempts=0, anything else gets a fresh queued row.
	CreateJobs(ctx context.Context, contentID string, formats []domain.FormatKey) ([]*domain.TranscodeJob, error)

	// ClaimNext returns up to limit queued jobs with attempts remaining,
	// oldest first, without mutating them.
	ClaimNext(ctx context.Context, limit int) ([]*domain.TranscodeJob, error)

	// MarkProcessing increments attempts and stamps startedAt.
	MarkProcessing(ctx context.Context, jobID string) error

	// MarkDone records terminal success and clears any error message.
	MarkDone(ctx context.Context, jobID, resultKey, resultURL string, sizeBytes int64) error

	// MarkError reverts the job to queued for retry, or pins it to the
	// terminal error state once attempts are exhausted.
	MarkError(ctx context.Context, jobID, message string) error

	// MarkSkipped records terminal skip (source already in target format).
	MarkSkipped(ctx context.Context, jobID, reason string) error

	ListByContent(ctx context.Context, contentID string) ([]*domain.TranscodeJob, error)
	Summary(ctx context.Context, contentID string) (map[domain.JobStatus]int, error)

	// ResetStale requeues processing rows older than the cutoff, preserving
	// their attempt count. Returns the number of rows requeued.
	ResetStale(ctx context.Context, olderThan time.Duration) (int, error)
}
