package port

import "context"

// ProgressReporter records fractional video pipeline progress (0-100) at
// stage boundaries for observability. Reporting failures never fail a job.
type ProgressReporter interface {
	Report(ctx context.Context, contentID, stage string, percent int) error
}

// VideoEnqueuer submits a video transcode job to the broker. Submission is
// deduplicated on content ID; re-submitting for in-flight content reports
// created=false instead of queuing a duplicate.
type VideoEnqueuer interface {
	EnqueueTranscode(ctx context.Context, contentID string) (created bool, err error)
}
