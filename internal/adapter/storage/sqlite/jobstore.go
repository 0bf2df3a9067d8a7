package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wavehaus/transcode/internal/domain"
	"github.com/wavehaus/transcode/internal/port"
)

type JobStore struct {
	db *sql.DB
}

func NewJobStore(store *Store) *JobStore {
	return &JobStore{db: store.db}
}

const jobColumns = `id, content_id, format, status, attempts, max_attempts,
	result_key, result_url, result_size_bytes, error_message,
	started_at, completed_at, created_at, updated_at`

func (s *JobStore) CreateJobs(ctx context.Context, contentID string, formats []domain.FormatKey) ([]*domain.TranscodeJob, error) {
	jobs := make([]*domain.TranscodeJob, 0, len(formats))
	for _, format := range formats {
		job, err := s.createJob(ctx, contentID, format)
		if err != nil {
			return nil, fmt.Errorf("create job %s/%s: %w", contentID, format, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (s *JobStore) createJob(ctx context.Context, contentID string, format domain.FormatKey) (*domain.TranscodeJob, error) {
	existing, err := s.getByContentFormat(ctx, contentID, format)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()

	if existing != nil {
		switch existing.Status {
		case domain.JobStatusError:
			// Re-submission revives a dead job from scratch.
			_, err := s.db.ExecContext(ctx, `
				UPDATE transcode_jobs
				SET status = ?, attempts = 0, error_message = '',
				    started_at = NULL, completed_at = NULL, updated_at = ?
				WHERE id = ?`,
				domain.JobStatusQueued, now, existing.ID)
			if err != nil {
				return nil, err
			}
			return s.getByID(ctx, existing.ID)
		default:
			// done/skipped are final; queued/processing must stay unique.
			return existing, nil
		}
	}

	job := &domain.TranscodeJob{
		ID:          uuid.NewString(),
		ContentID:   contentID,
		Format:      format,
		Status:      domain.JobStatusQueued,
		MaxAttempts: domain.DefaultMaxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transcode_jobs (id, content_id, format, status, attempts, max_attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		job.ID, job.ContentID, job.Format, job.Status, job.MaxAttempts, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobStore) ClaimNext(ctx context.Context, limit int) ([]*domain.TranscodeJob, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM transcode_jobs
		WHERE status = ? AND attempts < max_attempts
		ORDER BY created_at ASC
		LIMIT ?`,
		domain.JobStatusQueued, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.TranscodeJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *JobStore) MarkProcessing(ctx context.Context, jobID string) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE transcode_jobs
		SET status = ?, attempts = attempts + 1, started_at = ?, updated_at = ?
		WHERE id = ?`,
		domain.JobStatusProcessing, now, now, jobID)
	if err != nil {
		return err
	}
	return oneRow(res)
}

func (s *JobStore) MarkDone(ctx context.Context, jobID, resultKey, resultURL string, sizeBytes int64) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE transcode_jobs
		SET status = ?, result_key = ?, result_url = ?, result_size_bytes = ?,
		    error_message = '', completed_at = ?, updated_at = ?
		WHERE id = ?`,
		domain.JobStatusDone, resultKey, resultURL, sizeBytes, now, now, jobID)
	if err != nil {
		return err
	}
	return oneRow(res)
}

func (s *JobStore) MarkError(ctx context.Context, jobID, message string) error {
	job, err := s.getByID(ctx, jobID)
	if err != nil {
		return err
	}

	now := time.Now()
	status := domain.JobStatusQueued
	var completedAt any
	if job.AttemptsExhausted() {
		status = domain.JobStatusError
		completedAt = now
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transcode_jobs
		SET status = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		status, message, completedAt, now, jobID)
	if err != nil {
		return err
	}
	return oneRow(res)
}

func (s *JobStore) MarkSkipped(ctx context.Context, jobID, reason string) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE transcode_jobs
		SET status = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		domain.JobStatusSkipped, reason, now, now, jobID)
	if err != nil {
		return err
	}
	return oneRow(res)
}

func (s *JobStore) ListByContent(ctx context.Context, contentID string) ([]*domain.TranscodeJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM transcode_jobs
		WHERE content_id = ?
		ORDER BY created_at ASC`,
		contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.TranscodeJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *JobStore) Summary(ctx context.Context, contentID string) (map[domain.JobStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM transcode_jobs
		WHERE content_id = ?
		GROUP BY status`,
		contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := make(map[domain.JobStatus]int)
	for rows.Next() {
		var status domain.JobStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		summary[status] = count
	}
	return summary, rows.Err()
}

func (s *JobStore) ResetStale(ctx context.Context, olderThan time.Duration) (int, error) {
	now := time.Now()
	cutoff := now.Add(-olderThan)

	// A crash during the final attempt must still end terminal: requeuing
	// an exhausted row would leave it unclaimable and stuck non-terminal.
	pinned, err := s.db.ExecContext(ctx, `
		UPDATE transcode_jobs
		SET status = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE status = ? AND started_at < ? AND attempts >= max_attempts`,
		domain.JobStatusError, "stale processing, attempts exhausted", now, now,
		domain.JobStatusProcessing, cutoff)
	if err != nil {
		return 0, err
	}
	np, err := pinned.RowsAffected()
	if err != nil {
		return 0, err
	}

	requeued, err := s.db.ExecContext(ctx, `
		UPDATE transcode_jobs
		SET status = ?, updated_at = ?
		WHERE status = ? AND started_at < ?`,
		domain.JobStatusQueued, now, domain.JobStatusProcessing, cutoff)
	if err != nil {
		return int(np), err
	}
	nq, err := requeued.RowsAffected()
	return int(np + nq), err
}

func (s *JobStore) getByID(ctx context.Context, id string) (*domain.TranscodeJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM transcode_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return job, err
}

func (s *JobStore) getByContentFormat(ctx context.Context, contentID string, format domain.FormatKey) (*domain.TranscodeJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM transcode_jobs WHERE content_id = ? AND format = ?`, contentID, format)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return job, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.TranscodeJob, error) {
	var j domain.TranscodeJob
	err := row.Scan(
		&j.ID, &j.ContentID, &j.Format, &j.Status, &j.Attempts, &j.MaxAttempts,
		&j.ResultKey, &j.ResultURL, &j.ResultSize, &j.ErrorMessage,
		&j.StartedAt, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ port.JobStore = (*JobStore)(nil)
