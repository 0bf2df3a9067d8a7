package service

import (
	"context"

	"github.com/wavehaus/transcode/internal/domain"
	"github.com/wavehaus/transcode/internal/port"
)

// StatusService backs the read-only processing-status endpoint.
type StatusService struct {
	jobs port.JobStore
}

func NewStatusService(jobs port.JobStore) *StatusService {
	return &StatusService{jobs: jobs}
}

type ContentStatus struct {
	ContentID string                   `json:"content_id"`
	Jobs      []JobView                `json:"jobs"`
	Summary   map[domain.JobStatus]int `json:"summary"`
}

type JobView struct {
	ID           string           `json:"id"`
	Format       domain.FormatKey `json:"format"`
	Status       domain.JobStatus `json:"status"`
	Attempts     int              `json:"attempts"`
	ResultURL    string           `json:"result_url,omitempty"`
	ResultSize   int64            `json:"result_size_bytes,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
}

func (s *StatusService) ContentStatus(ctx context.Context, contentID string) (*ContentStatus, error) {
	jobs, err := s.jobs.ListByContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, domain.ErrNotFound
	}

	summary, err := s.jobs.Summary(ctx, contentID)
	if err != nil {
		return nil, err
	}

	views := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, JobView{
			ID:           j.ID,
			Format:       j.Format,
			Status:       j.Status,
			Attempts:     j.Attempts,
			ResultURL:    j.ResultURL,
			ResultSize:   j.ResultSize,
			ErrorMessage: j.ErrorMessage,
		})
	}

	return &ContentStatus{ContentID: contentID, Jobs: views, Summary: summary}, nil
}
