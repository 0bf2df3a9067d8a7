package service

import (
	"context"
	"fmt"

	"github.com/wavehaus/transcode/internal/domain"
	"github.com/wavehaus/transcode/internal/infrastructure/logger"
	"github.com/wavehaus/transcode/internal/port"
)

// Producer is the entry point the upload handler calls after depositing a
// source file: it fans audio work out into job rows and hands video work to
// the broker.
type Producer struct {
	jobs     port.JobStore
	contents port.ContentStore
	video    port.VideoEnqueuer
}

func NewProducer(jobs port.JobStore, contents port.ContentStore, video port.VideoEnqueuer) *Producer {
	return &Producer{jobs: jobs, contents: contents, video: video}
}

// SubmitAudio creates one job per catalog format. Safe to call again for the
// same content: completed work is returned unchanged, dead jobs are revived.
func (p *Producer) SubmitAudio(ctx context.Context, contentID string) ([]*domain.TranscodeJob, error) {
	if _, err := p.contents.GetContent(ctx, contentID); err != nil {
		return nil, fmt.Errorf("submit audio %s: %w", contentID, err)
	}

	jobs, err := p.jobs.CreateJobs(ctx, contentID, domain.AllFormatKeys())
	if err != nil {
		return nil, err
	}
	logger.Info.Printf("content %s: %d audio jobs submitted", contentID, len(jobs))
	return jobs, nil
}

// SubmitVideo enqueues the video pipeline on the broker, deduplicated on
// content ID.
func (p *Producer) SubmitVideo(ctx context.Context, contentID string) error {
	if _, err := p.contents.GetContent(ctx, contentID); err != nil {
		return fmt.Errorf("submit video %s: %w", contentID, err)
	}

	created, err := p.video.EnqueueTranscode(ctx, contentID)
	if err != nil {
		return err
	}
	if !created {
		logger.Info.Printf("content %s: video job already enqueued, skipping", contentID)
		return nil
	}
	logger.Info.Printf("content %s: video job enqueued", contentID)
	return nil
}
