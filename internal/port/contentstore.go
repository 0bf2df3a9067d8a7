package port

import (
	"context"

	"github.com/wavehaus/transcode/internal/domain"
)

type ContentStore interface {
	SaveContent(ctx context.Context, c *domain.Content) error
	GetContent(ctx context.Context, id string) (*domain.Content, error)

	// UpdateVideo writes the video pipeline outcome back onto the content
	// record: manifest/thumbnail URLs on success, a truncated error message
	// on failure.
	UpdateVideo(ctx context.Context, id string, status domain.VideoStatus, manifestURL, thumbURL, errMsg string) error
}
