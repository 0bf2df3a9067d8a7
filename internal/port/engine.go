package port

import (
	"context"

	"github.com/wavehaus/transcode/internal/domain"
)

// TranscodeEngine wraps one external engine invocation per call. Remote
// sources are fetched to scratch first and the scratch copy is always
// removed, success or failure.
type TranscodeEngine interface {
	// Transcode produces one output file in outputDir for the given catalog
	// format. The output name is collision-resistant so concurrent calls for
	// the same content never clash.
	Transcode(ctx context.Context, source string, format domain.FormatKey, outputDir string) (*domain.TranscodeResult, error)

	// HLSVariant produces a segmented, keyframe-aligned rendition playlist
	// plus its segments in outputDir.
	HLSVariant(ctx context.Context, source string, rendition domain.Rendition, outputDir string) error

	// Thumbnail extracts a single still frame at a fixed offset.
	Thumbnail(ctx context.Context, source, outputPath string) error

	// WriteMasterPlaylist assembles the master manifest referencing every
	// rendition with bandwidth/resolution metadata. Returns the manifest path.
	WriteMasterPlaylist(renditions []domain.Rendition, dir string) (string, error)
}
