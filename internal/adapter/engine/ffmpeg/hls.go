package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wavehaus/transcode/internal/domain"
)

// HLSVariant produces one segmented rendition. Keyframes are forced on the
// segment interval so every segment starts on an IDR frame.
func (e *Engine) HLSVariant(ctx context.Context, source string, r domain.Rendition, outputDir string) error {
	playlist := filepath.Join(outputDir, r.Name+".m3u8")
	segments := filepath.Join(outputDir, r.Name+"_%03d.ts")

	args := []string{
		"-i", source,
		"-vf", fmt.Sprintf("scale=%d:%d", r.Width, r.Height),
		"-c:v", "libx264",
		"-b:v", r.Bitrate,
		"-c:a", "aac",
		"-b:a", "128k",
		"-g", "48",
		"-sc_threshold", "0",
		"-force_key_frames", fmt.Sprintf("expr:gte(t,n_forced*%d)", domain.HLSSegmentSeconds),
		"-f", "hls",
		"-hls_time", fmt.Sprintf("%d", domain.HLSSegmentSeconds),
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", segments,
		"-y", playlist,
	}
	if err := e.run(ctx, args); err != nil {
		return &domain.EngineError{Err: fmt.Errorf("rendition %s: %w", r.Name, err)}
	}
	return nil
}

// WriteMasterPlaylist assembles master.m3u8 referencing every rendition
// playlist with its declared bandwidth and resolution.
func (e *Engine) WriteMasterPlaylist(renditions []domain.Rendition, dir string) (string, error) {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	for _, r := range renditions {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d\n", r.Bandwidth, r.Width, r.Height)
		b.WriteString(r.Name + ".m3u8\n")
	}

	path := filepath.Join(dir, "master.m3u8")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("write master playlist: %w", err)
	}
	return path, nil
}
