package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wavehaus/transcode/internal/domain"
	"github.com/wavehaus/transcode/internal/port"
)

var (
	ErrEmptyPath   = errors.New("path is empty")
	ErrInvalidPath = errors.New("path contains invalid characters")
)

// stderrTailBytes caps how much engine output is carried in errors.
const stderrTailBytes = 2048

type Engine struct {
	ffmpegPath string
	fetcher    port.SourceFetcher
}

// NewEngine locates the ffmpeg binary on PATH and wires the source fetcher
// used for remote inputs.
func NewEngine(fetcher port.SourceFetcher) (*Engine, error) {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg binary not found: %w", err)
	}
	return &Engine{ffmpegPath: path, fetcher: fetcher}, nil
}

func (e *Engine) Transcode(ctx context.Context, source string, format domain.FormatKey, outputDir string) (*domain.TranscodeResult, error) {
	profile, ok := domain.ProfileFor(format)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", format)
	}
	if err := validatePath(source); err != nil {
		return nil, fmt.Errorf("invalid source path: %w", err)
	}
	if err := validatePath(outputDir); err != nil {
		return nil, fmt.Errorf("invalid output dir: %w", err)
	}

	local := source
	if isRemote(source) {
		path, cleanup, err := e.fetcher.Fetch(ctx, source, outputDir)
		if err != nil {
			return nil, &domain.EngineError{Format: format, Err: err}
		}
		defer cleanup()
		local = path
	}

	outputPath := filepath.Join(outputDir, outputName(profile))
	args := buildAudioArgs(local, profile, outputPath)

	start := time.Now()
	if err := e.run(ctx, args); err != nil {
		return nil, &domain.EngineError{Format: format, Err: err}
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, &domain.EngineError{Format: format, Err: fmt.Errorf("output missing: %w", err)}
	}

	return &domain.TranscodeResult{
		Format:     format,
		OutputPath: outputPath,
		SizeBytes:  info.Size(),
		Duration:   time.Since(start),
	}, nil
}

func (e *Engine) Thumbnail(ctx context.Context, source, outputPath string) error {
	args := []string{
		"-ss", fmt.Sprintf("%d", domain.ThumbnailOffsetSeconds),
		"-i", source,
		"-vframes", "1",
		"-f", "image2",
		"-y", outputPath,
	}
	if err := e.run(ctx, args); err != nil {
		return &domain.EngineError{Err: fmt.Errorf("thumbnail: %w", err)}
	}
	return nil
}

func (e *Engine) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, stderrTail(output))
	}
	return nil
}

func buildAudioArgs(inputPath string, profile domain.AudioProfile, outputPath string) []string {
	args := []string{
		"-i", inputPath,
		"-c:a", profile.Codec,
		"-vn",
	}
	args = append(args, profile.Flags...)
	args = append(args, "-y", outputPath)
	return args
}

// outputName is timestamp + random suffix so concurrent invocations for the
// same content never collide.
func outputName(profile domain.AudioProfile) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s%s", profile.Key, time.Now().UnixNano(), suffix, profile.Extension)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func stderrTail(output []byte) string {
	if len(output) <= stderrTailBytes {
		return string(output)
	}
	return "..." + string(output[len(output)-stderrTailBytes:])
}

func validatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	return nil
}

var _ port.TranscodeEngine = (*Engine)(nil)
