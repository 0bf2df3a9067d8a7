package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/wavehaus/transcode/internal/adapter/broker"
	"github.com/wavehaus/transcode/internal/domain"
	"github.com/wavehaus/transcode/internal/infrastructure/logger"
	"github.com/wavehaus/transcode/internal/port"
	"golang.org/x/time/rate"
)

const (
	defaultJobsPerMinute = 6

	// Manifests are re-generated when content is re-transcoded; keep edge
	// caches on a short leash. Segments are immutable.
	cacheControlManifest = "public, max-age=60"

	// Stored failure reasons are capped; ffmpeg stderr can run to kilobytes.
	maxErrorMessageLen = 500
)

type VideoWorkerConfig struct {
	ScratchDir    string
	JobsPerMinute int
}

// VideoWorker consumes video transcode tasks from the broker and runs the
// multi-stage HLS pipeline. It keeps no attempt counter: at-least-once
// delivery, retry backoff and parallelism belong to the broker. A stage
// failure fails the whole job; a master manifest referencing incomplete
// renditions is worse than no manifest.
type VideoWorker struct {
	contents port.ContentStore
	engine   port.TranscodeEngine
	objects  port.ObjectStore
	fetcher  port.SourceFetcher
	progress port.ProgressReporter
	limiter  *rate.Limiter
	cfg      VideoWorkerConfig
}

func NewVideoWorker(contents port.ContentStore, engine port.TranscodeEngine, objects port.ObjectStore, fetcher port.SourceFetcher, progress port.ProgressReporter, cfg VideoWorkerConfig) *VideoWorker {
	if cfg.JobsPerMinute <= 0 {
		cfg.JobsPerMinute = defaultJobsPerMinute
	}
	return &VideoWorker{
		contents: contents,
		engine:   engine,
		objects:  objects,
		fetcher:  fetcher,
		progress: progress,
		limiter:  rate.NewLimiter(rate.Limit(float64(cfg.JobsPerMinute)/60.0), 1),
		cfg:      cfg,
	}
}

// HandleTranscode is the asynq handler for video transcode tasks.
func (w *VideoWorker) HandleTranscode(ctx context.Context, task *asynq.Task) error {
	payload, err := broker.ParseVideoTranscodePayload(task)
	if err != nil {
		// A malformed payload will never become valid on retry.
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	// Protect the shared engine from thundering-herd CPU contention.
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	if err := w.process(ctx, payload.ContentID); err != nil {
		msg := logger.Truncate(err.Error(), maxErrorMessageLen)
		if updErr := w.contents.UpdateVideo(ctx, payload.ContentID, domain.VideoStatusFailed, "", "", msg); updErr != nil {
			logger.Error.Printf("video %s: record failure: %v", payload.ContentID, updErr)
		}
		logger.Error.Printf("video %s failed: %s", payload.ContentID, logger.SanitizeForLog(err.Error()))
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		// Re-raise so the broker's retry/backoff policy governs resubmission.
		return err
	}
	return nil
}

func (w *VideoWorker) process(ctx context.Context, contentID string) error {
	content, err := w.contents.GetContent(ctx, contentID)
	if err != nil {
		return fmt.Errorf("get content: %w", err)
	}

	w.report(ctx, contentID, "accepted", 0)

	scratch := filepath.Join(w.cfg.ScratchDir, "video-"+contentID+"-"+uuid.NewString()[:8])
	if err := os.MkdirAll(scratch, 0755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	if err := w.contents.UpdateVideo(ctx, contentID, domain.VideoStatusProcessing, "", "", ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	w.report(ctx, contentID, "download", 10)
	sourcePath, cleanup, err := w.fetcher.Fetch(ctx, content.SourceURL, scratch)
	if err != nil {
		return err
	}
	defer cleanup()

	renditions := domain.VideoRenditions()
	for i, r := range renditions {
		if err := w.engine.HLSVariant(ctx, sourcePath, r, scratch); err != nil {
			return err
		}
		w.report(ctx, contentID, "transcode "+r.Name, 15+(i+1)*50/len(renditions))
	}

	masterPath, err := w.engine.WriteMasterPlaylist(renditions, scratch)
	if err != nil {
		return err
	}
	w.report(ctx, contentID, "manifest", 75)

	thumbPath := filepath.Join(scratch, "thumb.jpg")
	if err := w.engine.Thumbnail(ctx, sourcePath, thumbPath); err != nil {
		return err
	}
	w.report(ctx, contentID, "thumbnail", 85)

	manifestURL, thumbURL, err := w.uploadArtifacts(ctx, contentID, scratch, sourcePath, masterPath, thumbPath)
	if err != nil {
		return err
	}
	w.report(ctx, contentID, "upload", 95)

	if err := w.contents.UpdateVideo(ctx, contentID, domain.VideoStatusReady, manifestURL, thumbURL, ""); err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}
	w.report(ctx, contentID, "done", 100)
	logger.Info.Printf("video %s: ready (%s)", contentID, manifestURL)
	return nil
}

// uploadArtifacts pushes every pipeline output (segments, rendition
// playlists, master manifest, thumbnail) under the content's prefix and
// returns the master manifest and thumbnail URLs.
func (w *VideoWorker) uploadArtifacts(ctx context.Context, contentID, scratch, sourcePath, masterPath, thumbPath string) (string, string, error) {
	entries, err := os.ReadDir(scratch)
	if err != nil {
		return "", "", fmt.Errorf("read scratch dir: %w", err)
	}

	var manifestURL, thumbURL string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		local := filepath.Join(scratch, entry.Name())
		if local == sourcePath {
			continue
		}

		data, err := os.ReadFile(local)
		if err != nil {
			return "", "", fmt.Errorf("read artifact %s: %w", entry.Name(), err)
		}

		key := path.Join("video", contentID, entry.Name())
		ref, err := w.objects.Put(ctx, key, data, artifactContentType(entry.Name()), port.PutOptions{
			CacheControl: artifactCacheControl(entry.Name()),
		})
		if err != nil {
			return "", "", err
		}

		switch local {
		case masterPath:
			manifestURL = ref.URL
		case thumbPath:
			thumbURL = ref.URL
		}
	}

	if manifestURL == "" {
		return "", "", errors.New("master manifest was not uploaded")
	}
	return manifestURL, thumbURL, nil
}

func artifactContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

func artifactCacheControl(name string) string {
	if strings.ToLower(filepath.Ext(name)) == ".m3u8" {
		return cacheControlManifest
	}
	return cacheControlImmutable
}

func (w *VideoWorker) report(ctx context.Context, contentID, stage string, percent int) {
	if w.progress == nil {
		return
	}
	if err := w.progress.Report(ctx, contentID, stage, percent); err != nil {
		logger.Warn.Printf("video %s: report progress %q: %v", contentID, stage, err)
	}
}
