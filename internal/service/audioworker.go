package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wavehaus/transcode/internal/domain"
	"github.com/wavehaus/transcode/internal/infrastructure/logger"
	"github.com/wavehaus/transcode/internal/port"
)

const (
	defaultPollInterval  = 15 * time.Second
	defaultMaxConcurrent = 2
	defaultStaleAfter    = 30 * time.Minute

	// Delivery files are content-addressed; once written they never change.
	cacheControlImmutable = "public, max-age=31536000, immutable"
)

type AudioWorkerConfig struct {
	ScratchDir    string
	PollInterval  time.Duration
	MaxConcurrent int
	StaleAfter    time.Duration
}

// AudioWorker polls the job store on a fixed interval and drives the engine
// for claimed audio jobs. Concurrency is bounded by an in-memory counter;
// the poll loop never waits on job completion. Each instance owns its own
// lifecycle state, so independent workers can coexist in one process.
type AudioWorker struct {
	jobs     port.JobStore
	contents port.ContentStore
	engine   port.TranscodeEngine
	objects  port.ObjectStore
	cfg      AudioWorkerConfig

	mu      sync.Mutex
	running bool
	active  int
	stop    chan struct{}
}

type WorkerStatus struct {
	Running    bool `json:"running"`
	ActiveJobs int  `json:"active_jobs"`
}

func NewAudioWorker(jobs port.JobStore, contents port.ContentStore, engine port.TranscodeEngine, objects port.ObjectStore, cfg AudioWorkerConfig) *AudioWorker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = defaultStaleAfter
	}
	return &AudioWorker{
		jobs:     jobs,
		contents: contents,
		engine:   engine,
		objects:  objects,
		cfg:      cfg,
	}
}

// Start launches the poll loop. Calling it on a running worker is a no-op.
func (w *AudioWorker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stop = make(chan struct{})
	stop := w.stop
	w.mu.Unlock()

	go w.run(stop)
	logger.Info.Printf("audio worker started (poll=%s, maxConcurrent=%d)", w.cfg.PollInterval, w.cfg.MaxConcurrent)
}

// Stop prevents new polls. In-flight jobs run to completion; there is no
// cancellation once a job is claimed.
func (w *AudioWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stop)
	logger.Info.Printf("audio worker stopped")
}

func (w *AudioWorker) Status() WorkerStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WorkerStatus{Running: w.running, ActiveJobs: w.active}
}

func (w *AudioWorker) run(stop <-chan struct{}) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.poll()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *AudioWorker) poll() {
	ctx := context.Background()

	if n, err := w.jobs.ResetStale(ctx, w.cfg.StaleAfter); err != nil {
		logger.Error.Printf("reset stale jobs: %v", err)
	} else if n > 0 {
		logger.Warn.Printf("requeued %d stale processing jobs", n)
	}

	w.mu.Lock()
	available := w.cfg.MaxConcurrent - w.active
	w.mu.Unlock()
	if available <= 0 {
		return
	}

	claimed, err := w.jobs.ClaimNext(ctx, available)
	if err != nil {
		logger.Error.Printf("claim jobs: %v", err)
		return
	}

	for _, job := range claimed {
		w.mu.Lock()
		w.active++
		w.mu.Unlock()

		// Fire and forget: the slot is released in the goroutine's cleanup,
		// never on the poll path.
		go func(job *domain.TranscodeJob) {
			defer func() {
				w.mu.Lock()
				w.active--
				w.mu.Unlock()
			}()
			w.process(job)
		}(job)
	}
}

func (w *AudioWorker) process(job *domain.TranscodeJob) {
	// Claimed jobs run to completion regardless of worker shutdown.
	ctx := context.Background()

	if err := w.jobs.MarkProcessing(ctx, job.ID); err != nil {
		logger.Error.Printf("job %s: mark processing: %v", job.ID, err)
		return
	}
	logger.Info.Printf("job %s: processing (content=%s, format=%s, attempt=%d)", job.ID, job.ContentID, job.Format, job.Attempts+1)

	if err := w.transcodeAndUpload(ctx, job); err != nil {
		logger.Error.Printf("job %s failed: %s", job.ID, logger.SanitizeForLog(err.Error()))
		if markErr := w.jobs.MarkError(ctx, job.ID, err.Error()); markErr != nil {
			logger.Error.Printf("job %s: mark error: %v", job.ID, markErr)
		}
		return
	}
}

func (w *AudioWorker) transcodeAndUpload(ctx context.Context, job *domain.TranscodeJob) error {
	content, err := w.contents.GetContent(ctx, job.ContentID)
	if err != nil {
		return fmt.Errorf("get content: %w", err)
	}

	profile, ok := domain.ProfileFor(job.Format)
	if !ok {
		return fmt.Errorf("unknown format: %s", job.Format)
	}

	// Already in the target encoding: re-encoding would only lose quality.
	if strings.EqualFold(content.SourceExt, profile.Extension) {
		reason := fmt.Sprintf("source already %s", profile.Extension)
		logger.Info.Printf("job %s: skipped (%s)", job.ID, reason)
		return w.jobs.MarkSkipped(ctx, job.ID, reason)
	}

	result, err := w.engine.Transcode(ctx, content.SourceURL, job.Format, w.cfg.ScratchDir)
	if err != nil {
		return err
	}
	// The local artifact is scratch; remove it whether or not upload works.
	defer func() { _ = os.Remove(result.OutputPath) }()

	data, err := os.ReadFile(result.OutputPath)
	if err != nil {
		return fmt.Errorf("read output: %w", err)
	}

	key := path.Join("audio", content.ID, filepath.Base(result.OutputPath))
	ref, err := w.objects.Put(ctx, key, data, profile.ContentType, port.PutOptions{CacheControl: cacheControlImmutable})
	if err != nil {
		return err
	}

	if err := w.jobs.MarkDone(ctx, job.ID, ref.Key, ref.URL, result.SizeBytes); err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	logger.Info.Printf("job %s: done (%s, %d bytes, took %s)", job.ID, ref.Key, result.SizeBytes, result.Duration)
	return nil
}
