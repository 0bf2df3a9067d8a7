package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/wavehaus/transcode/config"
	"github.com/wavehaus/transcode/internal/adapter/broker"
	"github.com/wavehaus/transcode/internal/adapter/engine/ffmpeg"
	"github.com/wavehaus/transcode/internal/adapter/fetch"
	HTTPAdapter "github.com/wavehaus/transcode/internal/adapter/http"
	"github.com/wavehaus/transcode/internal/adapter/objectstore"
	sqlitestore "github.com/wavehaus/transcode/internal/adapter/storage/sqlite"
	"github.com/wavehaus/transcode/internal/domain"
	"github.com/wavehaus/transcode/internal/infrastructure/logger"
	"github.com/wavehaus/transcode/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		os.Exit(1)
	}

	if err := domain.ValidateCatalog(); err != nil {
		logger.Error.Printf("format catalog invalid: %v", err)
		os.Exit(1)
	}

	logger.Info.Printf("starting transcoded on port %d, data=%s", cfg.Port, cfg.DataDir)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Error.Printf("failed to create data directory: %v", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.ScratchDir, 0755); err != nil {
		logger.Error.Printf("failed to create scratch directory: %v", err)
		os.Exit(1)
	}

	store, err := sqlitestore.NewStore(cfg.DataDir)
	if err != nil {
		logger.Error.Printf("failed to create store: %v", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	jobStore := sqlitestore.NewJobStore(store)
	contentStore := sqlitestore.NewContentStore(store)

	objects, err := objectstore.New(context.Background(), objectstore.Config{
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		UseSSL:        cfg.S3UseSSL,
		PublicBaseURL: cfg.S3PublicBase,
	})
	if err != nil {
		logger.Error.Printf("failed to connect object store: %v", err)
		os.Exit(1)
	}

	progress, err := broker.NewProgressTracker(cfg.RedisAddr)
	if err != nil {
		logger.Error.Printf("failed to connect redis: %v", err)
		os.Exit(1)
	}
	defer func() { _ = progress.Close() }()

	enqueuer := broker.NewEnqueuer(cfg.RedisAddr, cfg.VideoMaxRetry)
	defer func() { _ = enqueuer.Close() }()

	fetcher := fetch.NewHTTPFetcher()
	engine, err := ffmpeg.NewEngine(fetcher)
	if err != nil {
		logger.Error.Printf("ffmpeg not available: %v", err)
		os.Exit(1)
	}

	audioWorker := service.NewAudioWorker(jobStore, contentStore, engine, objects, service.AudioWorkerConfig{
		ScratchDir:    cfg.ScratchDir,
		PollInterval:  cfg.AudioPollInterval,
		MaxConcurrent: cfg.AudioMaxConcurrent,
		StaleAfter:    cfg.StaleJobTimeout,
	})
	audioWorker.Start()

	videoWorker := service.NewVideoWorker(contentStore, engine, objects, fetcher, progress, service.VideoWorkerConfig{
		ScratchDir:    cfg.ScratchDir,
		JobsPerMinute: cfg.VideoJobsPerMinute,
	})

	asynqSrv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: cfg.VideoConcurrency,
			Queues:      map[string]int{broker.QueueVideo: 1},
		},
	)
	mux := asynq.NewServeMux()
	mux.HandleFunc(broker.TaskTypeVideoTranscode, videoWorker.HandleTranscode)
	go func() {
		if err := asynqSrv.Run(mux); err != nil {
			logger.Error.Printf("broker consumer failed: %v", err)
			os.Exit(1)
		}
	}()

	producer := service.NewProducer(jobStore, contentStore, enqueuer)
	statusSvc := service.NewStatusService(jobStore)
	server := HTTPAdapter.NewServer(statusSvc, producer, audioWorker)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info.Printf("received %s, shutting down", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}

		// Stop claiming new audio jobs; in-flight transcodes finish on
		// their own goroutines.
		audioWorker.Stop()

		asynqSrv.Shutdown()

		logger.Info.Printf("shutdown complete")
	}()

	logger.Info.Printf("server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error.Printf("server failed: %v", err)
		os.Exit(1)
	}
}
