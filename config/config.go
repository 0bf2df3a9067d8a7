package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port       int
	DataDir    string
	ScratchDir string

	RedisAddr string

	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	S3UseSSL     bool
	S3PublicBase string

	AudioPollInterval  time.Duration
	AudioMaxConcurrent int
	StaleJobTimeout    time.Duration

	VideoConcurrency   int
	VideoJobsPerMinute int
	VideoMaxRetry      int
}

func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8090"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required")
	}

	pollInterval, err := getDuration("AUDIO_POLL_INTERVAL", "15s")
	if err != nil {
		return nil, err
	}
	staleTimeout, err := getDuration("STALE_JOB_TIMEOUT", "30m")
	if err != nil {
		return nil, err
	}

	maxConcurrent, err := getInt("AUDIO_MAX_CONCURRENT", "2")
	if err != nil {
		return nil, err
	}
	videoConcurrency, err := getInt("VIDEO_CONCURRENCY", "4")
	if err != nil {
		return nil, err
	}
	videoJobsPerMinute, err := getInt("VIDEO_JOBS_PER_MINUTE", "6")
	if err != nil {
		return nil, err
	}
	videoMaxRetry, err := getInt("VIDEO_MAX_RETRY", "3")
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:       port,
		DataDir:    getEnv("DATA_DIR", "/data"),
		ScratchDir: getEnv("SCRATCH_DIR", os.TempDir()),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		S3Endpoint:   getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:  accessKey,
		S3SecretKey:  secretKey,
		S3Bucket:     getEnv("S3_BUCKET", "media"),
		S3UseSSL:     os.Getenv("S3_USE_SSL") == "true",
		S3PublicBase: getEnv("S3_PUBLIC_BASE_URL", "http://localhost:9000/media"),

		AudioPollInterval:  pollInterval,
		AudioMaxConcurrent: maxConcurrent,
		StaleJobTimeout:    staleTimeout,

		VideoConcurrency:   videoConcurrency,
		VideoJobsPerMinute: videoJobsPerMinute,
		VideoMaxRetry:      videoMaxRetry,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key, defaultValue string) (int, error) {
	v, err := strconv.Atoi(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key, defaultValue string) (time.Duration, error) {
	v, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
