package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wavehaus/transcode/internal/port"
)

const progressTTL = 24 * time.Hour

// ProgressTracker records pipeline stage progress in a Redis hash keyed by
// content ID, with a TTL so abandoned entries clean themselves up.
type ProgressTracker struct {
	rdb *redis.Client
}

func NewProgressTracker(redisAddr string) (*ProgressTracker, error) {
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &ProgressTracker{rdb: rdb}, nil
}

func (t *ProgressTracker) Report(ctx context.Context, contentID, stage string, percent int) error {
	key := progressKey(contentID)
	pipe := t.rdb.Pipeline()
	pipe.HSet(ctx, key,
		"stage", stage,
		"percent", percent,
		"updated_at", time.Now().Format(time.RFC3339),
	)
	pipe.Expire(ctx, key, progressTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (t *ProgressTracker) Close() error {
	return t.rdb.Close()
}

func progressKey(contentID string) string {
	return "video:progress:" + contentID
}

var _ port.ProgressReporter = (*ProgressTracker)(nil)
