package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/wavehaus/transcode/internal/port"
)

const (
	// TaskTypeVideoTranscode is the asynq task type for the full video
	// pipeline (renditions + manifest + thumbnail).
	TaskTypeVideoTranscode = "video:transcode"

	// QueueVideo isolates video work from any future task types.
	QueueVideo = "video"

	taskTimeout = 30 * time.Minute
)

type VideoTranscodePayload struct {
	ContentID string `json:"content_id"`
}

func NewVideoTranscodeTask(contentID string) (*asynq.Task, error) {
	payload, err := json.Marshal(VideoTranscodePayload{ContentID: contentID})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TaskTypeVideoTranscode, payload), nil
}

func ParseVideoTranscodePayload(t *asynq.Task) (VideoTranscodePayload, error) {
	var p VideoTranscodePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("unmarshal %s payload: %w", t.Type(), err)
	}
	if p.ContentID == "" {
		return p, errors.New("payload missing content_id")
	}
	return p, nil
}

// Enqueuer submits video jobs to the broker. The task ID equals the content
// ID, so re-submitting in-flight content is a no-op rather than a duplicate;
// the broker owns retry/backoff, so no attempt counter lives here.
type Enqueuer struct {
	client   *asynq.Client
	maxRetry int
}

func NewEnqueuer(redisAddr string, maxRetry int) *Enqueuer {
	return &Enqueuer{
		client:   asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
		maxRetry: maxRetry,
	}
}

func (e *Enqueuer) EnqueueTranscode(ctx context.Context, contentID string) (bool, error) {
	task, err := NewVideoTranscodeTask(contentID)
	if err != nil {
		return false, err
	}

	_, err = e.client.EnqueueContext(ctx, task,
		asynq.TaskID(contentID),
		asynq.Queue(QueueVideo),
		asynq.MaxRetry(e.maxRetry),
		asynq.Timeout(taskTimeout),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("enqueue video transcode for %s: %w", contentID, err)
	}
	return true, nil
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}

var _ port.VideoEnqueuer = (*Enqueuer)(nil)
