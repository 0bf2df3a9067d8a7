package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavehaus/transcode/internal/domain"
)

func TestProducer_SubmitAudio(t *testing.T) {
	content := domain.NewContent(domain.MediaKindAudio, "single", "https://cdn.test/master.wav")
	p := NewProducer(newFakeJobStore(), newFakeContentStore(content), &fakeEnqueuer{})

	jobs, err := p.SubmitAudio(context.Background(), content.ID)
	require.NoError(t, err)
	assert.Len(t, jobs, 5, "one job per catalog format")
}

func TestProducer_SubmitAudio_UnknownContent(t *testing.T) {
	p := NewProducer(newFakeJobStore(), newFakeContentStore(), &fakeEnqueuer{})

	_, err := p.SubmitAudio(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProducer_SubmitVideo(t *testing.T) {
	content := domain.NewContent(domain.MediaKindVideo, "clip", "https://cdn.test/clip.mp4")
	enq := &fakeEnqueuer{created: true}
	p := NewProducer(newFakeJobStore(), newFakeContentStore(content), enq)

	require.NoError(t, p.SubmitVideo(context.Background(), content.ID))
	assert.Equal(t, 1, enq.calls)
}

func TestProducer_SubmitVideo_DeduplicatedIsNotAnError(t *testing.T) {
	content := domain.NewContent(domain.MediaKindVideo, "clip", "https://cdn.test/clip.mp4")
	enq := &fakeEnqueuer{created: false}
	p := NewProducer(newFakeJobStore(), newFakeContentStore(content), enq)

	assert.NoError(t, p.SubmitVideo(context.Background(), content.ID))
}
