package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wavehaus/transcode/internal/domain"
	"github.com/wavehaus/transcode/internal/port"
)

type fakeJobStore struct {
	mu         sync.Mutex
	claimable  []*domain.TranscodeJob
	listable   []*domain.TranscodeJob
	processing []string
	done       map[string]string
	failed     map[string]string
	skipped    map[string]string
	resetCalls int
	claimCalls int
}

func newFakeJobStore(jobs ...*domain.TranscodeJob) *fakeJobStore {
	return &fakeJobStore{
		claimable: jobs,
		done:      make(map[string]string),
		failed:    make(map[string]string),
		skipped:   make(map[string]string),
	}
}

func (f *fakeJobStore) CreateJobs(ctx context.Context, contentID string, formats []domain.FormatKey) ([]*domain.TranscodeJob, error) {
	jobs := make([]*domain.TranscodeJob, 0, len(formats))
	for i, format := range formats {
		jobs = append(jobs, &domain.TranscodeJob{
			ID:          fmt.Sprintf("job-%d", i),
			ContentID:   contentID,
			Format:      format,
			Status:      domain.JobStatusQueued,
			MaxAttempts: domain.DefaultMaxAttempts,
		})
	}
	return jobs, nil
}

func (f *fakeJobStore) ClaimNext(ctx context.Context, limit int) ([]*domain.TranscodeJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claimCalls++
	if limit > len(f.claimable) {
		limit = len(f.claimable)
	}
	claimed := f.claimable[:limit]
	f.claimable = f.claimable[limit:]
	return claimed, nil
}

func (f *fakeJobStore) MarkProcessing(ctx context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processing = append(f.processing, jobID)
	return nil
}

func (f *fakeJobStore) MarkDone(ctx context.Context, jobID, resultKey, resultURL string, sizeBytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.done[jobID] = resultKey
	return nil
}

func (f *fakeJobStore) MarkError(ctx context.Context, jobID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[jobID] = message
	return nil
}

func (f *fakeJobStore) MarkSkipped(ctx context.Context, jobID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skipped[jobID] = reason
	return nil
}

func (f *fakeJobStore) ListByContent(ctx context.Context, contentID string) ([]*domain.TranscodeJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []*domain.TranscodeJob
	for _, j := range f.listable {
		if j.ContentID == contentID {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}

func (f *fakeJobStore) Summary(ctx context.Context, contentID string) (map[domain.JobStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summary := make(map[domain.JobStatus]int)
	for _, j := range f.listable {
		if j.ContentID == contentID {
			summary[j.Status]++
		}
	}
	return summary, nil
}

func (f *fakeJobStore) ResetStale(ctx context.Context, olderThan time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalls++
	return 0, nil
}

func (f *fakeJobStore) doneCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.done)
}

func (f *fakeJobStore) failedMessage(jobID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failed[jobID]
}

func (f *fakeJobStore) skippedReason(jobID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.skipped[jobID]
}

func (f *fakeJobStore) totalClaims() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.claimCalls
}

var _ port.JobStore = (*fakeJobStore)(nil)

type videoUpdate struct {
	status      domain.VideoStatus
	manifestURL string
	thumbURL    string
	errMsg      string
}

type fakeContentStore struct {
	mu       sync.Mutex
	contents map[string]*domain.Content
	updates  []videoUpdate
}

func newFakeContentStore(contents ...*domain.Content) *fakeContentStore {
	m := make(map[string]*domain.Content)
	for _, c := range contents {
		m[c.ID] = c
	}
	return &fakeContentStore{contents: m}
}

func (f *fakeContentStore) SaveContent(ctx context.Context, c *domain.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents[c.ID] = c
	return nil
}

func (f *fakeContentStore) GetContent(ctx context.Context, id string) (*domain.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeContentStore) UpdateVideo(ctx context.Context, id string, status domain.VideoStatus, manifestURL, thumbURL, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, videoUpdate{status, manifestURL, thumbURL, errMsg})
	return nil
}

func (f *fakeContentStore) lastUpdate() (videoUpdate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		return videoUpdate{}, false
	}
	return f.updates[len(f.updates)-1], true
}

var _ port.ContentStore = (*fakeContentStore)(nil)

type fakeEngine struct {
	mu             sync.Mutex
	transcodeErr   error
	transcodeCalls []domain.FormatKey
	hlsErr         error
	hlsCalls       []string
	thumbErr       error
}

func (f *fakeEngine) Transcode(ctx context.Context, source string, format domain.FormatKey, outputDir string) (*domain.TranscodeResult, error) {
	f.mu.Lock()
	f.transcodeCalls = append(f.transcodeCalls, format)
	f.mu.Unlock()
	if f.transcodeErr != nil {
		return nil, f.transcodeErr
	}

	profile, _ := domain.ProfileFor(format)
	out := filepath.Join(outputDir, string(format)+"_fake"+profile.Extension)
	if err := os.WriteFile(out, []byte("encoded"), 0644); err != nil {
		return nil, err
	}
	return &domain.TranscodeResult{
		Format:     format,
		OutputPath: out,
		SizeBytes:  7,
		Duration:   time.Millisecond,
	}, nil
}

func (f *fakeEngine) HLSVariant(ctx context.Context, source string, r domain.Rendition, outputDir string) error {
	f.mu.Lock()
	f.hlsCalls = append(f.hlsCalls, r.Name)
	f.mu.Unlock()
	if f.hlsErr != nil {
		return f.hlsErr
	}
	if err := os.WriteFile(filepath.Join(outputDir, r.Name+".m3u8"), []byte("#EXTM3U\n"), 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outputDir, r.Name+"_000.ts"), []byte("segment"), 0644)
}

func (f *fakeEngine) Thumbnail(ctx context.Context, source, outputPath string) error {
	if f.thumbErr != nil {
		return f.thumbErr
	}
	return os.WriteFile(outputPath, []byte("jpeg"), 0644)
}

func (f *fakeEngine) WriteMasterPlaylist(renditions []domain.Rendition, dir string) (string, error) {
	path := filepath.Join(dir, "master.m3u8")
	return path, os.WriteFile(path, []byte("#EXTM3U\n"), 0644)
}

func (f *fakeEngine) transcodeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transcodeCalls)
}

var _ port.TranscodeEngine = (*fakeEngine)(nil)

type putRecord struct {
	key          string
	contentType  string
	cacheControl string
}

type fakeObjectStore struct {
	mu     sync.Mutex
	putErr error
	puts   []putRecord
}

func (f *fakeObjectStore) Put(ctx context.Context, key string, data []byte, contentType string, opts port.PutOptions) (port.ObjectRef, error) {
	if f.putErr != nil {
		return port.ObjectRef{}, f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, putRecord{key: key, contentType: contentType, cacheControl: opts.CacheControl})
	return port.ObjectRef{Key: key, URL: "https://objects.test/" + key}, nil
}

func (f *fakeObjectStore) Get(ctx context.Context, key string) (port.ObjectRef, error) {
	return port.ObjectRef{Key: key, URL: "https://objects.test/" + key}, nil
}

func (f *fakeObjectStore) putKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.puts))
	for _, p := range f.puts {
		keys = append(keys, p.key)
	}
	return keys
}

var _ port.ObjectStore = (*fakeObjectStore)(nil)

type fakeFetcher struct {
	err error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, destDir string) (string, func(), error) {
	if f.err != nil {
		return "", func() {}, f.err
	}
	path := filepath.Join(destDir, "source_input.mp4")
	if err := os.WriteFile(path, []byte("raw video"), 0644); err != nil {
		return "", func() {}, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}

var _ port.SourceFetcher = (*fakeFetcher)(nil)

type progressRecord struct {
	stage   string
	percent int
}

type fakeProgress struct {
	mu      sync.Mutex
	records []progressRecord
}

func (f *fakeProgress) Report(ctx context.Context, contentID, stage string, percent int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, progressRecord{stage: stage, percent: percent})
	return nil
}

func (f *fakeProgress) stages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r.stage)
	}
	return out
}

var _ port.ProgressReporter = (*fakeProgress)(nil)

type fakeEnqueuer struct {
	mu      sync.Mutex
	created bool
	err     error
	calls   int
}

func (f *fakeEnqueuer) EnqueueTranscode(ctx context.Context, contentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.created, f.err
}

var _ port.VideoEnqueuer = (*fakeEnqueuer)(nil)
