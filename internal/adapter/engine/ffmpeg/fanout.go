package ffmpeg

import (
	"context"
	"sync"

	"github.com/wavehaus/transcode/internal/domain"
)

// FormatError pairs a catalog format with the failure it produced during a
// fan-out run.
type FormatError struct {
	Format domain.FormatKey
	Err    error
}

func (fe FormatError) Error() string {
	return string(fe.Format) + ": " + fe.Err.Error()
}

// TranscodeAllFormats runs the engine for every catalog format concurrently
// and settles all of them: one format failing never cancels the others.
// Results and errors come back in catalog order.
func (e *Engine) TranscodeAllFormats(ctx context.Context, sourceURL, outputDir string) ([]*domain.TranscodeResult, []FormatError) {
	profiles := domain.AudioProfiles()
	results := make([]*domain.TranscodeResult, len(profiles))
	errs := make([]error, len(profiles))

	var wg sync.WaitGroup
	for i, profile := range profiles {
		wg.Add(1)
		go func(i int, key domain.FormatKey) {
			defer wg.Done()
			results[i], errs[i] = e.Transcode(ctx, sourceURL, key, outputDir)
		}(i, profile.Key)
	}
	wg.Wait()

	var ok []*domain.TranscodeResult
	var failed []FormatError
	for i, profile := range profiles {
		if errs[i] != nil {
			failed = append(failed, FormatError{Format: profile.Key, Err: errs[i]})
			continue
		}
		ok = append(ok, results[i])
	}
	return ok, failed
}
