package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/wavehaus/transcode/internal/domain"
	"github.com/wavehaus/transcode/internal/port"
)

const (
	maxRetries     = 2
	initialBackoff = 500 * time.Millisecond
)

// HTTPFetcher downloads remote master files into scratch space. Network
// errors and 5xx responses are retried with fibonacci backoff; 4xx responses
// fail immediately.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL, destDir string) (string, func(), error) {
	dest := filepath.Join(destDir, localName(rawURL))

	backoff := retry.WithMaxRetries(maxRetries, retry.NewFibonacci(initialBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return f.download(ctx, rawURL, dest)
	})
	if err != nil {
		return "", func() {}, err
	}

	cleanup := func() { _ = os.Remove(dest) }
	return dest, cleanup, nil
}

func (f *HTTPFetcher) download(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &domain.FetchError{URL: rawURL, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return retry.RetryableError(&domain.FetchError{URL: rawURL, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fetchErr := &domain.FetchError{URL: rawURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
		if resp.StatusCode >= 500 {
			return retry.RetryableError(fetchErr)
		}
		return fetchErr
	}

	out, err := os.Create(dest)
	if err != nil {
		return &domain.FetchError{URL: rawURL, Err: err}
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return retry.RetryableError(&domain.FetchError{URL: rawURL, Err: err})
	}
	return out.Close()
}

// localName keeps the source extension and prefixes a random id so two
// fetches into the same scratch dir never collide.
func localName(rawURL string) string {
	base := "source"
	if u, err := url.Parse(rawURL); err == nil {
		if b := path.Base(u.Path); b != "" && b != "/" && b != "." {
			base = b
		}
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return id + "_" + base
}

var _ port.SourceFetcher = (*HTTPFetcher)(nil)
