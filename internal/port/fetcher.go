package port

import "context"

// SourceFetcher retrieves a remote master file into local scratch space.
// The returned cleanup removes the downloaded file and is safe to call more
// than once.
type SourceFetcher interface {
	Fetch(ctx context.Context, url, destDir string) (path string, cleanup func(), err error)
}
