package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is fatal for the call that hit it; it is never retried.
var ErrNotFound = errors.New("resource not found")

// FetchError means the remote source was unreachable or answered non-200.
// Retryable.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EngineError means the external transcoding engine exited non-zero or could
// not be invoked. Retryable up to the job's max attempts.
type EngineError struct {
	Format FormatKey
	Err    error
}

func (e *EngineError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("engine %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("engine: %v", e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// StorageError means an object store upload/download failed. The adapter does
// not retry; callers decide.
type StorageError struct {
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
