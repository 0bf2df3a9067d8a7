package port

import "context"

type ObjectRef struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// PutOptions carries the cache-control policy. Choosing it is the caller's
// decision: immutable hashed assets get long-lived caching, regenerated
// manifests get short caching.
type PutOptions struct {
	CacheControl string
}

// ObjectStore has no retry logic; transient failures surface as
// domain.StorageError for the caller to handle.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string, opts PutOptions) (ObjectRef, error)
	Get(ctx context.Context, key string) (ObjectRef, error)
}
