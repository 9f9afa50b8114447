package storage

import "context"

// ObjectStore persists media bytes under a key and returns a stable public
// URL. Writes are a blocking I/O boundary; failures come back as plain errors
// for the media service to classify.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}
