package ports

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by GetObject when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	// For gdrive this is the Drive file id; every other provider echoes the key.
	ObjectKey string
	Size      int64
}

// StorageProvider holds generated template artifacts (localfs, gdrive, redis, postgres).
type StorageProvider interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
	GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
