package storage

import (
	"context"
	"errors"
	"io"
)

type Object struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
}

type Storage interface {
	Put(ctx context.Context, obj Object) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// StatusCode returns the HTTP status reported by the storage backend for
// err, or 0 when the error carries none.
func StatusCode(err error) int {
	var withStatus interface{ HTTPStatusCode() int }
	if errors.As(err, &withStatus) {
		return withStatus.HTTPStatusCode()
	}
	return 0
}
