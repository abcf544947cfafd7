// Package media uploads post images to the media host and reports back a
// durable URL.
package media

import (
	"context"
	"errors"
)

const DefaultFolder = "quick-facts"

// MaxImageBytes bounds a single decoded image.
const MaxImageBytes = 10 << 20

var (
	ErrMissingFile     = errors.New("missing `file` in request body")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTypeMismatch    = errors.New("image content does not match its declared type")
	ErrNotConfigured   = errors.New("media host is not configured")
)

// InputError marks an upload request that can never succeed as sent.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }
func (e *InputError) Unwrap() error { return e.Err }

type UploadInput struct {
	Data []byte
	// ContentType is the type the client declared, if any.
	ContentType string
	Folder      string
	PublicID    string
	Tags        []string
}

type UploadResult struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
	Bytes    int64  `json:"bytes"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
}

type Host interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
}
