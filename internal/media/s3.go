package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/jeremyjsx/quickfacts/internal/storage"
)

var _ Host = (*S3Host)(nil)

type S3Config struct {
	Bucket        string
	Region        string
	PublicBaseURL string
	DefaultFolder string
}

// S3Host keeps uploaded images in an S3 bucket. Objects are written to
// <folder>/<publicId>.<ext>, replacing any previous upload with that id in
// any format.
type S3Host struct {
	store  storage.Storage
	cfg    S3Config
	logger *slog.Logger
}

func NewS3Host(store storage.Storage, cfg S3Config, logger *slog.Logger) *S3Host {
	if cfg.DefaultFolder == "" {
		cfg.DefaultFolder = DefaultFolder
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Host{store: store, cfg: cfg, logger: logger}
}

func (h *S3Host) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	contentType, ext, width, height, err := inspect(in.Data, in.ContentType)
	if err != nil {
		return nil, err
	}
	if h.store == nil || h.cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	folder, err := cleanPath(in.Folder, h.cfg.DefaultFolder)
	if err != nil {
		return nil, err
	}
	reused := strings.TrimSpace(in.PublicID) != ""
	publicID, err := cleanPath(in.PublicID, uuid.NewString())
	if err != nil {
		return nil, err
	}
	publicID = path.Join(folder, publicID)
	key := publicID + "." + ext

	meta := map[string]string{}
	if len(in.Tags) > 0 {
		meta["tags"] = strings.Join(in.Tags, ",")
	}
	err = h.store.Put(ctx, storage.Object{
		Key:         key,
		Body:        bytes.NewReader(in.Data),
		Size:        int64(len(in.Data)),
		ContentType: contentType,
		Metadata:    meta,
	})
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	if reused {
		h.removeStale(ctx, publicID, ext)
	}

	return &UploadResult{
		PublicID: publicID,
		URL:      h.PublicURL(key),
		Bytes:    int64(len(in.Data)),
		Width:    width,
		Height:   height,
		Format:   ext,
	}, nil
}

// removeStale deletes copies of publicID stored under other extensions, so a
// re-upload in a new format does not leave the old object behind.
func (h *S3Host) removeStale(ctx context.Context, publicID, keep string) {
	for _, ext := range formats {
		if ext == keep {
			continue
		}
		key := publicID + "." + ext
		if err := h.store.Delete(ctx, key); err != nil {
			h.logger.Warn("delete stale image failed", "key", key, "error", err)
		}
	}
}

// PublicURL is the address the frontend renders for key.
func (h *S3Host) PublicURL(key string) string {
	if h.cfg.PublicBaseURL != "" {
		return strings.TrimRight(h.cfg.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", h.cfg.Bucket, h.cfg.Region, key)
}

func cleanPath(s, fallback string) (string, error) {
	s = strings.Trim(strings.TrimSpace(s), "/")
	if s == "" {
		return fallback, nil
	}
	for _, part := range strings.Split(s, "/") {
		if part == "" || part == "." || part == ".." {
			return "", &InputError{Err: errors.New("`folder` and `publicId` must be relative paths")}
		}
	}
	return s, nil
}
