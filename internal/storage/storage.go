// Package storage persists book cover images. The interface is narrow so a
// cloud backend can replace the local filesystem one without touching the
// handlers.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

type Storage interface {
	// Save writes the content under the given key, creating parent
	// directories as needed.
	Save(ctx context.Context, key string, reader io.Reader) error
	// Open returns a reader for the stored content. Missing keys yield
	// os.ErrNotExist from the local backend.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, int64, error)
}

var allowedCoverTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// NewCoverKey returns a fresh storage key for a cover image, or an error for
// content types that are not images we accept.
func NewCoverKey(contentType string) (string, error) {
	ext, ok := allowedCoverTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported cover content type %q", contentType)
	}
	return "covers/" + uuid.New().String() + ext, nil
}
