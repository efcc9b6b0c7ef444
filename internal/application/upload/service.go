package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/campus-market-api/internal/domain"
	"github.com/google/uuid"
)

const (
	// MaxFiles caps how many images one request may carry.
	MaxFiles = 5
	// MaxFileSize caps a single image at 5 MiB.
	MaxFileSize = 5 << 20
)

type FileInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

type Service interface {
	UploadImages(ctx context.Context, uploaderID string, files []FileInput) ([]string, error)
	Delete(ctx context.Context, uploaderID, key string) error
}

type blobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	store blobStore
}

func NewService(store blobStore) Service {
	return &service{store: store}
}

// UploadImages stores each image under items/<uploaderID>/<uuid><ext> and
// returns the public URLs in input order. The whole batch is validated before
// any byte is sent so a bad file never leaves partial uploads behind.
func (s *service) UploadImages(ctx context.Context, uploaderID string, files []FileInput) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files provided: %w", domain.ErrBadRequest)
	}
	if len(files) > MaxFiles {
		return nil, fmt.Errorf("at most %d images per request: %w", MaxFiles, domain.ErrBadRequest)
	}
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			return nil, fmt.Errorf("unsupported content type %q: %w", f.ContentType, domain.ErrBadRequest)
		}
		if f.Size > MaxFileSize {
			return nil, fmt.Errorf("file %q exceeds the %d byte limit: %w", f.Filename, MaxFileSize, domain.ErrBadRequest)
		}
	}
	urls := make([]string, 0, len(files))
	for _, f := range files {
		key := fmt.Sprintf("items/%s/%s%s", uploaderID, uuid.NewString(), extensionFor(f))
		url, err := s.store.Upload(ctx, key, f.Reader, f.ContentType)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Delete removes an uploaded image. Keys are namespaced per uploader, so
// ownership reduces to a prefix check.
func (s *service) Delete(ctx context.Context, uploaderID, key string) error {
	if !strings.HasPrefix(key, "items/"+uploaderID+"/") {
		return fmt.Errorf("key does not belong to the caller: %w", domain.ErrForbidden)
	}
	return s.store.Delete(ctx, key)
}

// extensionFor prefers the original filename's extension and falls back to the
// declared content type.
func extensionFor(f FileInput) string {
	if ext := strings.ToLower(path.Ext(f.Filename)); ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(f.ContentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
