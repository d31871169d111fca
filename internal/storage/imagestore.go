package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore persists uploaded profile images and returns a reference
// usable by clients. Provider-backed implementations (object storage,
// CDN) can replace the disk store without touching callers.
type ImageStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
}

type diskImageStore struct {
	dir string
}

// NewDiskImageStore stores images under dir, creating it on demand.
func NewDiskImageStore(dir string) ImageStore {
	return &diskImageStore{dir: dir}
}

func (s *diskImageStore) Save(_ context.Context, filename string, content io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return "", fmt.Errorf("unsupported image format %q", ext)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write image: %w", err)
	}
	return "/profile-images/" + name, nil
}
