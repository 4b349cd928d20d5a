package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/linkatalog/linkatalog/internal/catalog"
)

// ImageStore saves uploaded link images on local disk. The returned reference
// is the generated filename, which the HTTP layer serves under /uploads/.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

func (s *ImageStore) Dir() string { return s.dir }

func (s *ImageStore) Store(ctx context.Context, upload *catalog.ImageUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	name := uuid.New().String() + ext

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, upload.Content); err != nil {
		// Don't leave a truncated file behind.
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write image file: %w", err)
	}

	return name, nil
}
