package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type FileInfo struct {
	Filename    string
	ContentType string
	Size        int64
}

// Storage keeps uploaded videos. Names returned by SaveFile are opaque to
// clients; Location turns one into the reference the analysis service reads.
type Storage interface {
	SaveFile(ctx context.Context, file io.Reader, info FileInfo) (string, error)
	Location(name string) (string, error)
	OpenFile(ctx context.Context, name string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, name string) error
}

// newName returns a fresh uuid-based name keeping the upload's extension.
func newName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".mp4"
	}
	return fmt.Sprintf("%s%s", uuid.New().String(), ext)
}

func cleanName(name string) (string, error) {
	clean := filepath.Clean(name)
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid path")
	}
	return clean, nil
}
