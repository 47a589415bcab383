package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kyaw-zaya123/checking/internal/validation"
)

// Local stores documents below a directory.
type Local struct {
	dir string
}

// NewLocal creates a store rooted at dir. The directory is created on first Put.
func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

func (l *Local) Name() string { return "local" }

// Put writes the document atomically and returns its absolute path.
func (l *Local) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel := filepath.FromSlash(key)
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("invalid archive key %q: must be relative", key)
	}
	if err := validation.ValidatePathInDirectory(rel, l.dir); err != nil {
		return "", fmt.Errorf("invalid archive key %q: %w", key, err)
	}
	dest := filepath.Join(l.dir, rel)

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".archive-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write archive: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to save archive: %w", err)
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return dest, nil
	}
	return abs, nil
}
