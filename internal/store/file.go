package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileBackend keeps the blob in a file, replaced atomically on write.
type FileBackend struct {
	Fs   afero.Fs
	Path string
}

// NewFileBackend returns a file backend at path.
func NewFileBackend(fs afero.Fs, path string) *FileBackend {
	return &FileBackend{Fs: fs, Path: path}
}

// Read implements Backend.
func (b *FileBackend) Read(_ context.Context) (string, bool, error) {
	data, err := afero.ReadFile(b.Fs, b.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// Write implements Backend.
func (b *FileBackend) Write(_ context.Context, blob string) error {
	if err := b.Fs.MkdirAll(filepath.Dir(b.Path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp := b.Path + ".tmp"
	if err := afero.WriteFile(b.Fs, tmp, []byte(blob), 0o644); err != nil {
		return err
	}
	if err := b.Fs.Rename(tmp, b.Path); err != nil {
		_ = b.Fs.Remove(tmp)
		return err
	}
	return nil
}

// Describe implements Backend.
func (b *FileBackend) Describe() string {
	return "file " + b.Path
}
