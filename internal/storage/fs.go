package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileInfo carries the subset of file metadata the stores need
type FileInfo struct {
	Size    int64
	ModTime time.Time
}

// Filesystem is the storage capability consumed from the host environment.
// Implementations must return os.ErrNotExist-compatible errors for missing
// paths so callers can distinguish "not found" from real failures.
type Filesystem interface {
	Exists(ctx context.Context, path string) bool
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	Remove(ctx context.Context, path string) error
	List(ctx context.Context, dir string) (files []string, dirs []string, err error)
	MkdirAll(ctx context.Context, path string) error
	Stat(ctx context.Context, path string) (FileInfo, error)
}

// OSFilesystem implements Filesystem against the local disk
type OSFilesystem struct{}

// NewOSFilesystem creates a filesystem backed by the local disk
func NewOSFilesystem() *OSFilesystem {
	return &OSFilesystem{}
}

// Exists checks if a path exists
func (f *OSFilesystem) Exists(ctx context.Context, path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile reads the full contents of a file
func (f *OSFilesystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteFile writes data to a file, creating parent directories as needed
func (f *OSFilesystem) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Remove deletes a file. Removing a missing file is not an error.
func (f *OSFilesystem) Remove(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// List returns the file and directory names directly under dir
func (f *OSFilesystem) List(ctx context.Context, dir string) ([]string, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var files, dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}
	return files, dirs, nil
}

// MkdirAll creates a directory along with any missing parents
func (f *OSFilesystem) MkdirAll(ctx context.Context, path string) error {
	return os.MkdirAll(path, 0755)
}

// Stat returns size and modification time for a path
func (f *OSFilesystem) Stat(ctx context.Context, path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{Size: info.Size(), ModTime: info.ModTime()}, nil
}
