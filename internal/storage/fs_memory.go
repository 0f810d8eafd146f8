package storage

import (
	"context"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFilesystem implements Filesystem entirely in memory. It backs
// tests and hosts that provide a virtual filesystem instead of disk access.
type MemoryFilesystem struct {
	mu    sync.RWMutex
	files map[string]memFile
	dirs  map[string]bool
}

type memFile struct {
	data    []byte
	modTime time.Time
}

// NewMemoryFilesystem creates an empty in-memory filesystem
func NewMemoryFilesystem() *MemoryFilesystem {
	return &MemoryFilesystem{
		files: make(map[string]memFile),
		dirs:  make(map[string]bool),
	}
}

func normalize(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

// Exists checks if a path exists as a file or directory
func (f *MemoryFilesystem) Exists(ctx context.Context, p string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p = normalize(p)
	if _, ok := f.files[p]; ok {
		return true
	}
	return f.dirs[p]
}

// ReadFile reads the full contents of a file
func (f *MemoryFilesystem) ReadFile(ctx context.Context, p string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	file, ok := f.files[normalize(p)]
	if !ok {
		return nil, os.ErrNotExist
	}
	out := make([]byte, len(file.data))
	copy(out, file.data)
	return out, nil
}

// WriteFile writes data to a file, implicitly creating parent directories
func (f *MemoryFilesystem) WriteFile(ctx context.Context, p string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = normalize(p)
	stored := make([]byte, len(data))
	copy(stored, data)
	f.files[p] = memFile{data: stored, modTime: time.Now()}
	f.mkdirLocked(path.Dir(p))
	return nil
}

// Remove deletes a file or an empty directory. Removing a missing path is
// not an error.
func (f *MemoryFilesystem) Remove(ctx context.Context, p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = normalize(p)
	delete(f.files, p)
	delete(f.dirs, p)
	return nil
}

// List returns the file and directory names directly under dir
func (f *MemoryFilesystem) List(ctx context.Context, dir string) ([]string, []string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	dir = normalize(dir)
	prefix := dir + "/"

	fileSet := make(map[string]bool)
	dirSet := make(map[string]bool)

	for p := range f.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if idx := strings.Index(rest, "/"); idx >= 0 {
			dirSet[rest[:idx]] = true
		} else {
			fileSet[rest] = true
		}
	}
	for p := range f.dirs {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if idx := strings.Index(rest, "/"); idx >= 0 {
			rest = rest[:idx]
		}
		if rest != "" {
			dirSet[rest] = true
		}
	}

	var files, dirs []string
	for name := range fileSet {
		files = append(files, name)
	}
	for name := range dirSet {
		dirs = append(dirs, name)
	}
	sort.Strings(files)
	sort.Strings(dirs)
	return files, dirs, nil
}

// MkdirAll creates a directory along with any missing parents
func (f *MemoryFilesystem) MkdirAll(ctx context.Context, p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.mkdirLocked(normalize(p))
	return nil
}

func (f *MemoryFilesystem) mkdirLocked(p string) {
	for p != "." && p != "/" && p != "" {
		f.dirs[p] = true
		p = path.Dir(p)
	}
}

// Stat returns size and modification time for a path
func (f *MemoryFilesystem) Stat(ctx context.Context, p string) (FileInfo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p = normalize(p)
	if file, ok := f.files[p]; ok {
		return FileInfo{Size: int64(len(file.data)), ModTime: file.modTime}, nil
	}
	if f.dirs[p] {
		return FileInfo{}, nil
	}
	return FileInfo{}, os.ErrNotExist
}
