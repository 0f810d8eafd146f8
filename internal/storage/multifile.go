package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

// MultiFileStore persists one JSON document per item inside a directory,
// named by item ID. Suited to independent, user-created entities that are
// enumerated and deleted individually: per-entity files avoid rewriting
// unrelated items on every edit.
type MultiFileStore[T any] struct {
	fs    Filesystem
	dir   string
	hooks Hooks[T]
}

// NewMultiFileStore creates a store writing item documents under dir
func NewMultiFileStore[T any](fs Filesystem, dir string, hooks Hooks[T]) *MultiFileStore[T] {
	return &MultiFileStore[T]{fs: fs, dir: dir, hooks: hooks}
}

// Dir returns the directory backing this store
func (s *MultiFileStore[T]) Dir() string { return s.dir }

// ListIDs returns the IDs of every item currently stored
func (s *MultiFileStore[T]) ListIDs(ctx context.Context) ([]string, error) {
	files, _, err := s.fs.List(ctx, s.dir)
	if err != nil {
		return nil, apperrors.StorageError(s.dir, err)
	}

	ids := make([]string, 0, len(files))
	for _, name := range files {
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// LoadItem reads one item by ID. A missing or corrupt document yields the
// fallback value, never an error.
func (s *MultiFileStore[T]) LoadItem(ctx context.Context, id string, fallback T) (T, error) {
	path := ItemFile(s.dir, id)
	data, err := s.fs.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, nil
		}
		var zero T
		return zero, apperrors.StorageError(path, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("[WARN] Corrupt document at %s, falling back: %v", path, err)
		return fallback, nil
	}
	if s.hooks.Validate != nil {
		if err := s.hooks.Validate(v); err != nil {
			log.Printf("[WARN] Invalid document at %s, falling back: %v", path, err)
			return fallback, nil
		}
	}
	return v, nil
}

// Exists reports whether a document for the item exists
func (s *MultiFileStore[T]) Exists(ctx context.Context, id string) bool {
	return s.fs.Exists(ctx, ItemFile(s.dir, id))
}

// SaveItem validates and writes one item document
func (s *MultiFileStore[T]) SaveItem(ctx context.Context, id string, v T) error {
	path := ItemFile(s.dir, id)
	if s.hooks.Validate != nil {
		if err := s.hooks.Validate(v); err != nil {
			return apperrors.ValidationFailed(err.Error()).WithDetail("path", path)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.StorageError(path, err)
	}
	if err := s.fs.WriteFile(ctx, path, data); err != nil {
		return apperrors.StorageError(path, err)
	}
	return nil
}

// DeleteItem removes one item document
func (s *MultiFileStore[T]) DeleteItem(ctx context.Context, id string) error {
	path := ItemFile(s.dir, id)
	if err := s.fs.Remove(ctx, path); err != nil {
		return apperrors.StorageError(path, err)
	}
	return nil
}

// Clear deletes every document currently listed in the directory.
// Documents created concurrently with the sweep are not guaranteed to be
// removed; mutations here are user-driven, so this weak consistency is
// acceptable.
func (s *MultiFileStore[T]) Clear(ctx context.Context) error {
	files, _, err := s.fs.List(ctx, s.dir)
	if err != nil {
		return apperrors.StorageError(s.dir, err)
	}
	for _, name := range files {
		path := filepath.ToSlash(filepath.Join(s.dir, name))
		if err := s.fs.Remove(ctx, path); err != nil {
			return apperrors.StorageError(path, err)
		}
	}
	return nil
}
