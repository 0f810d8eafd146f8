package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	apperrors "github.com/podkeep/podkeep/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Store tuning defaults
const (
	DefaultCacheTTL      = 2 * time.Second
	DefaultDebounceDelay = 1 * time.Second
)

// Hooks supplies the per-store validation rules and default value. The
// default is returned whenever the underlying file is missing or corrupt:
// losing in-memory state must never be worse than resetting to defaults.
type Hooks[T any] struct {
	Validate func(T) error
	Default  func() T
}

// Options tunes a store's cache and debounce behavior
type Options struct {
	CacheTTL      time.Duration
	DebounceDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.DebounceDelay <= 0 {
		o.DebounceDelay = DefaultDebounceDelay
	}
	return o
}

// SingleFileStore persists one aggregate document as a single JSON file,
// with an in-memory TTL cache, concurrent-load deduplication and debounced
// writes. The debounce state machine has two states, idle and pending;
// Save, Flush and the timer firing are the only transitions.
type SingleFileStore[T any] struct {
	fs    Filesystem
	path  string
	opts  Options
	hooks Hooks[T]

	mu       sync.Mutex
	cached   *T
	cachedAt time.Time
	dirty    bool
	timer    *time.Timer

	flight singleflight.Group
}

// NewSingleFileStore creates a store for the aggregate document at path
func NewSingleFileStore[T any](fs Filesystem, path string, opts Options, hooks Hooks[T]) *SingleFileStore[T] {
	return &SingleFileStore[T]{
		fs:    fs,
		path:  path,
		opts:  opts.withDefaults(),
		hooks: hooks,
	}
}

// Path returns the file path backing this store
func (s *SingleFileStore[T]) Path() string { return s.path }

// Load returns the aggregate. A cached value younger than the TTL is
// returned without touching disk. Concurrent loads while a disk read is
// in flight share a single read. Missing or corrupt files yield the
// default value, never an error.
func (s *SingleFileStore[T]) Load(ctx context.Context) (T, error) {
	s.mu.Lock()
	if s.cached != nil && time.Since(s.cachedAt) < s.opts.CacheTTL {
		v := *s.cached
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	// The singleflight cell is cleared when Do returns, so the next call
	// after completion triggers a fresh read.
	v, err, _ := s.flight.Do(s.path, func() (interface{}, error) {
		return s.loadFromDisk(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (s *SingleFileStore[T]) loadFromDisk(ctx context.Context) (T, error) {
	data, err := s.fs.ReadFile(ctx, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s.hooks.Default(), nil
		}
		var zero T
		return zero, apperrors.StorageError(s.path, err)
	}

	// Decoding into a defaults-prefilled value backfills fields missing
	// from older files.
	v := s.hooks.Default()
	if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("[WARN] Corrupt document at %s, falling back to defaults: %v", s.path, err)
		return s.hooks.Default(), nil
	}
	if s.hooks.Validate != nil {
		if err := s.hooks.Validate(v); err != nil {
			log.Printf("[WARN] Invalid document at %s, falling back to defaults: %v", s.path, err)
			return s.hooks.Default(), nil
		}
	}

	s.mu.Lock()
	if s.dirty && s.cached != nil {
		// A save landed while the read was in flight; the cache holds a
		// newer value than the disk copy
		v = *s.cached
	} else {
		s.cached = &v
		s.cachedAt = time.Now()
	}
	s.mu.Unlock()

	return v, nil
}

// Save validates and persists the aggregate. The in-memory cache is
// updated unconditionally so subsequent loads observe the new value even
// before the write lands. With immediate set the write happens
// synchronously and errors propagate; otherwise a debounce timer is
// (re)armed and only the newest value in the window is written.
func (s *SingleFileStore[T]) Save(ctx context.Context, v T, immediate bool) error {
	if s.hooks.Validate != nil {
		if err := s.hooks.Validate(v); err != nil {
			return apperrors.ValidationFailed(err.Error()).WithDetail("path", s.path)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = &v
	s.cachedAt = time.Now()
	s.dirty = true

	if immediate {
		s.stopTimerLocked()
		if err := s.writeLocked(ctx); err != nil {
			return err
		}
		s.dirty = false
		return nil
	}

	s.stopTimerLocked()
	s.timer = time.AfterFunc(s.opts.DebounceDelay, s.debounceFire)
	return nil
}

// debounceFire is the timer transition of the debounce state machine. A
// failed debounced write is logged and swallowed so background timers
// never crash.
func (s *SingleFileStore[T]) debounceFire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timer = nil
	if !s.dirty || s.cached == nil {
		return
	}
	if err := s.writeLocked(context.Background()); err != nil {
		log.Printf("[WARN] Debounced write failed for %s: %v", s.path, err)
		return
	}
	s.dirty = false
}

// Flush cancels any pending debounce timer and synchronously writes the
// last cached value if dirty. Call before teardown so the last debounce
// window is not lost. Errors propagate.
func (s *SingleFileStore[T]) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	if !s.dirty || s.cached == nil {
		return nil
	}
	if err := s.writeLocked(ctx); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// InvalidateCache drops the cached value so the next Load hits disk. Used
// when the underlying file changed outside this store's own writes; any
// pending debounced write is cancelled since its payload predates the
// external change.
func (s *SingleFileStore[T]) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.cached = nil
	s.cachedAt = time.Time{}
	s.dirty = false
}

// Clear writes the default value immediately, bypassing the debounce, and
// invalidates the cache
func (s *SingleFileStore[T]) Clear(ctx context.Context) error {
	def := s.hooks.Default()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.cached = &def
	if err := s.writeLocked(ctx); err != nil {
		return err
	}
	s.cached = nil
	s.cachedAt = time.Time{}
	s.dirty = false
	return nil
}

func (s *SingleFileStore[T]) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *SingleFileStore[T]) writeLocked(ctx context.Context) error {
	data, err := json.MarshalIndent(*s.cached, "", "  ")
	if err != nil {
		return apperrors.StorageError(s.path, err)
	}
	if err := s.fs.WriteFile(ctx, s.path, data); err != nil {
		return apperrors.StorageError(s.path, err)
	}
	return nil
}
