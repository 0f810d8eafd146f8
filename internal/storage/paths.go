package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

const backupTimestampLayout = "20060102-150405"

// Paths maps logical data categories to concrete locations under a
// configurable root. The path space is partitioned per category so no two
// stores ever contend for the same file.
type Paths struct {
	root string
}

// NewPaths creates a path resolver rooted at the given data directory
func NewPaths(root string) *Paths {
	return &Paths{root: filepath.ToSlash(root)}
}

// Root returns the data directory root
func (p *Paths) Root() string { return p.root }

// SettingsFile returns the settings aggregate path
func (p *Paths) SettingsFile() string { return p.join("settings.json") }

// SubscriptionsFile returns the subscriptions aggregate path
func (p *Paths) SubscriptionsFile() string { return p.join("subscriptions.json") }

// ProgressFile returns the playback progress aggregate path
func (p *Paths) ProgressFile() string { return p.join("progress.json") }

// PlaylistsDir returns the per-playlist document directory
func (p *Paths) PlaylistsDir() string { return p.join("playlists") }

// QueuesDir returns the per-queue document directory
func (p *Paths) QueuesDir() string { return p.join("queues") }

// FeedCacheDir returns the cached feed XML directory
func (p *Paths) FeedCacheDir() string { return p.join("cache", "feeds") }

// ImageCacheDir returns the cached artwork directory
func (p *Paths) ImageCacheDir() string { return p.join("cache", "images") }

// BackupsDir returns the backup snapshots directory
func (p *Paths) BackupsDir() string { return p.join("backups") }

func (p *Paths) join(parts ...string) string {
	return filepath.ToSlash(filepath.Join(append([]string{p.root}, parts...)...))
}

// EnsureLayout creates every category directory under the root
func (p *Paths) EnsureLayout(ctx context.Context, fs Filesystem) error {
	dirs := []string{
		p.root,
		p.PlaylistsDir(),
		p.QueuesDir(),
		p.FeedCacheDir(),
		p.ImageCacheDir(),
		p.BackupsDir(),
	}
	for _, dir := range dirs {
		if err := fs.MkdirAll(ctx, dir); err != nil {
			return apperrors.StorageError(dir, err)
		}
	}
	return nil
}

// CreateBackup snapshots the aggregate files and the per-item directories
// into a timestamped folder under backups/ and returns its path
func (p *Paths) CreateBackup(ctx context.Context, fs Filesystem, now time.Time) (string, error) {
	dest := filepath.ToSlash(filepath.Join(p.BackupsDir(), now.UTC().Format(backupTimestampLayout)))
	if err := fs.MkdirAll(ctx, dest); err != nil {
		return "", apperrors.StorageError(dest, err)
	}

	for _, file := range []string{p.SettingsFile(), p.SubscriptionsFile(), p.ProgressFile()} {
		if err := copyFile(ctx, fs, file, filepath.ToSlash(filepath.Join(dest, filepath.Base(file)))); err != nil {
			return "", err
		}
	}

	for _, dir := range []string{p.PlaylistsDir(), p.QueuesDir()} {
		files, _, err := fs.List(ctx, dir)
		if err != nil {
			return "", apperrors.StorageError(dir, err)
		}
		for _, name := range files {
			src := filepath.ToSlash(filepath.Join(dir, name))
			dst := filepath.ToSlash(filepath.Join(dest, filepath.Base(dir), name))
			if err := copyFile(ctx, fs, src, dst); err != nil {
				return "", err
			}
		}
	}

	return dest, nil
}

// RotateBackups deletes the oldest backup folders beyond keep
func (p *Paths) RotateBackups(ctx context.Context, fs Filesystem, keep int) error {
	if keep < 0 {
		keep = 0
	}

	_, dirs, err := fs.List(ctx, p.BackupsDir())
	if err != nil {
		return apperrors.StorageError(p.BackupsDir(), err)
	}
	if len(dirs) <= keep {
		return nil
	}

	// Timestamped names sort chronologically
	sort.Strings(dirs)
	for _, name := range dirs[:len(dirs)-keep] {
		dir := filepath.ToSlash(filepath.Join(p.BackupsDir(), name))
		files, _, err := fs.List(ctx, dir)
		if err != nil {
			return apperrors.StorageError(dir, err)
		}
		for _, f := range files {
			if err := fs.Remove(ctx, filepath.ToSlash(filepath.Join(dir, f))); err != nil {
				return apperrors.StorageError(f, err)
			}
		}
		_, subdirs, err := fs.List(ctx, dir)
		if err != nil {
			return apperrors.StorageError(dir, err)
		}
		for _, sub := range subdirs {
			subPath := filepath.ToSlash(filepath.Join(dir, sub))
			subFiles, _, err := fs.List(ctx, subPath)
			if err != nil {
				return apperrors.StorageError(subPath, err)
			}
			for _, f := range subFiles {
				if err := fs.Remove(ctx, filepath.ToSlash(filepath.Join(subPath, f))); err != nil {
					return apperrors.StorageError(f, err)
				}
			}
			_ = fs.Remove(ctx, subPath)
		}
		_ = fs.Remove(ctx, dir)
	}
	return nil
}

func copyFile(ctx context.Context, fs Filesystem, src, dst string) error {
	if !fs.Exists(ctx, src) {
		return nil
	}
	data, err := fs.ReadFile(ctx, src)
	if err != nil {
		return apperrors.StorageError(src, err)
	}
	if err := fs.WriteFile(ctx, dst, data); err != nil {
		return apperrors.StorageError(dst, err)
	}
	return nil
}

// ItemFile returns the JSON document path for an item inside a
// per-category directory
func ItemFile(dir, id string) string {
	return filepath.ToSlash(filepath.Join(dir, fmt.Sprintf("%s.json", id)))
}
