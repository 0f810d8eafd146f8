package feedcache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"log"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/podkeep/podkeep/internal/storage"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

// ImageCache stores podcast artwork as raw binary files, named by a hash of
// the source URL plus the original extension. Freshness comes from file
// modification time; there is no sidecar metadata.
type ImageCache struct {
	fs  storage.Filesystem
	dir string
	ttl time.Duration
}

// NewImageCache creates the cache under the resolver's image cache dir
func NewImageCache(fs storage.Filesystem, paths *storage.Paths, ttl time.Duration) *ImageCache {
	return &ImageCache{fs: fs, dir: paths.ImageCacheDir(), ttl: ttl}
}

func (c *ImageCache) filename(url string) string {
	sum := sha1.Sum([]byte(url))
	name := hex.EncodeToString(sum[:])

	ext := path.Ext(strings.SplitN(path.Base(url), "?", 2)[0])
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		name += strings.ToLower(ext)
	default:
		name += ".img"
	}
	return path.Join(c.dir, name)
}

// Get returns the cached image bytes for a URL. fresh reports whether the
// file is younger than the cache TTL.
func (c *ImageCache) Get(ctx context.Context, url string) (data []byte, ok bool, fresh bool) {
	file := c.filename(url)

	info, err := c.fs.Stat(ctx, file)
	if err != nil {
		return nil, false, false
	}

	data, err = c.fs.ReadFile(ctx, file)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[WARN] Could not read cached image %s: %v", file, err)
		}
		return nil, false, false
	}
	return data, true, time.Since(info.ModTime) < c.ttl
}

// Put stores image bytes for a URL
func (c *ImageCache) Put(ctx context.Context, url string, data []byte) error {
	file := c.filename(url)
	if err := c.fs.WriteFile(ctx, file, data); err != nil {
		return apperrors.StorageError(file, err)
	}
	return nil
}

// Remove deletes the cached image for a URL, if present
func (c *ImageCache) Remove(ctx context.Context, url string) error {
	return c.fs.Remove(ctx, c.filename(url))
}

// EvictBySize trims the cache until its total size is at or under maxBytes,
// dropping the least recently written files first. A non-positive limit
// disables eviction.
func (c *ImageCache) EvictBySize(ctx context.Context, maxBytes int64) error {
	if maxBytes <= 0 {
		return nil
	}

	files, _, err := c.fs.List(ctx, c.dir)
	if err != nil {
		return apperrors.StorageError(c.dir, err)
	}

	type cached struct {
		path    string
		size    int64
		modTime time.Time
	}
	var entries []cached
	var total int64
	for _, name := range files {
		file := path.Join(c.dir, name)
		info, err := c.fs.Stat(ctx, file)
		if err != nil {
			continue
		}
		entries = append(entries, cached{path: file, size: info.Size, modTime: info.ModTime})
		total += info.Size
	}
	if total <= maxBytes {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})

	for _, e := range entries {
		if total <= maxBytes {
			break
		}
		if err := c.fs.Remove(ctx, e.path); err != nil {
			log.Printf("[WARN] Could not evict cached image %s: %v", e.path, err)
			continue
		}
		total -= e.size
	}
	return nil
}

// Clear removes every cached image
func (c *ImageCache) Clear(ctx context.Context) error {
	files, _, err := c.fs.List(ctx, c.dir)
	if err != nil {
		return apperrors.StorageError(c.dir, err)
	}
	for _, name := range files {
		if err := c.fs.Remove(ctx, path.Join(c.dir, name)); err != nil {
			log.Printf("[WARN] Could not remove cached image %s: %v", name, err)
		}
	}
	return nil
}
