package feedcache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/podkeep/podkeep/internal/models"
	"github.com/podkeep/podkeep/internal/storage"
)

// FeedCache stores raw feed documents on disk keyed by a hash of their URL.
// Expiry is evaluated at read time: Get returns an expired entry together
// with a flag so callers can still use its validators for a conditional
// refetch.
type FeedCache struct {
	store *storage.MultiFileStore[models.CacheEntry]
	ttl   time.Duration
}

// NewFeedCache creates the cache under the resolver's feed cache dir
func NewFeedCache(fs storage.Filesystem, paths *storage.Paths, ttl time.Duration) *FeedCache {
	hooks := storage.Hooks[models.CacheEntry]{
		Validate: func(e models.CacheEntry) error {
			if e.URL == "" {
				return fmt.Errorf("cache entry missing url")
			}
			return nil
		},
		Default: func() models.CacheEntry { return models.CacheEntry{} },
	}
	return &FeedCache{
		store: storage.NewMultiFileStore(fs, paths.FeedCacheDir(), hooks),
		ttl:   ttl,
	}
}

// CacheKey derives the stable on-disk key for a feed URL
func CacheKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached entry for a URL. ok reports whether an entry
// exists at all; fresh reports whether its TTL has not yet elapsed.
func (c *FeedCache) Get(ctx context.Context, url string) (entry models.CacheEntry, ok bool, fresh bool) {
	key := CacheKey(url)
	if !c.store.Exists(ctx, key) {
		return models.CacheEntry{}, false, false
	}

	entry, err := c.store.LoadItem(ctx, key, models.CacheEntry{})
	if err != nil || entry.URL == "" {
		return models.CacheEntry{}, false, false
	}
	return entry, true, !entry.Expired(time.Now())
}

// Put stores a fetched feed document along with its HTTP validators
func (c *FeedCache) Put(ctx context.Context, url, data, etag, lastModified string) error {
	entry := models.CacheEntry{
		URL:          url,
		Data:         data,
		CachedAt:     time.Now(),
		TTLMs:        c.ttl.Milliseconds(),
		ETag:         etag,
		LastModified: lastModified,
	}
	return c.store.SaveItem(ctx, CacheKey(url), entry)
}

// Touch refreshes the cached-at timestamp of an existing entry without
// replacing its body, used after a 304 response revalidates the cache
func (c *FeedCache) Touch(ctx context.Context, url string) error {
	key := CacheKey(url)
	entry, err := c.store.LoadItem(ctx, key, models.CacheEntry{})
	if err != nil {
		return err
	}
	if entry.URL == "" {
		return nil
	}
	entry.CachedAt = time.Now()
	return c.store.SaveItem(ctx, key, entry)
}

// Remove deletes the entry for a URL, if present
func (c *FeedCache) Remove(ctx context.Context, url string) error {
	return c.store.DeleteItem(ctx, CacheKey(url))
}

// Evict trims the cache down to maxEntries, dropping the oldest entries
// first. A non-positive limit disables eviction.
func (c *FeedCache) Evict(ctx context.Context, maxEntries int) error {
	if maxEntries <= 0 {
		return nil
	}

	ids, err := c.store.ListIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) <= maxEntries {
		return nil
	}

	type aged struct {
		id       string
		cachedAt time.Time
	}
	entries := make([]aged, 0, len(ids))
	for _, id := range ids {
		e, err := c.store.LoadItem(ctx, id, models.CacheEntry{})
		if err != nil {
			continue
		}
		entries = append(entries, aged{id: id, cachedAt: e.CachedAt})
	}

	// Unreadable entries are skipped above, so fewer entries than ids may
	// remain
	excess := len(entries) - maxEntries
	if excess <= 0 {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].cachedAt.Before(entries[j].cachedAt)
	})

	for _, e := range entries[:excess] {
		if err := c.store.DeleteItem(ctx, e.id); err != nil {
			log.Printf("[WARN] Could not evict feed cache entry %s: %v", e.id, err)
		}
	}
	return nil
}

// Clear removes every cached feed
func (c *FeedCache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}
