package models

import "time"

// CacheEntry is a cached feed document keyed by a hash of its URL. Expiry
// is evaluated at read time; an expired entry is not deleted automatically.
type CacheEntry struct {
	URL          string    `json:"url"`
	Data         string    `json:"data"` // raw XML text
	CachedAt     time.Time `json:"cachedAt"`
	TTLMs        int64     `json:"ttl"` // milliseconds
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"lastModified,omitempty"`
}

// TTL returns the entry's time-to-live as a duration
func (e CacheEntry) TTL() time.Duration {
	return time.Duration(e.TTLMs) * time.Millisecond
}

// Expired reports whether the entry's TTL has elapsed at the given time
func (e CacheEntry) Expired(now time.Time) bool {
	return now.After(e.CachedAt.Add(e.TTL()))
}
