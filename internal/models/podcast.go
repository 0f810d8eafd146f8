package models

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// Podcast represents a subscribed podcast feed. ID and FeedURL are
// immutable after creation; there is at most one Podcast per feed URL.
type Podcast struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Author        string           `json:"author"`
	Description   string           `json:"description"`
	FeedURL       string           `json:"feedUrl"`
	ImageURL      string           `json:"imageUrl,omitempty"`
	SubscribedAt  time.Time        `json:"subscribedAt"`
	LastFetchedAt *time.Time       `json:"lastFetchedAt,omitempty"`
	Episodes      []Episode        `json:"episodes,omitempty"`
	Settings      *PodcastSettings `json:"settings,omitempty"`
}

// PodcastSettings holds per-podcast overrides of the global playback defaults
type PodcastSettings struct {
	PlaybackSpeed    float64 `json:"playbackSpeed,omitempty"`
	SkipIntroSeconds int     `json:"skipIntroSeconds,omitempty"`
	SkipOutroSeconds int     `json:"skipOutroSeconds,omitempty"`
	AutoDownload     *bool   `json:"autoDownload,omitempty"`
}

// Episode represents a single episode belonging to a podcast. Identity is
// stable across feed re-fetches so new episodes can be detected by set
// difference.
type Episode struct {
	ID          string    `json:"id"`
	PodcastID   string    `json:"podcastId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AudioURL    string    `json:"audioUrl"`
	Duration    int       `json:"duration"` // seconds
	PublishDate time.Time `json:"publishDate"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Completed   bool      `json:"completed,omitempty"`
	Favorited   bool      `json:"favorited,omitempty"`
}

// PodcastIDFromFeedURL derives the stable podcast identifier from the feed URL
func PodcastIDFromFeedURL(feedURL string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(feedURL)))
	return fmt.Sprintf("%x", sum)[:16]
}

// NeedsUpdate reports whether the podcast is due for a feed refresh.
// A podcast that has never been fetched always needs an update.
func (p *Podcast) NeedsUpdate(interval time.Duration, now time.Time) bool {
	if p.LastFetchedAt == nil || p.LastFetchedAt.IsZero() {
		return true
	}
	return now.Sub(*p.LastFetchedAt) >= interval
}

// MatchesQuery reports whether the podcast matches a case-insensitive
// substring search over title and author
func (p *Podcast) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Author), q)
}

// EpisodeIDs returns the IDs of the podcast's episodes in feed order
func (p *Podcast) EpisodeIDs() []string {
	ids := make([]string, 0, len(p.Episodes))
	for _, e := range p.Episodes {
		ids = append(ids, e.ID)
	}
	return ids
}
