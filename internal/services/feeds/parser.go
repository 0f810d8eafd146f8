package feeds

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/podkeep/podkeep/internal/models"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

// FeedFormat is the detected syndication format of a feed document
type FeedFormat string

const (
	FormatRSS     FeedFormat = "rss"
	FormatAtom    FeedFormat = "atom"
	FormatJSON    FeedFormat = "json"
	FormatUnknown FeedFormat = "unknown"
)

// DetectFormat sniffs the feed format from the raw document. A cheap
// substring scan handles the overwhelmingly common cases before falling
// back to the full detector.
func DetectFormat(data string) FeedFormat {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if strings.Contains(head, "<rss") {
		return FormatRSS
	}
	if strings.Contains(head, "<feed") && strings.Contains(head, "http://www.w3.org/2005/Atom") {
		return FormatAtom
	}

	switch gofeed.DetectFeedType(strings.NewReader(data)) {
	case gofeed.FeedTypeRSS:
		return FormatRSS
	case gofeed.FeedTypeAtom:
		return FormatAtom
	case gofeed.FeedTypeJSON:
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// Parser turns raw feed documents into podcast models
type Parser struct {
	inner *gofeed.Parser
}

// NewParser creates a feed parser
func NewParser() *Parser {
	return &Parser{inner: gofeed.NewParser()}
}

// Parse parses a raw feed document into a Podcast for the given feed URL.
// The podcast ID is derived from the feed URL, episode IDs from stable
// per-item identity.
func (p *Parser) Parse(feedURL, data string) (*models.Podcast, error) {
	if DetectFormat(data) == FormatUnknown {
		return nil, apperrors.InvalidFeed(feedURL, nil)
	}

	feed, err := p.inner.ParseString(data)
	if err != nil {
		return nil, apperrors.InvalidFeed(feedURL, err)
	}

	podcast := &models.Podcast{
		ID:          models.PodcastIDFromFeedURL(feedURL),
		Title:       strings.TrimSpace(feed.Title),
		Description: strings.TrimSpace(feed.Description),
		FeedURL:     feedURL,
		Author:      feedAuthor(feed),
	}
	if feed.Image != nil {
		podcast.ImageURL = feed.Image.URL
	}
	if podcast.ImageURL == "" && feed.ITunesExt != nil {
		podcast.ImageURL = feed.ITunesExt.Image
	}
	if podcast.Title == "" {
		podcast.Title = feedURL
	}

	podcast.Episodes = make([]models.Episode, 0, len(feed.Items))
	for _, item := range feed.Items {
		episode := parseEpisode(podcast.ID, item)
		if episode.AudioURL == "" {
			// Items without an enclosure are show notes, not episodes
			continue
		}
		podcast.Episodes = append(podcast.Episodes, episode)
	}

	return podcast, nil
}

func feedAuthor(feed *gofeed.Feed) string {
	if feed.ITunesExt != nil && feed.ITunesExt.Author != "" {
		return strings.TrimSpace(feed.ITunesExt.Author)
	}
	for _, a := range feed.Authors {
		if a != nil && a.Name != "" {
			return strings.TrimSpace(a.Name)
		}
	}
	return ""
}

func parseEpisode(podcastID string, item *gofeed.Item) models.Episode {
	episode := models.Episode{
		PodcastID:   podcastID,
		Title:       strings.TrimSpace(item.Title),
		Description: strings.TrimSpace(item.Description),
	}

	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "audio/") || enc.Type == "" {
			episode.AudioURL = enc.URL
			break
		}
	}

	episode.ID = episodeID(item, episode.AudioURL)

	if item.PublishedParsed != nil {
		episode.PublishDate = *item.PublishedParsed
	}
	if item.Image != nil {
		episode.ImageURL = item.Image.URL
	}
	if item.ITunesExt != nil {
		if episode.ImageURL == "" {
			episode.ImageURL = item.ITunesExt.Image
		}
		episode.Duration = parseITunesDuration(item.ITunesExt.Duration)
	}

	return episode
}

// episodeID prefers the item GUID and falls back to a hash of the enclosure
// URL. Both are stable across refetches, which is what new-episode
// detection relies on.
func episodeID(item *gofeed.Item, audioURL string) string {
	if guid := strings.TrimSpace(item.GUID); guid != "" {
		return guid
	}
	sum := sha1.Sum([]byte(audioURL))
	return hex.EncodeToString(sum[:])
}

// parseITunesDuration handles the three shapes seen in the wild: plain
// seconds, MM:SS, and HH:MM:SS
func parseITunesDuration(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// PublishedAfter filters episodes published strictly after the cutoff
func PublishedAfter(episodes []models.Episode, cutoff time.Time) []models.Episode {
	var out []models.Episode
	for _, e := range episodes {
		if e.PublishDate.After(cutoff) {
			out = append(out, e)
		}
	}
	return out
}
