package subscriptions

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/podkeep/podkeep/internal/models"
	"github.com/podkeep/podkeep/internal/storage"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

// CurrentVersion is written into the subscriptions aggregate
const CurrentVersion = 1

// Data is the subscriptions aggregate document
type Data struct {
	Podcasts []models.Podcast `json:"podcasts"`
	Version  int              `json:"version"`
}

// Store owns the subscriptions aggregate. All mutation is read-modify-write
// of the full in-memory aggregate followed by a (usually debounced) save.
type Store struct {
	store *storage.SingleFileStore[Data]
}

// NewStore creates the subscription store at the resolver's path
func NewStore(fs storage.Filesystem, paths *storage.Paths, opts storage.Options) *Store {
	hooks := storage.Hooks[Data]{
		Validate: validate,
		Default: func() Data {
			return Data{Podcasts: []models.Podcast{}, Version: CurrentVersion}
		},
	}
	return &Store{store: storage.NewSingleFileStore(fs, paths.SubscriptionsFile(), opts, hooks)}
}

func validate(d Data) error {
	seenIDs := make(map[string]bool, len(d.Podcasts))
	seenURLs := make(map[string]bool, len(d.Podcasts))
	for _, p := range d.Podcasts {
		if p.ID == "" || p.FeedURL == "" {
			return fmt.Errorf("podcast missing id or feed url")
		}
		if seenIDs[p.ID] {
			return fmt.Errorf("duplicate podcast id %s", p.ID)
		}
		if seenURLs[p.FeedURL] {
			return fmt.Errorf("duplicate feed url %s", p.FeedURL)
		}
		seenIDs[p.ID] = true
		seenURLs[p.FeedURL] = true
	}
	return nil
}

// GetAll returns every subscribed podcast
func (s *Store) GetAll(ctx context.Context) ([]models.Podcast, error) {
	data, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.Podcasts, nil
}

// GetByID returns one podcast by its stable identifier
func (s *Store) GetByID(ctx context.Context, id string) (*models.Podcast, error) {
	data, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range data.Podcasts {
		if data.Podcasts[i].ID == id {
			p := data.Podcasts[i]
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("podcast", id)
}

// GetByFeedURL returns one podcast by its feed URL
func (s *Store) GetByFeedURL(ctx context.Context, feedURL string) (*models.Podcast, error) {
	data, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range data.Podcasts {
		if data.Podcasts[i].FeedURL == feedURL {
			p := data.Podcasts[i]
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("podcast", feedURL)
}

// AddPodcast upserts a podcast by ID: an existing subscription is updated
// in place, a new one appended. Creation happens only here; the Update*
// methods require prior existence.
func (s *Store) AddPodcast(ctx context.Context, podcast models.Podcast) error {
	return s.mutate(ctx, false, func(d *Data) error {
		for i := range d.Podcasts {
			if d.Podcasts[i].ID == podcast.ID {
				// Preserve the immutable creation fields
				podcast.FeedURL = d.Podcasts[i].FeedURL
				podcast.SubscribedAt = d.Podcasts[i].SubscribedAt
				d.Podcasts[i] = podcast
				return nil
			}
		}
		if podcast.SubscribedAt.IsZero() {
			podcast.SubscribedAt = time.Now()
		}
		d.Podcasts = append(d.Podcasts, podcast)
		return nil
	})
}

// UpdatePodcast replaces an existing podcast
func (s *Store) UpdatePodcast(ctx context.Context, podcast models.Podcast) error {
	return s.mutate(ctx, false, func(d *Data) error {
		for i := range d.Podcasts {
			if d.Podcasts[i].ID == podcast.ID {
				podcast.FeedURL = d.Podcasts[i].FeedURL
				d.Podcasts[i] = podcast
				return nil
			}
		}
		return apperrors.NotFound("podcast", podcast.ID)
	})
}

// UpdatePodcastSettings replaces the per-podcast playback overrides
func (s *Store) UpdatePodcastSettings(ctx context.Context, id string, settings *models.PodcastSettings) error {
	return s.mutate(ctx, false, func(d *Data) error {
		for i := range d.Podcasts {
			if d.Podcasts[i].ID == id {
				d.Podcasts[i].Settings = settings
				return nil
			}
		}
		return apperrors.NotFound("podcast", id)
	})
}

// UpdatePodcastEpisodes replaces a podcast's episode collection and stamps
// lastFetchedAt
func (s *Store) UpdatePodcastEpisodes(ctx context.Context, id string, episodes []models.Episode) error {
	return s.mutate(ctx, false, func(d *Data) error {
		for i := range d.Podcasts {
			if d.Podcasts[i].ID == id {
				now := time.Now()
				d.Podcasts[i].Episodes = episodes
				d.Podcasts[i].LastFetchedAt = &now
				return nil
			}
		}
		return apperrors.NotFound("podcast", id)
	})
}

// RemovePodcast unsubscribes. Removal of the last reference is a critical
// transition, so the write bypasses the debounce.
func (s *Store) RemovePodcast(ctx context.Context, id string) error {
	return s.mutate(ctx, true, func(d *Data) error {
		for i := range d.Podcasts {
			if d.Podcasts[i].ID == id {
				d.Podcasts = append(d.Podcasts[:i], d.Podcasts[i+1:]...)
				return nil
			}
		}
		return apperrors.NotFound("podcast", id)
	})
}

// GetPodcastsNeedingUpdate returns podcasts never fetched or last fetched
// longer than interval ago
func (s *Store) GetPodcastsNeedingUpdate(ctx context.Context, interval time.Duration) ([]models.Podcast, error) {
	data, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var due []models.Podcast
	for _, p := range data.Podcasts {
		if p.NeedsUpdate(interval, now) {
			due = append(due, p)
		}
	}
	return due, nil
}

// SearchPodcasts performs a case-insensitive substring match over podcast
// title and author
func (s *Store) SearchPodcasts(ctx context.Context, query string) ([]models.Podcast, error) {
	data, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	var matches []models.Podcast
	for _, p := range data.Podcasts {
		if p.MatchesQuery(query) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// Export returns the full aggregate, podcasts ordered by subscription time
func (s *Store) Export(ctx context.Context) (Data, error) {
	data, err := s.store.Load(ctx)
	if err != nil {
		return Data{}, err
	}
	sort.SliceStable(data.Podcasts, func(i, j int) bool {
		return data.Podcasts[i].SubscribedAt.Before(data.Podcasts[j].SubscribedAt)
	})
	return data, nil
}

// Flush writes any pending debounced change
func (s *Store) Flush(ctx context.Context) error {
	return s.store.Flush(ctx)
}

// InvalidateCache forces the next load to hit disk
func (s *Store) InvalidateCache() {
	s.store.InvalidateCache()
}

// Clear resets the aggregate to empty
func (s *Store) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

func (s *Store) mutate(ctx context.Context, immediate bool, fn func(*Data) error) error {
	data, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&data); err != nil {
		return err
	}
	data.Version = CurrentVersion
	return s.store.Save(ctx, data, immediate)
}
