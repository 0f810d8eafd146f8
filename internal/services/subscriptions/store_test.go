package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkeep/podkeep/internal/models"
	"github.com/podkeep/podkeep/internal/storage"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

func newTestStore(t *testing.T) (*Store, *storage.MemoryFilesystem) {
	t.Helper()
	fs := storage.NewMemoryFilesystem()
	store := NewStore(fs, storage.NewPaths("data"), storage.Options{CacheTTL: time.Minute, DebounceDelay: time.Minute})
	return store, fs
}

func testPodcast(id, feedURL string) models.Podcast {
	return models.Podcast{
		ID:      id,
		Title:   "Show " + id,
		FeedURL: feedURL,
	}
}

func TestStore_AddAndGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.AddPodcast(ctx, testPodcast("p1", "https://a.example/feed")))

	byID, err := store.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Show p1", byID.Title)
	assert.False(t, byID.SubscribedAt.IsZero(), "subscription time is stamped")

	byURL, err := store.GetByFeedURL(ctx, "https://a.example/feed")
	require.NoError(t, err)
	assert.Equal(t, "p1", byURL.ID)
}

func TestStore_AddPreservesImmutableFields(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.AddPodcast(ctx, testPodcast("p1", "https://a.example/feed")))
	original, err := store.GetByID(ctx, "p1")
	require.NoError(t, err)

	// A second add with a different feed URL cannot change identity
	replacement := testPodcast("p1", "https://evil.example/feed")
	replacement.Title = "Renamed"
	require.NoError(t, store.AddPodcast(ctx, replacement))

	got, err := store.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "https://a.example/feed", got.FeedURL)
	assert.Equal(t, original.SubscribedAt, got.SubscribedAt)
}

func TestStore_UpdateMissingPodcast(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	err := store.UpdatePodcast(ctx, testPodcast("ghost", "https://g.example/feed"))

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestStore_UpdateEpisodesStampsLastFetched(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.AddPodcast(ctx, testPodcast("p1", "https://a.example/feed")))

	episodes := []models.Episode{{ID: "e1", PodcastID: "p1", AudioURL: "https://a.example/e1.mp3"}}
	require.NoError(t, store.UpdatePodcastEpisodes(ctx, "p1", episodes))

	got, err := store.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got.Episodes, 1)
	require.NotNil(t, got.LastFetchedAt)
}

func TestStore_RemovePodcastWritesImmediately(t *testing.T) {
	ctx := context.Background()
	store, fs := newTestStore(t)

	require.NoError(t, store.AddPodcast(ctx, testPodcast("p1", "https://a.example/feed")))
	require.NoError(t, store.RemovePodcast(ctx, "p1"))

	_, err := store.GetByID(ctx, "p1")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))

	// Unsubscribes bypass the debounce
	raw, err := fs.ReadFile(ctx, "data/subscriptions.json")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "p1")
}

func TestStore_GetPodcastsNeedingUpdate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.AddPodcast(ctx, testPodcast("never", "https://n.example/feed")))

	fresh := testPodcast("fresh", "https://f.example/feed")
	now := time.Now()
	fresh.LastFetchedAt = &now
	require.NoError(t, store.AddPodcast(ctx, fresh))

	stale := testPodcast("stale", "https://s.example/feed")
	old := now.Add(-2 * time.Hour)
	stale.LastFetchedAt = &old
	require.NoError(t, store.AddPodcast(ctx, stale))

	due, err := store.GetPodcastsNeedingUpdate(ctx, time.Hour)
	require.NoError(t, err)

	ids := make([]string, 0, len(due))
	for _, p := range due {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"never", "stale"}, ids)
}

func TestStore_SearchPodcasts(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	tech := testPodcast("p1", "https://a.example/feed")
	tech.Title = "Go Time"
	tech.Author = "Changelog"
	require.NoError(t, store.AddPodcast(ctx, tech))

	news := testPodcast("p2", "https://b.example/feed")
	news.Title = "Daily News"
	require.NoError(t, store.AddPodcast(ctx, news))

	matches, err := store.SearchPodcasts(ctx, "go")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "p1", matches[0].ID)

	matches, err = store.SearchPodcasts(ctx, "CHANGELOG")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	matches, err = store.SearchPodcasts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, matches, 2, "empty query matches everything")
}

func TestStore_ExportOrdersBySubscriptionTime(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	later := testPodcast("later", "https://l.example/feed")
	later.SubscribedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AddPodcast(ctx, later))

	earlier := testPodcast("earlier", "https://e.example/feed")
	earlier.SubscribedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AddPodcast(ctx, earlier))

	data, err := store.Export(ctx)
	require.NoError(t, err)
	require.Len(t, data.Podcasts, 2)
	assert.Equal(t, "earlier", data.Podcasts[0].ID)
	assert.Equal(t, CurrentVersion, data.Version)
}
