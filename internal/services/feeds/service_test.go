package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkeep/podkeep/internal/models"
	"github.com/podkeep/podkeep/internal/services/feedcache"
	"github.com/podkeep/podkeep/internal/services/progress"
	"github.com/podkeep/podkeep/internal/services/subscriptions"
	"github.com/podkeep/podkeep/internal/storage"
	"github.com/podkeep/podkeep/pkg/config"
)

func feedXML(episodes ...string) string {
	items := ""
	for _, id := range episodes {
		items += fmt.Sprintf(`<item><title>%s</title><guid>%s</guid>
			<enclosure url="https://example.com/%s.mp3" type="audio/mpeg" length="1"/></item>`, id, id, id)
	}
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>Show</title>` + items + `</channel></rss>`
}

func newTestService(t *testing.T, cfg config.FeedsConfig) *Service {
	t.Helper()
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryInitialDelay == 0 {
		cfg.RetryInitialDelay = time.Millisecond
	}
	if cfg.RetryMaxDelay == 0 {
		cfg.RetryMaxDelay = 5 * time.Millisecond
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "podkeep-test"
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Hour
	}

	fs := storage.NewMemoryFilesystem()
	paths := storage.NewPaths("data")
	cache := feedcache.NewFeedCache(fs, paths, cfg.CacheTTL)
	images := feedcache.NewImageCache(fs, paths, cfg.CacheTTL)
	return NewService(cfg, cache, images)
}

func TestService_FetchUsesFreshCache(t *testing.T) {
	ctx := context.Background()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, feedXML("e1"))
	}))
	defer server.Close()

	svc := newTestService(t, config.FeedsConfig{})

	_, err := svc.FetchFeed(ctx, server.URL, false)
	require.NoError(t, err)
	_, err = svc.FetchFeed(ctx, server.URL, false)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load(), "second fetch is served from cache")
}

func TestService_NotModifiedReusesCache(t *testing.T) {
	ctx := context.Background()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		fmt.Fprint(w, feedXML("e1"))
	}))
	defer server.Close()

	svc := newTestService(t, config.FeedsConfig{})

	_, err := svc.FetchFeed(ctx, server.URL, false)
	require.NoError(t, err)

	// Force a refetch: the cached validators turn it into a 304
	podcast, err := svc.FetchFeed(ctx, server.URL, true)
	require.NoError(t, err)
	require.Len(t, podcast.Episodes, 1)

	assert.Equal(t, int32(2), hits.Load())
}

func TestService_RetriesTransientFailures(t *testing.T) {
	ctx := context.Background()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, feedXML("e1"))
	}))
	defer server.Close()

	svc := newTestService(t, config.FeedsConfig{RetryAttempts: 3})

	podcast, err := svc.FetchFeed(ctx, server.URL, false)
	require.NoError(t, err)
	assert.Len(t, podcast.Episodes, 1)
	assert.Equal(t, int32(3), hits.Load())
}

func TestService_FallsBackAcrossTransports(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML("e1"))
	}))
	defer server.Close()

	svc := newTestService(t, config.FeedsConfig{})
	svc.transports = []Transport{
		failingTransport{},
		NewDirectTransport(5*time.Second, "podkeep-test"),
	}

	podcast, err := svc.FetchFeed(ctx, server.URL, false)
	require.NoError(t, err)
	assert.Len(t, podcast.Episodes, 1)
}

func TestService_ServesStaleCacheWhenAllTransportsFail(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML("e1"))
	}))

	// Zero cache TTL: the entry is stale immediately after the first fetch
	svc := newTestService(t, config.FeedsConfig{CacheTTL: time.Nanosecond})

	_, err := svc.FetchFeed(ctx, server.URL, false)
	require.NoError(t, err)

	server.Close()

	podcast, err := svc.FetchFeed(ctx, server.URL, false)
	require.NoError(t, err, "stale cache backstops a dead origin")
	assert.Len(t, podcast.Episodes, 1)
}

func TestService_UpdateFeedDetectsNewEpisodes(t *testing.T) {
	ctx := context.Background()

	var body atomic.Value
	body.Store(feedXML("e1"))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body.Load().(string))
	}))
	defer server.Close()

	svc := newTestService(t, config.FeedsConfig{})

	existing, err := svc.FetchFeed(ctx, server.URL, false)
	require.NoError(t, err)
	require.Len(t, existing.Episodes, 1)
	existing.Episodes[0].Completed = true

	body.Store(feedXML("e1", "e2"))

	updated, newEpisodes, err := svc.UpdateFeed(ctx, existing)
	require.NoError(t, err)

	require.Len(t, newEpisodes, 1)
	assert.Equal(t, "e2", newEpisodes[0].ID)

	require.Len(t, updated.Episodes, 2)
	assert.True(t, updated.Episodes[0].Completed, "per-episode state survives the refetch")
	assert.Equal(t, existing.ID, updated.ID)
}

func TestService_FetchImageCaches(t *testing.T) {
	ctx := context.Background()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte{0x89, 0x50})
	}))
	defer server.Close()

	svc := newTestService(t, config.FeedsConfig{})

	first, err := svc.FetchImage(ctx, server.URL+"/cover.png")
	require.NoError(t, err)
	second, err := svc.FetchImage(ctx, server.URL+"/cover.png")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load())
}

func TestService_SubscriptionPlaybackLifecycle(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML("e1"))
	}))
	defer server.Close()

	cfg := config.FeedsConfig{
		Timeout:           5 * time.Second,
		RetryAttempts:     3,
		RetryInitialDelay: time.Millisecond,
		RetryMaxDelay:     5 * time.Millisecond,
		UserAgent:         "podkeep-test",
		CacheTTL:          time.Hour,
	}

	// One filesystem underneath the whole stack, as in the real app
	fs := storage.NewMemoryFilesystem()
	paths := storage.NewPaths("data")
	opts := storage.Options{CacheTTL: time.Minute, DebounceDelay: time.Minute}
	svc := NewService(cfg, feedcache.NewFeedCache(fs, paths, cfg.CacheTTL), feedcache.NewImageCache(fs, paths, cfg.CacheTTL))
	subs := subscriptions.NewStore(fs, paths, opts)
	plays := progress.NewStore(fs, paths, opts)

	podcast, err := svc.FetchFeed(ctx, server.URL, false)
	require.NoError(t, err)
	require.NoError(t, subs.AddPodcast(ctx, *podcast))

	all, err := subs.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Show", all[0].Title)
	require.Len(t, all[0].Episodes, 1)

	episodeID := all[0].Episodes[0].ID
	require.NoError(t, plays.UpdateProgress(ctx, models.PlayProgress{
		EpisodeID: episodeID,
		PodcastID: all[0].ID,
		Position:  50,
		Duration:  200,
	}))

	pct, err := plays.GetCompletionPercentage(ctx, episodeID)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, pct, 0.001)
}

type failingTransport struct{}

func (failingTransport) Name() string { return "failing" }

func (failingTransport) Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error) {
	return nil, fmt.Errorf("transport unavailable")
}
