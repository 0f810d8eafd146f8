package podcasts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkeep/podkeep/api/types"
	"github.com/podkeep/podkeep/internal/models"
	"github.com/podkeep/podkeep/internal/services/subscriptions"
	"github.com/podkeep/podkeep/internal/storage"
)

// Mock fetcher for testing
type mockFetcher struct {
	fetchFunc  func(ctx context.Context, feedURL string, forceRefresh bool) (*models.Podcast, error)
	updateFunc func(ctx context.Context, existing *models.Podcast) (*models.Podcast, []models.Episode, error)
}

func (m *mockFetcher) FetchFeed(ctx context.Context, feedURL string, forceRefresh bool) (*models.Podcast, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, feedURL, forceRefresh)
	}
	return &models.Podcast{
		ID:      models.PodcastIDFromFeedURL(feedURL),
		Title:   "Mock Show",
		FeedURL: feedURL,
	}, nil
}

func (m *mockFetcher) UpdateFeed(ctx context.Context, existing *models.Podcast) (*models.Podcast, []models.Episode, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, existing)
	}
	return existing, nil, nil
}

func newTestRouter(t *testing.T, fetcher *mockFetcher) (*gin.Engine, *types.Dependencies) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fs := storage.NewMemoryFilesystem()
	paths := storage.NewPaths("data")
	deps := &types.Dependencies{
		Subscriptions: subscriptions.NewStore(fs, paths, storage.Options{CacheTTL: time.Minute, DebounceDelay: time.Minute}),
		Feeds:         fetcher,
	}

	engine := gin.New()
	RegisterRoutes(engine.Group("/api/v1/podcasts"), deps)
	return engine, deps
}

func TestSubscribe(t *testing.T) {
	engine, deps := newTestRouter(t, &mockFetcher{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/podcasts",
		strings.NewReader(`{"feedUrl":"https://example.com/feed.xml"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp types.SinglePodcastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, types.StatusOK, resp.Status)
	assert.Equal(t, "Mock Show", resp.Podcast.Title)

	stored, err := deps.Subscriptions.GetByFeedURL(context.Background(), "https://example.com/feed.xml")
	require.NoError(t, err)
	assert.Equal(t, "Mock Show", stored.Title)
}

func TestSubscribe_DuplicateConflicts(t *testing.T) {
	engine, _ := newTestRouter(t, &mockFetcher{})

	body := `{"feedUrl":"https://example.com/feed.xml"}`

	first := httptest.NewRequest(http.MethodPost, "/api/v1/podcasts", strings.NewReader(body))
	first.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, first)
	require.Equal(t, http.StatusCreated, w.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/podcasts", strings.NewReader(body))
	second.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, second)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubscribe_MissingBody(t *testing.T) {
	engine, _ := newTestRouter(t, &mockFetcher{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/podcasts", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetByID_NotFound(t *testing.T) {
	engine, _ := newTestRouter(t, &mockFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/podcasts/missing", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefresh_ReportsNewEpisodes(t *testing.T) {
	fetcher := &mockFetcher{
		updateFunc: func(ctx context.Context, existing *models.Podcast) (*models.Podcast, []models.Episode, error) {
			updated := *existing
			updated.Episodes = []models.Episode{{ID: "e1", PodcastID: existing.ID, AudioURL: "https://example.com/e1.mp3"}}
			return &updated, updated.Episodes, nil
		},
	}
	engine, deps := newTestRouter(t, fetcher)

	podcast := models.Podcast{
		ID:      "abc123",
		Title:   "Show",
		FeedURL: "https://example.com/feed.xml",
	}
	require.NoError(t, deps.Subscriptions.AddPodcast(context.Background(), podcast))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/podcasts/abc123/refresh", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp types.RefreshResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.NewEpisodes, 1)
	assert.Equal(t, "e1", resp.NewEpisodes[0].ID)

	stored, err := deps.Subscriptions.GetByID(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Len(t, stored.Episodes, 1)
	assert.NotNil(t, stored.LastFetchedAt)
}

func TestUnsubscribe(t *testing.T) {
	engine, deps := newTestRouter(t, &mockFetcher{})

	require.NoError(t, deps.Subscriptions.AddPodcast(context.Background(), models.Podcast{
		ID: "abc123", Title: "Show", FeedURL: "https://example.com/feed.xml",
	}))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/podcasts/abc123", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	_, err := deps.Subscriptions.GetByID(context.Background(), "abc123")
	assert.Error(t, err)
}
