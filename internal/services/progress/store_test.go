package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkeep/podkeep/internal/models"
	"github.com/podkeep/podkeep/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.MemoryFilesystem) {
	t.Helper()
	fs := storage.NewMemoryFilesystem()
	paths := storage.NewPaths("data")
	store := NewStore(fs, paths, storage.Options{CacheTTL: time.Minute, DebounceDelay: time.Minute})
	return store, fs
}

func TestStore_UpdateAndGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.UpdateProgress(ctx, models.PlayProgress{
		EpisodeID: "e1", PodcastID: "p1", Position: 120, Duration: 3600,
	}))

	got, ok, err := store.GetProgress(ctx, "e1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 120, got.Position)
	assert.False(t, got.Completed)
	assert.False(t, got.LastPlayedAt.IsZero(), "lastPlayedAt is stamped when missing")
}

func TestStore_UpdateUpsertsByEpisode(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.UpdateProgress(ctx, models.PlayProgress{EpisodeID: "e1", Position: 10, Duration: 100}))
	require.NoError(t, store.UpdateProgress(ctx, models.PlayProgress{EpisodeID: "e1", Position: 20, Duration: 100}))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 20, all[0].Position)
}

func TestStore_CompletionDerivedNearEnd(t *testing.T) {
	ctx := context.Background()
	store, fs := newTestStore(t)

	// Ten seconds from the end counts as completed
	require.NoError(t, store.UpdateProgress(ctx, models.PlayProgress{
		EpisodeID: "e1", Position: 3590, Duration: 3600,
	}))

	got, ok, err := store.GetProgress(ctx, "e1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Completed)

	// The completion transition bypasses the debounce
	assert.True(t, fs.Exists(ctx, "data/progress.json"))
}

func TestStore_CompletionPercentage(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.UpdateProgress(ctx, models.PlayProgress{
		EpisodeID: "e1", Position: 900, Duration: 3600,
	}))

	pct, err := store.GetCompletionPercentage(ctx, "e1")
	require.NoError(t, err)
	assert.InDelta(t, 25.0, pct, 0.001)

	pct, err = store.GetCompletionPercentage(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, pct)
}

func TestStore_MarkCompleted(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.MarkCompleted(ctx, "e1", "p1"))

	got, ok, err := store.GetProgress(ctx, "e1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Completed)
	assert.Equal(t, "p1", got.PodcastID)
}

func TestStore_CleanupKeepsMostRecent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, store.UpdateProgress(ctx, models.PlayProgress{
			EpisodeID:    id,
			Position:     1,
			Duration:     100,
			LastPlayedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	require.NoError(t, store.CleanupOldProgress(ctx, 2))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	ids := []string{all[0].EpisodeID, all[1].EpisodeID}
	assert.ElementsMatch(t, []string{"new", "mid"}, ids)
}

func TestStore_ImportMergeLaterWins(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	early := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	require.NoError(t, store.UpdateProgress(ctx, models.PlayProgress{
		EpisodeID: "e1", Position: 10, Duration: 100, LastPlayedAt: late,
	}))
	require.NoError(t, store.UpdateProgress(ctx, models.PlayProgress{
		EpisodeID: "e2", Position: 10, Duration: 100, LastPlayedAt: early,
	}))

	imported := Data{Progress: []models.PlayProgress{
		{EpisodeID: "e1", Position: 99, Duration: 100, LastPlayedAt: early}, // older, loses
		{EpisodeID: "e2", Position: 55, Duration: 100, LastPlayedAt: late},  // newer, wins
		{EpisodeID: "e3", Position: 5, Duration: 100, LastPlayedAt: late},   // new entry
	}}

	require.NoError(t, store.Import(ctx, imported, false))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	byID := make(map[string]models.PlayProgress)
	for _, p := range all {
		byID[p.EpisodeID] = p
	}
	assert.Equal(t, 10, byID["e1"].Position)
	assert.Equal(t, 55, byID["e2"].Position)
	assert.Equal(t, 5, byID["e3"].Position)
}

func TestStore_ImportReplace(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.UpdateProgress(ctx, models.PlayProgress{EpisodeID: "e1", Position: 10, Duration: 100}))

	imported := Data{Progress: []models.PlayProgress{
		{EpisodeID: "e9", Position: 1, Duration: 100, LastPlayedAt: time.Now()},
	}}
	require.NoError(t, store.Import(ctx, imported, true))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "e9", all[0].EpisodeID)
}

func TestTracker_SavesOnStop(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	tracker := NewTracker(store, time.Hour)
	tracker.Update(models.PlayProgress{EpisodeID: "e1", Position: 42, Duration: 100})
	tracker.Stop(true)

	got, ok, err := store.GetProgress(ctx, "e1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 42, got.Position)
}
