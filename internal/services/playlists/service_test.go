package playlists

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkeep/podkeep/internal/storage"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(storage.NewMemoryFilesystem(), storage.NewPaths("data"))
}

func TestService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.Create(ctx, "Favorites", "best episodes")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Favorites", got.Name)
	assert.Empty(t, got.EpisodeIDs)
}

func TestService_GetMissing(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Get(ctx, "nope")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestService_AddEpisodeRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	p, err := svc.Create(ctx, "Queue-ish", "")
	require.NoError(t, err)

	_, err = svc.AddEpisode(ctx, p.ID, "e1")
	require.NoError(t, err)

	_, err = svc.AddEpisode(ctx, p.ID, "e1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAlreadyExists, apperrors.GetCode(err))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, got.EpisodeIDs)
}

func TestService_RemoveEpisode(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	p, err := svc.Create(ctx, "Mixed", "")
	require.NoError(t, err)
	_, err = svc.AddEpisode(ctx, p.ID, "e1")
	require.NoError(t, err)
	_, err = svc.AddEpisode(ctx, p.ID, "e2")
	require.NoError(t, err)

	got, err := svc.RemoveEpisode(ctx, p.ID, "e1")
	require.NoError(t, err)
	assert.Equal(t, []string{"e2"}, got.EpisodeIDs)

	_, err = svc.RemoveEpisode(ctx, p.ID, "e1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestService_Reorder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	p, err := svc.Create(ctx, "Ordered", "")
	require.NoError(t, err)
	for _, id := range []string{"e1", "e2", "e3"} {
		_, err = svc.AddEpisode(ctx, p.ID, id)
		require.NoError(t, err)
	}

	got, err := svc.Reorder(ctx, p.ID, []string{"e3", "e1", "e2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"e3", "e1", "e2"}, got.EpisodeIDs)

	// Not a permutation of the current contents
	_, err = svc.Reorder(ctx, p.ID, []string{"e3", "e1"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))

	_, err = svc.Reorder(ctx, p.ID, []string{"e3", "e1", "e9"})
	require.Error(t, err)
}

func TestService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	first, err := svc.Create(ctx, "First", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Second", "")
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.Delete(ctx, first.ID))

	all, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Second", all[0].Name)

	err = svc.Delete(ctx, first.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}
