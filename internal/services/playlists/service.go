package playlists

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/podkeep/podkeep/internal/models"
	"github.com/podkeep/podkeep/internal/storage"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

// Service manages user playlists, one JSON file per playlist
type Service struct {
	store *storage.MultiFileStore[models.Playlist]
}

// NewService creates the playlist store under the resolver's playlists dir
func NewService(fs storage.Filesystem, paths *storage.Paths) *Service {
	hooks := storage.Hooks[models.Playlist]{
		Validate: func(p models.Playlist) error {
			if !p.Valid() {
				return fmt.Errorf("playlist missing id or name")
			}
			return nil
		},
		Default: func() models.Playlist { return models.Playlist{} },
	}
	return &Service{store: storage.NewMultiFileStore(fs, paths.PlaylistsDir(), hooks)}
}

// Create makes a new playlist with a generated ID
func (s *Service) Create(ctx context.Context, name, description string) (*models.Playlist, error) {
	now := time.Now()
	playlist := models.Playlist{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		EpisodeIDs:  []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.SaveItem(ctx, playlist.ID, playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// Get returns one playlist by ID
func (s *Service) Get(ctx context.Context, id string) (*models.Playlist, error) {
	if !s.store.Exists(ctx, id) {
		return nil, apperrors.NotFound("playlist", id)
	}
	playlist, err := s.store.LoadItem(ctx, id, models.Playlist{})
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

// List returns every playlist, sorted by creation time
func (s *Service) List(ctx context.Context) ([]models.Playlist, error) {
	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(ids))
	for _, id := range ids {
		p, err := s.store.LoadItem(ctx, id, models.Playlist{})
		if err != nil {
			return nil, err
		}
		if p.ID == "" {
			continue
		}
		playlists = append(playlists, p)
	}

	sort.SliceStable(playlists, func(i, j int) bool {
		return playlists[i].CreatedAt.Before(playlists[j].CreatedAt)
	})
	return playlists, nil
}

// Update applies a mutation to an existing playlist and persists it
func (s *Service) Update(ctx context.Context, id string, mutate func(*models.Playlist) error) (*models.Playlist, error) {
	playlist, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(playlist); err != nil {
		return nil, err
	}
	playlist.UpdatedAt = time.Now()
	if err := s.store.SaveItem(ctx, id, *playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// Rename changes the playlist's display name
func (s *Service) Rename(ctx context.Context, id, name string) (*models.Playlist, error) {
	if name == "" {
		return nil, apperrors.ValidationFailed("playlist name cannot be empty")
	}
	return s.Update(ctx, id, func(p *models.Playlist) error {
		p.Name = name
		return nil
	})
}

// AddEpisode appends an episode, rejecting duplicates
func (s *Service) AddEpisode(ctx context.Context, id, episodeID string) (*models.Playlist, error) {
	return s.Update(ctx, id, func(p *models.Playlist) error {
		if p.Contains(episodeID) {
			return apperrors.AlreadyExists("episode", episodeID)
		}
		p.EpisodeIDs = append(p.EpisodeIDs, episodeID)
		return nil
	})
}

// RemoveEpisode removes an episode from the playlist
func (s *Service) RemoveEpisode(ctx context.Context, id, episodeID string) (*models.Playlist, error) {
	return s.Update(ctx, id, func(p *models.Playlist) error {
		if !p.Remove(episodeID) {
			return apperrors.NotFound("episode", episodeID)
		}
		return nil
	})
}

// Reorder replaces the playlist's episode ordering. The new ordering must be
// a permutation of the existing one.
func (s *Service) Reorder(ctx context.Context, id string, episodeIDs []string) (*models.Playlist, error) {
	return s.Update(ctx, id, func(p *models.Playlist) error {
		if len(episodeIDs) != len(p.EpisodeIDs) {
			return apperrors.ValidationFailed("reorder must include every episode exactly once")
		}
		existing := make(map[string]int, len(p.EpisodeIDs))
		for _, eid := range p.EpisodeIDs {
			existing[eid]++
		}
		for _, eid := range episodeIDs {
			if existing[eid] == 0 {
				return apperrors.ValidationFailed("reorder must include every episode exactly once")
			}
			existing[eid]--
		}
		p.EpisodeIDs = episodeIDs
		return nil
	})
}

// Delete removes a playlist
func (s *Service) Delete(ctx context.Context, id string) error {
	if !s.store.Exists(ctx, id) {
		return apperrors.NotFound("playlist", id)
	}
	return s.store.DeleteItem(ctx, id)
}
