package queues

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

// Service manages playback queues, one JSON file per queue. Navigation
// mutates CurrentIndex and persists the queue so position survives restarts.
type Service struct {
	store *storage.MultiFileStore[models.Queue]
}

// NewService creates the queue store under the resolver's queues dir
func NewService(fs storage.Filesystem, paths *storage.Paths) *Service {
	hooks := storage.Hooks[models.Queue]{
		Validate: func(q models.Queue) error {
			if !q.Valid() {
				return fmt.Errorf("queue violates structural invariants")
			}
			return nil
		},
		Default: func() models.Queue { return models.Queue{} },
	}
	return &Service{store: storage.NewMultiFileStore(fs, paths.QueuesDir(), hooks)}
}

// Create makes a new queue with a generated ID
func (s *Service) Create(ctx context.Context, name string) (*models.Queue, error) {
	if name == "" {
		return nil, apperrors.ValidationFailed("queue name cannot be empty")
	}
	now := time.Now()
	queue := models.Queue{
		ID:         uuid.New().String(),
		Name:       name,
		EpisodeIDs: []string{},
		Repeat:     models.RepeatNone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.SaveItem(ctx, queue.ID, queue); err != nil {
		return nil, err
	}
	return &queue, nil
}

// Get returns one queue by ID
func (s *Service) Get(ctx context.Context, id string) (*models.Queue, error) {
	if !s.store.Exists(ctx, id) {
		return nil, apperrors.NotFound("queue", id)
	}
	queue, err := s.store.LoadItem(ctx, id, models.Queue{})
	if err != nil {
		return nil, err
	}
	return &queue, nil
}

// List returns every queue, sorted by creation time
func (s *Service) List(ctx context.Context) ([]models.Queue, error) {
	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	queues := make([]models.Queue, 0, len(ids))
	for _, id := range ids {
		q, err := s.store.LoadItem(ctx, id, models.Queue{})
		if err != nil {
			return nil, err
		}
		if q.ID == "" {
			continue
		}
		queues = append(queues, q)
	}

	sort.SliceStable(queues, func(i, j int) bool {
		return queues[i].CreatedAt.Before(queues[j].CreatedAt)
	})
	return queues, nil
}

// Update applies a mutation to an existing queue and persists it
func (s *Service) Update(ctx context.Context, id string, mutate func(*models.Queue) error) (*models.Queue, error) {
	queue, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(queue); err != nil {
		return nil, err
	}
	queue.UpdatedAt = time.Now()
	if err := s.store.SaveItem(ctx, id, *queue); err != nil {
		return nil, err
	}
	return queue, nil
}

// AddEpisode appends an episode to the end of the queue
func (s *Service) AddEpisode(ctx context.Context, id, episodeID string) (*models.Queue, error) {
	return s.Update(ctx, id, func(q *models.Queue) error {
		q.Add(episodeID)
		return nil
	})
}

// RemoveEpisode removes an episode, keeping the current pointer consistent
func (s *Service) RemoveEpisode(ctx context.Context, id, episodeID string) (*models.Queue, error) {
	return s.Update(ctx, id, func(q *models.Queue) error {
		if !q.Remove(episodeID) {
			return apperrors.NotFound("episode", episodeID)
		}
		return nil
	})
}

// SetRepeat changes the queue's repeat mode
func (s *Service) SetRepeat(ctx context.Context, id string, mode models.RepeatMode) (*models.Queue, error) {
	return s.Update(ctx, id, func(q *models.Queue) error {
		switch mode {
		case models.RepeatNone, models.RepeatOne, models.RepeatAll:
			q.Repeat = mode
			return nil
		default:
			return apperrors.ValidationFailed(fmt.Sprintf("unknown repeat mode %q", mode))
		}
	})
}

// Next advances the queue and persists the new position. At the end of the
// queue without repeat "all" the position is left unchanged and ok is false.
func (s *Service) Next(ctx context.Context, id string) (episodeID string, ok bool, err error) {
	_, err = s.Update(ctx, id, func(q *models.Queue) error {
		episodeID, ok = q.Next()
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return episodeID, ok, nil
}

// Previous moves the queue backwards and persists the new position
func (s *Service) Previous(ctx context.Context, id string) (episodeID string, ok bool, err error) {
	_, err = s.Update(ctx, id, func(q *models.Queue) error {
		episodeID, ok = q.Previous()
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return episodeID, ok, nil
}

// Current returns the episode at the queue's current position
func (s *Service) Current(ctx context.Context, id string) (string, bool, error) {
	queue, err := s.Get(ctx, id)
	if err != nil {
		return "", false, err
	}
	episodeID, ok := queue.Current()
	return episodeID, ok, nil
}

// Delete removes a queue
func (s *Service) Delete(ctx context.Context, id string) error {
	if !s.store.Exists(ctx, id) {
		return apperrors.NotFound("queue", id)
	}
	return s.store.DeleteItem(ctx, id)
}
