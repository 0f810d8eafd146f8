package progress

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/podkeep/podkeep/internal/models"
	"github.com/podkeep/podkeep/internal/storage"
)

// CurrentVersion is written into the progress aggregate
const CurrentVersion = 1

// Data is the playback progress aggregate, logically keyed by episode ID
type Data struct {
	Progress []models.PlayProgress `json:"progress"`
	Version  int                   `json:"version"`
}

// Store owns the playback progress aggregate
type Store struct {
	store *storage.SingleFileStore[Data]
}

// NewStore creates the progress store at the resolver's path
func NewStore(fs storage.Filesystem, paths *storage.Paths, opts storage.Options) *Store {
	hooks := storage.Hooks[Data]{
		Validate: validate,
		Default: func() Data {
			return Data{Progress: []models.PlayProgress{}, Version: CurrentVersion}
		},
	}
	return &Store{store: storage.NewSingleFileStore(fs, paths.ProgressFile(), opts, hooks)}
}

func validate(d Data) error {
	seen := make(map[string]bool, len(d.Progress))
	for _, p := range d.Progress {
		if p.EpisodeID == "" {
			return fmt.Errorf("progress entry missing episode id")
		}
		if seen[p.EpisodeID] {
			return fmt.Errorf("duplicate progress entry for episode %s", p.EpisodeID)
		}
		if p.Position < 0 {
			return fmt.Errorf("negative position for episode %s", p.EpisodeID)
		}
		seen[p.EpisodeID] = true
	}
	return nil
}

// UpdateProgress upserts the entry for an episode. Completion is derived
// from proximity to the end; the transition to completed is a critical
// write and bypasses the debounce.
func (s *Store) UpdateProgress(ctx context.Context, p models.PlayProgress) error {
	if p.LastPlayedAt.IsZero() {
		p.LastPlayedAt = time.Now()
	}
	if !p.Completed && p.NearEnd() {
		p.Completed = true
	}

	data, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	justCompleted := p.Completed
	replaced := false
	for i := range data.Progress {
		if data.Progress[i].EpisodeID == p.EpisodeID {
			justCompleted = p.Completed && !data.Progress[i].Completed
			data.Progress[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		data.Progress = append(data.Progress, p)
	}
	data.Version = CurrentVersion

	return s.store.Save(ctx, data, justCompleted)
}

// GetProgress returns the entry for an episode, if any
func (s *Store) GetProgress(ctx context.Context, episodeID string) (models.PlayProgress, bool, error) {
	data, err := s.store.Load(ctx)
	if err != nil {
		return models.PlayProgress{}, false, err
	}
	for _, p := range data.Progress {
		if p.EpisodeID == episodeID {
			return p, true, nil
		}
	}
	return models.PlayProgress{}, false, nil
}

// GetAll returns every progress entry
func (s *Store) GetAll(ctx context.Context) ([]models.PlayProgress, error) {
	data, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.Progress, nil
}

// GetCompletionPercentage returns position/duration as a percentage in
// [0,100]; 0 when no entry exists or duration is not positive
func (s *Store) GetCompletionPercentage(ctx context.Context, episodeID string) (float64, error) {
	p, ok, err := s.GetProgress(ctx, episodeID)
	if err != nil || !ok {
		return 0, err
	}
	return p.CompletionPercent(), nil
}

// MarkCompleted records an episode as finished with an immediate write
func (s *Store) MarkCompleted(ctx context.Context, episodeID, podcastID string) error {
	p, ok, err := s.GetProgress(ctx, episodeID)
	if err != nil {
		return err
	}
	if !ok {
		p = models.PlayProgress{EpisodeID: episodeID, PodcastID: podcastID}
	}
	p.Completed = true
	p.Position = p.Duration
	p.LastPlayedAt = time.Now()
	return s.UpdateProgress(ctx, p)
}

// CleanupOldProgress keeps only the keepCount most recently played entries,
// bounding unbounded history growth
func (s *Store) CleanupOldProgress(ctx context.Context, keepCount int) error {
	if keepCount < 0 {
		keepCount = 0
	}

	data, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if len(data.Progress) <= keepCount {
		return nil
	}

	sort.SliceStable(data.Progress, func(i, j int) bool {
		return data.Progress[i].LastPlayedAt.After(data.Progress[j].LastPlayedAt)
	})
	data.Progress = data.Progress[:keepCount]
	data.Version = CurrentVersion

	return s.store.Save(ctx, data, false)
}

// Import replaces or merges imported progress. With replace false the
// existing and imported entries merge by episode ID, and per collision the
// entry with the later lastPlayedAt wins.
func (s *Store) Import(ctx context.Context, imported Data, replace bool) error {
	if replace {
		imported.Version = CurrentVersion
		return s.store.Save(ctx, imported, true)
	}

	data, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]int, len(data.Progress))
	for i, p := range data.Progress {
		byID[p.EpisodeID] = i
	}

	for _, in := range imported.Progress {
		if i, ok := byID[in.EpisodeID]; ok {
			if in.LastPlayedAt.After(data.Progress[i].LastPlayedAt) {
				data.Progress[i] = in
			}
			continue
		}
		data.Progress = append(data.Progress, in)
	}
	data.Version = CurrentVersion

	return s.store.Save(ctx, data, true)
}

// Export returns the full aggregate for note-export collaborators
func (s *Store) Export(ctx context.Context) (Data, error) {
	return s.store.Load(ctx)
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
