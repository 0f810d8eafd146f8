package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"reflect"

	"github.com/podkeep/podkeep/internal/models"
	"github.com/podkeep/podkeep/internal/storage"
)

// Service owns the persisted user settings aggregate
type Service struct {
	fs    storage.Filesystem
	store *storage.SingleFileStore[models.PluginSettings]
}

// NewService creates the settings store at the resolver's settings path
func NewService(fs storage.Filesystem, paths *storage.Paths, opts storage.Options) *Service {
	hooks := storage.Hooks[models.PluginSettings]{
		Validate: func(s models.PluginSettings) error {
			if !s.Valid() {
				return fmt.Errorf("settings outside documented ranges")
			}
			return nil
		},
		Default: models.DefaultPluginSettings,
	}
	return &Service{
		fs:    fs,
		store: storage.NewSingleFileStore(fs, paths.SettingsFile(), opts, hooks),
	}
}

// Load returns the current settings
func (s *Service) Load(ctx context.Context) (models.PluginSettings, error) {
	return s.store.Load(ctx)
}

// LoadWithMigration loads the settings with missing fields backfilled from
// defaults, and persists the merged result only when it differs
// structurally from what was on disk. Old settings files gain new fields
// without a version-bump mechanism.
func (s *Service) LoadWithMigration(ctx context.Context) (models.PluginSettings, error) {
	raw, err := s.fs.ReadFile(ctx, s.store.Path())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[WARN] Could not read settings for migration: %v", err)
		}
		// First run: persist the defaults so the file exists
		defaults := models.DefaultPluginSettings()
		if saveErr := s.store.Save(ctx, defaults, true); saveErr != nil {
			return defaults, saveErr
		}
		return defaults, nil
	}

	merged, err := s.store.Load(ctx)
	if err != nil {
		return merged, err
	}

	var onDisk models.PluginSettings
	if unmarshalErr := json.Unmarshal(raw, &onDisk); unmarshalErr != nil || !reflect.DeepEqual(merged, onDisk) {
		log.Printf("[INFO] Migrating settings file with backfilled defaults")
		if saveErr := s.store.Save(ctx, merged, false); saveErr != nil {
			return merged, saveErr
		}
	}

	return merged, nil
}

// Save validates and persists the full settings aggregate
func (s *Service) Save(ctx context.Context, settings models.PluginSettings, immediate bool) error {
	return s.store.Save(ctx, settings, immediate)
}

// Update applies a mutation to the current settings and persists the
// result debounced
func (s *Service) Update(ctx context.Context, mutate func(*models.PluginSettings)) (models.PluginSettings, error) {
	current, err := s.store.Load(ctx)
	if err != nil {
		return current, err
	}
	mutate(&current)
	current = current.Normalize()
	if err := s.store.Save(ctx, current, false); err != nil {
		return current, err
	}
	return current, nil
}

// SetVolume clamps and persists the default volume
func (s *Service) SetVolume(ctx context.Context, volume float64) error {
	_, err := s.Update(ctx, func(st *models.PluginSettings) {
		st.DefaultPlaybackSettings.Volume = models.ClampVolume(volume)
	})
	return err
}

// SetPlaybackSpeed clamps and persists the default playback speed
func (s *Service) SetPlaybackSpeed(ctx context.Context, speed float64) error {
	_, err := s.Update(ctx, func(st *models.PluginSettings) {
		st.DefaultPlaybackSettings.PlaybackSpeed = models.ClampPlaybackSpeed(speed)
	})
	return err
}

// Flush writes any pending debounced settings change
func (s *Service) Flush(ctx context.Context) error {
	return s.store.Flush(ctx)
}

// InvalidateCache forces the next load to hit disk
func (s *Service) InvalidateCache() {
	s.store.InvalidateCache()
}

// Clear resets the settings file to defaults
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
