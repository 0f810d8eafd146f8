package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/podkeep/podkeep/api/types"
	"github.com/podkeep/podkeep/internal/services/feedcache"
	"github.com/podkeep/podkeep/internal/services/feeds"
	"github.com/podkeep/podkeep/internal/services/playlists"
	"github.com/podkeep/podkeep/internal/services/progress"
	"github.com/podkeep/podkeep/internal/services/queues"
	"github.com/podkeep/podkeep/internal/services/settings"
	"github.com/podkeep/podkeep/internal/services/subscriptions"
	"github.com/podkeep/podkeep/internal/storage"
	"github.com/podkeep/podkeep/pkg/config"
)

// App wires the storage layer and every service together. One App owns the
// data directory for its lifetime.
type App struct {
	cfg   *config.Config
	fs    storage.Filesystem
	paths *storage.Paths

	Settings      *settings.Service
	Subscriptions *subscriptions.Store
	Progress      *progress.Store
	Playlists     *playlists.Service
	Queues        *queues.Service
	Feeds         *feeds.Service
}

// New builds the application from configuration, creating the data
// directory layout and migrating the settings file when needed
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	fs := storage.NewOSFilesystem()
	paths := storage.NewPaths(cfg.Storage.DataDir)

	if err := paths.EnsureLayout(ctx, fs); err != nil {
		return nil, fmt.Errorf("creating data layout: %w", err)
	}

	opts := storage.Options{
		CacheTTL:      cfg.Storage.CacheTTL,
		DebounceDelay: cfg.Storage.DebounceDelay,
	}

	feedCache := feedcache.NewFeedCache(fs, paths, cfg.Feeds.CacheTTL)
	imageCache := feedcache.NewImageCache(fs, paths, cfg.Feeds.CacheTTL)

	a := &App{
		cfg:           cfg,
		fs:            fs,
		paths:         paths,
		Settings:      settings.NewService(fs, paths, opts),
		Subscriptions: subscriptions.NewStore(fs, paths, opts),
		Progress:      progress.NewStore(fs, paths, opts),
		Playlists:     playlists.NewService(fs, paths),
		Queues:        queues.NewService(fs, paths),
		Feeds:         feeds.NewService(cfg.Feeds, feedCache, imageCache),
	}

	if _, err := a.Settings.LoadWithMigration(ctx); err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	return a, nil
}

// Dependencies returns the handler dependency bundle for the HTTP server
func (a *App) Dependencies() *types.Dependencies {
	return &types.Dependencies{
		Settings:      a.Settings,
		Subscriptions: a.Subscriptions,
		Progress:      a.Progress,
		Playlists:     a.Playlists,
		Queues:        a.Queues,
		Feeds:         a.Feeds,
		Images:        a.Feeds,
	}
}

// Flush writes every pending debounced change to disk
func (a *App) Flush(ctx context.Context) error {
	var firstErr error
	for name, flush := range map[string]func(context.Context) error{
		"settings":      a.Settings.Flush,
		"subscriptions": a.Subscriptions.Flush,
		"progress":      a.Progress.Flush,
	} {
		if err := flush(ctx); err != nil {
			log.Printf("[ERROR] Could not flush %s: %v", name, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Shutdown flushes pending writes, snapshots the data directory, and
// rotates old backups
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.Flush(ctx); err != nil {
		return err
	}

	dest, err := a.paths.CreateBackup(ctx, a.fs, time.Now())
	if err != nil {
		log.Printf("[WARN] Backup failed: %v", err)
		return nil
	}
	log.Printf("[INFO] Created backup %s", dest)

	if err := a.paths.RotateBackups(ctx, a.fs, a.cfg.Backups.Keep); err != nil {
		log.Printf("[WARN] Backup rotation failed: %v", err)
	}
	return nil
}
