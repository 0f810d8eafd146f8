package types

import (
	"context"

	"github.com/podkeep/podkeep/internal/services/feeds"
	"github.com/podkeep/podkeep/internal/services/playlists"
	"github.com/podkeep/podkeep/internal/services/progress"
	"github.com/podkeep/podkeep/internal/services/queues"
	"github.com/podkeep/podkeep/internal/services/settings"
	"github.com/podkeep/podkeep/internal/services/subscriptions"
)

// ImageFetcher serves podcast artwork, cached on disk
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	Settings      *settings.Service
	Subscriptions *subscriptions.Store
	Progress      *progress.Store
	Playlists     *playlists.Service
	Queues        *queues.Service
	Feeds         feeds.Fetcher
	Images        ImageFetcher
}
