package feeds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/podkeep/podkeep/internal/models"
	"github.com/podkeep/podkeep/internal/services/feedcache"
	"github.com/podkeep/podkeep/pkg/config"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

// Fetcher is the feed-fetching surface consumed by the subscription flows
type Fetcher interface {
	FetchFeed(ctx context.Context, feedURL string, forceRefresh bool) (*models.Podcast, error)
	UpdateFeed(ctx context.Context, existing *models.Podcast) (*models.Podcast, []models.Episode, error)
}

// Service fetches, parses, and caches podcast feeds. Transports are tried
// in order; each one either produces a document, proves the cache is still
// valid, or hands off to the next.
type Service struct {
	cfg        config.FeedsConfig
	cache      *feedcache.FeedCache
	images     *feedcache.ImageCache
	parser     *Parser
	transports []Transport
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewService builds the feed service from configuration
func NewService(cfg config.FeedsConfig, cache *feedcache.FeedCache, images *feedcache.ImageCache) *Service {
	transports := []Transport{
		NewRetryTransport(cfg.Timeout, cfg.UserAgent, cfg.RetryAttempts, cfg.RetryInitialDelay, cfg.RetryMaxDelay),
		NewDirectTransport(cfg.Timeout, cfg.UserAgent),
	}
	if cfg.AllowInsecureFallback {
		transports = append(transports, NewRawTransport(cfg.Timeout, cfg.UserAgent))
	}

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}

	return &Service{
		cfg:        cfg,
		cache:      cache,
		images:     images,
		parser:     NewParser(),
		transports: transports,
		limiter:    rate.NewLimiter(limit, 1),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchFeed returns the parsed podcast for a feed URL. Without forceRefresh
// a fresh cache entry short-circuits the network entirely; a stale entry
// contributes its validators so an unchanged feed costs only a 304.
func (s *Service) FetchFeed(ctx context.Context, feedURL string, forceRefresh bool) (*models.Podcast, error) {
	cached, haveCached, fresh := s.cache.Get(ctx, feedURL)
	if haveCached && fresh && !forceRefresh {
		return s.parser.Parse(feedURL, cached.Data)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NetworkError(feedURL, err)
	}

	req := FetchRequest{URL: feedURL}
	if haveCached {
		req.ETag = cached.ETag
		req.LastModified = cached.LastModified
	}

	result, err := s.fetchWithFallback(ctx, req)
	if errors.Is(err, ErrNotModified) {
		log.Printf("[DEBUG] Feed unchanged (304): %s", feedURL)
		if touchErr := s.cache.Touch(ctx, feedURL); touchErr != nil {
			log.Printf("[WARN] Could not refresh cache entry for %s: %v", feedURL, touchErr)
		}
		return s.parser.Parse(feedURL, cached.Data)
	}
	if err != nil {
		if haveCached {
			// Every transport failed but we still hold a stale copy
			log.Printf("[WARN] All transports failed for %s, serving stale cache: %v", feedURL, err)
			return s.parser.Parse(feedURL, cached.Data)
		}
		return nil, err
	}

	podcast, err := s.parser.Parse(feedURL, result.Body)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Put(ctx, feedURL, result.Body, result.ETag, result.LastModified); cacheErr != nil {
		log.Printf("[WARN] Could not cache feed %s: %v", feedURL, cacheErr)
	} else if evictErr := s.cache.Evict(ctx, s.cfg.MaxCacheEntries); evictErr != nil {
		log.Printf("[WARN] Feed cache eviction failed: %v", evictErr)
	}

	return podcast, nil
}

func (s *Service) fetchWithFallback(ctx context.Context, req FetchRequest) (*FetchResult, error) {
	var lastErr error
	for _, transport := range s.transports {
		result, err := transport.Fetch(ctx, req)
		if err == nil {
			log.Printf("[DEBUG] Fetched %s via %s transport", req.URL, transport.Name())
			return result, nil
		}
		if errors.Is(err, ErrNotModified) {
			return nil, err
		}
		log.Printf("[DEBUG] Transport %s failed for %s: %v", transport.Name(), req.URL, err)
		lastErr = err
	}
	return nil, apperrors.NetworkError(req.URL, lastErr)
}

// UpdateFeed refetches a subscribed podcast and returns the refreshed
// podcast plus the episodes that were not present before. Per-episode user
// state carries over from the existing episode list.
func (s *Service) UpdateFeed(ctx context.Context, existing *models.Podcast) (*models.Podcast, []models.Episode, error) {
	fetched, err := s.FetchFeed(ctx, existing.FeedURL, true)
	if err != nil {
		return nil, nil, err
	}

	known := make(map[string]models.Episode, len(existing.Episodes))
	for _, e := range existing.Episodes {
		known[e.ID] = e
	}

	var newEpisodes []models.Episode
	for i := range fetched.Episodes {
		prev, seen := known[fetched.Episodes[i].ID]
		if !seen {
			newEpisodes = append(newEpisodes, fetched.Episodes[i])
			continue
		}
		fetched.Episodes[i].Completed = prev.Completed
		fetched.Episodes[i].Favorited = prev.Favorited
	}

	// Identity and subscription metadata stay with the existing podcast
	fetched.ID = existing.ID
	fetched.FeedURL = existing.FeedURL
	fetched.SubscribedAt = existing.SubscribedAt
	fetched.Settings = existing.Settings

	return fetched, newEpisodes, nil
}

// FetchImage returns podcast artwork, from the image cache when fresh
func (s *Service) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if data, ok, fresh := s.images.Get(ctx, imageURL); ok && fresh {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, apperrors.NetworkError(imageURL, err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// A stale cached copy beats no artwork at all
		if data, ok, _ := s.images.Get(ctx, imageURL); ok {
			return data, nil
		}
		return nil, apperrors.NetworkError(imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if data, ok, _ := s.images.Get(ctx, imageURL); ok {
			return data, nil
		}
		return nil, apperrors.NetworkError(imageURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, apperrors.NetworkError(imageURL, err)
	}

	if cacheErr := s.images.Put(ctx, imageURL, data); cacheErr != nil {
		log.Printf("[WARN] Could not cache image %s: %v", imageURL, cacheErr)
	} else if evictErr := s.images.EvictBySize(ctx, s.cfg.MaxImageCacheBytes); evictErr != nil {
		log.Printf("[WARN] Image cache eviction failed: %v", evictErr)
	}

	return data, nil
}
