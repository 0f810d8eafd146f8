package podcasts

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/podkeep/podkeep/api/types"
	"github.com/podkeep/podkeep/internal/models"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

// SubscribeRequest is the body for creating a subscription
type SubscribeRequest struct {
	FeedURL string `json:"feedUrl" binding:"required"`
}

// UpdateSettingsRequest is the body for per-podcast playback overrides
type UpdateSettingsRequest struct {
	Settings *models.PodcastSettings `json:"settings" binding:"required"`
}

// List returns every subscribed podcast
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		podcasts, err := deps.Subscriptions.GetAll(c.Request.Context())
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.PodcastsResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Podcasts:     podcasts,
			Count:        len(podcasts),
		})
	}
}

// Subscribe fetches a feed and adds it to the subscription list
func Subscribe(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.Error(c, apperrors.ValidationFailed("feedUrl is required"))
			return
		}

		feedURL := strings.TrimSpace(req.FeedURL)
		ctx := c.Request.Context()

		if existing, err := deps.Subscriptions.GetByFeedURL(ctx, feedURL); err == nil {
			types.Error(c, apperrors.AlreadyExists("podcast", existing.ID))
			return
		}

		podcast, err := deps.Feeds.FetchFeed(ctx, feedURL, false)
		if err != nil {
			types.Error(c, err)
			return
		}

		if err := deps.Subscriptions.AddPodcast(ctx, *podcast); err != nil {
			types.Error(c, err)
			return
		}

		c.JSON(http.StatusCreated, types.SinglePodcastResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Subscribed"},
			Podcast:      podcast,
		})
	}
}

// GetByID returns one subscription
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		podcast, err := deps.Subscriptions.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.SinglePodcastResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Podcast:      podcast,
		})
	}
}

// Unsubscribe removes a subscription
func Unsubscribe(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.Subscriptions.RemovePodcast(c.Request.Context(), c.Param("id")); err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK, Message: "Unsubscribed"})
	}
}

// Refresh refetches one podcast's feed and reports new episodes
func Refresh(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		podcast, err := deps.Subscriptions.GetByID(ctx, c.Param("id"))
		if err != nil {
			types.Error(c, err)
			return
		}

		updated, newEpisodes, err := deps.Feeds.UpdateFeed(ctx, podcast)
		if err != nil {
			types.Error(c, err)
			return
		}

		if err := deps.Subscriptions.UpdatePodcastEpisodes(ctx, updated.ID, updated.Episodes); err != nil {
			types.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, types.RefreshResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Podcast:      updated,
			NewEpisodes:  newEpisodes,
		})
	}
}

// RefreshAll refetches every podcast that is due for an update
func RefreshAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		settings, err := deps.Settings.Load(ctx)
		if err != nil {
			types.Error(c, err)
			return
		}
		interval := settings.FeedUpdateInterval()

		due, err := deps.Subscriptions.GetPodcastsNeedingUpdate(ctx, interval)
		if err != nil {
			types.Error(c, err)
			return
		}

		var allNew []models.Episode
		refreshed, failed := 0, 0
		for i := range due {
			updated, newEpisodes, err := deps.Feeds.UpdateFeed(ctx, &due[i])
			if err != nil {
				log.Printf("[WARN] Refresh failed for %s: %v", due[i].FeedURL, err)
				failed++
				continue
			}
			if err := deps.Subscriptions.UpdatePodcastEpisodes(ctx, updated.ID, updated.Episodes); err != nil {
				log.Printf("[WARN] Could not persist episodes for %s: %v", updated.ID, err)
				failed++
				continue
			}
			allNew = append(allNew, newEpisodes...)
			refreshed++
		}

		c.JSON(http.StatusOK, types.RefreshResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			NewEpisodes:  allNew,
			Refreshed:    refreshed,
			Failed:       failed,
		})
	}
}

// UpdateSettings replaces a podcast's playback overrides
func UpdateSettings(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.Error(c, apperrors.ValidationFailed("settings body is required"))
			return
		}

		if err := deps.Subscriptions.UpdatePodcastSettings(c.Request.Context(), c.Param("id"), req.Settings); err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK, Message: "Settings updated"})
	}
}

// Episodes returns a podcast's episode list
func Episodes(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		podcast, err := deps.Subscriptions.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.EpisodesResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Episodes:     podcast.Episodes,
			Count:        len(podcast.Episodes),
		})
	}
}

// Search filters subscriptions by title or author
func Search(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		matches, err := deps.Subscriptions.SearchPodcasts(c.Request.Context(), c.Query("q"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.PodcastsResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Podcasts:     matches,
			Count:        len(matches),
		})
	}
}

// Export returns the full subscription document
func Export(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := deps.Subscriptions.Export(c.Request.Context())
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

// Image serves podcast artwork through the on-disk image cache
func Image(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		url := c.Query("url")
		if url == "" {
			types.Error(c, apperrors.ValidationFailed("url query parameter is required"))
			return
		}

		data, err := deps.Images.FetchImage(c.Request.Context(), url)
		if err != nil {
			types.Error(c, err)
			return
		}
		c.Data(http.StatusOK, http.DetectContentType(data), data)
	}
}
