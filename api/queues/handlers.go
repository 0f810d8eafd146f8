package queues

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/podkeep/podkeep/api/types"
	"github.com/podkeep/podkeep/internal/models"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

// CreateRequest is the body for creating a queue
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// EpisodeRequest is the body for adding an episode
type EpisodeRequest struct {
	EpisodeID string `json:"episodeId" binding:"required"`
}

// RepeatRequest is the body for changing the repeat mode
type RepeatRequest struct {
	Repeat models.RepeatMode `json:"repeat" binding:"required"`
}

// List returns every queue
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		queues, err := deps.Queues.List(c.Request.Context())
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": types.StatusOK,
			"queues": queues,
			"count":  len(queues),
		})
	}
}

// Create makes a new queue
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.Error(c, apperrors.ValidationFailed("name is required"))
			return
		}

		queue, err := deps.Queues.Create(c.Request.Context(), req.Name)
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": types.StatusOK, "queue": queue})
	}
}

// Get returns one queue
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		queue, err := deps.Queues.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "queue": queue})
	}
}

// Delete removes a queue
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.Queues.Delete(c.Request.Context(), c.Param("id")); err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK, Message: "Queue deleted"})
	}
}

// AddEpisode appends an episode to a queue
func AddEpisode(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EpisodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.Error(c, apperrors.ValidationFailed("episodeId is required"))
			return
		}

		queue, err := deps.Queues.AddEpisode(c.Request.Context(), c.Param("id"), req.EpisodeID)
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "queue": queue})
	}
}

// RemoveEpisode removes an episode from a queue
func RemoveEpisode(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		queue, err := deps.Queues.RemoveEpisode(c.Request.Context(), c.Param("id"), c.Param("episodeId"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "queue": queue})
	}
}

// Current returns the episode at the queue's playback position
func Current(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		episodeID, ok, err := deps.Queues.Current(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "episodeId": episodeID, "hasCurrent": ok})
	}
}

// Next advances the queue
func Next(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		episodeID, ok, err := deps.Queues.Next(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "episodeId": episodeID, "advanced": ok})
	}
}

// Previous moves the queue backwards
func Previous(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		episodeID, ok, err := deps.Queues.Previous(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "episodeId": episodeID, "moved": ok})
	}
}

// SetRepeat changes the queue's repeat mode
func SetRepeat(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RepeatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.Error(c, apperrors.ValidationFailed("repeat is required"))
			return
		}

		queue, err := deps.Queues.SetRepeat(c.Request.Context(), c.Param("id"), req.Repeat)
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "queue": queue})
	}
}
