package progress

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/podkeep/podkeep/api/types"
	"github.com/podkeep/podkeep/internal/models"
	progresssvc "github.com/podkeep/podkeep/internal/services/progress"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

// CompleteRequest is the body for marking an episode finished
type CompleteRequest struct {
	PodcastID string `json:"podcastId"`
}

// ImportRequest is the body for importing progress data
type ImportRequest struct {
	Progress []models.PlayProgress `json:"progress" binding:"required"`
	Replace  bool                  `json:"replace"`
}

// List returns every progress entry
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := deps.Progress.GetAll(c.Request.Context())
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   types.StatusOK,
			"progress": entries,
			"count":    len(entries),
		})
	}
}

// Update upserts the progress entry for an episode
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var entry models.PlayProgress
		if err := c.ShouldBindJSON(&entry); err != nil {
			types.Error(c, apperrors.ValidationFailed("progress body is malformed"))
			return
		}
		if entry.EpisodeID == "" {
			types.Error(c, apperrors.ValidationFailed("episodeId is required"))
			return
		}

		if err := deps.Progress.UpdateProgress(c.Request.Context(), entry); err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK})
	}
}

// Get returns one episode's progress with its completion percentage
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		episodeID := c.Param("episodeId")

		entry, ok, err := deps.Progress.GetProgress(c.Request.Context(), episodeID)
		if err != nil {
			types.Error(c, err)
			return
		}
		if !ok {
			types.Error(c, apperrors.NotFound("progress", episodeID))
			return
		}

		c.JSON(http.StatusOK, types.ProgressResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Progress:     &entry,
			Percent:      entry.CompletionPercent(),
		})
	}
}

// Completion returns only the completion percentage, zero when unknown
func Completion(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		pct, err := deps.Progress.GetCompletionPercentage(c.Request.Context(), c.Param("episodeId"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "percent": pct})
	}
}

// Complete marks an episode as finished
func Complete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CompleteRequest
		_ = c.ShouldBindJSON(&req)

		if err := deps.Progress.MarkCompleted(c.Request.Context(), c.Param("episodeId"), req.PodcastID); err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK, Message: "Episode completed"})
	}
}

// Import merges or replaces progress data from another device
func Import(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.Error(c, apperrors.ValidationFailed("progress list is required"))
			return
		}

		data := progresssvc.Data{Progress: req.Progress}
		if err := deps.Progress.Import(c.Request.Context(), data, req.Replace); err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK, Message: "Progress imported"})
	}
}

// Export returns the full progress document
func Export(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := deps.Progress.Export(c.Request.Context())
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

// Cleanup trims progress history to the requested number of entries
func Cleanup(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		keep, err := strconv.Atoi(c.DefaultQuery("keep", "500"))
		if err != nil || keep < 0 {
			keep = 500
		}

		if err := deps.Progress.CleanupOldProgress(c.Request.Context(), keep); err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK, Message: "Progress cleaned up"})
	}
}
