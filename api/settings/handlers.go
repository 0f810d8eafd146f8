package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/podkeep/podkeep/api/types"
	"github.com/podkeep/podkeep/internal/models"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

// VolumeRequest is the body for setting the default volume
type VolumeRequest struct {
	Volume *float64 `json:"volume" binding:"required"`
}

// SpeedRequest is the body for setting the default playback speed
type SpeedRequest struct {
	Speed *float64 `json:"speed" binding:"required"`
}

// Get returns the current settings
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := deps.Settings.Load(c.Request.Context())
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "settings": current})
	}
}

// Update replaces the settings aggregate. Out-of-range numbers are clamped
// rather than rejected.
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var incoming models.PluginSettings
		if err := c.ShouldBindJSON(&incoming); err != nil {
			types.Error(c, apperrors.ValidationFailed("settings body is malformed"))
			return
		}

		updated, err := deps.Settings.Update(c.Request.Context(), func(s *models.PluginSettings) {
			*s = incoming
		})
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "settings": updated})
	}
}

// SetVolume sets the clamped default volume
func SetVolume(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VolumeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.Error(c, apperrors.ValidationFailed("volume is required"))
			return
		}

		if err := deps.Settings.SetVolume(c.Request.Context(), *req.Volume); err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK})
	}
}

// SetSpeed sets the clamped default playback speed
func SetSpeed(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SpeedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.Error(c, apperrors.ValidationFailed("speed is required"))
			return
		}

		if err := deps.Settings.SetPlaybackSpeed(c.Request.Context(), *req.Speed); err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK})
	}
}
