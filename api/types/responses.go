package types

import (
	"github.com/gin-gonic/gin"

	"github.com/podkeep/podkeep/internal/models"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

// Status constants for API responses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// BaseResponse contains fields common to all API responses
type BaseResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the shape of every error body
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// PodcastsResponse for podcast lists
type PodcastsResponse struct {
	BaseResponse
	Podcasts []models.Podcast `json:"podcasts"`
	Count    int              `json:"count"`
}

// SinglePodcastResponse for one podcast
type SinglePodcastResponse struct {
	BaseResponse
	Podcast *models.Podcast `json:"podcast"`
}

// EpisodesResponse for episode lists
type EpisodesResponse struct {
	BaseResponse
	Episodes []models.Episode `json:"episodes"`
	Count    int              `json:"count"`
}

// RefreshResponse reports the outcome of a feed refresh
type RefreshResponse struct {
	BaseResponse
	Podcast     *models.Podcast  `json:"podcast,omitempty"`
	NewEpisodes []models.Episode `json:"newEpisodes"`
	Refreshed   int              `json:"refreshed,omitempty"`
	Failed      int              `json:"failed,omitempty"`
}

// ProgressResponse for one progress entry
type ProgressResponse struct {
	BaseResponse
	Progress *models.PlayProgress `json:"progress,omitempty"`
	Percent  float64              `json:"percent"`
}

// Error writes the canonical error body for an application error
func Error(c *gin.Context, err error) {
	c.JSON(apperrors.GetHTTPCode(err), ErrorResponse{
		Status:  StatusError,
		Message: apperrors.UserMessage(err),
		Code:    string(apperrors.GetCode(err)),
		Details: err.Error(),
	})
}
