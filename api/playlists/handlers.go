package playlists

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/podkeep/podkeep/api/types"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

// CreateRequest is the body for creating a playlist
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// RenameRequest is the body for renaming a playlist
type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

// EpisodeRequest is the body for adding an episode
type EpisodeRequest struct {
	EpisodeID string `json:"episodeId" binding:"required"`
}

// ReorderRequest is the body for reordering a playlist
type ReorderRequest struct {
	EpisodeIDs []string `json:"episodeIds" binding:"required"`
}

// List returns every playlist
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		playlists, err := deps.Playlists.List(c.Request.Context())
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    types.StatusOK,
			"playlists": playlists,
			"count":     len(playlists),
		})
	}
}

// Create makes a new playlist
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.Error(c, apperrors.ValidationFailed("name is required"))
			return
		}

		playlist, err := deps.Playlists.Create(c.Request.Context(), req.Name, req.Description)
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": types.StatusOK, "playlist": playlist})
	}
}

// Get returns one playlist
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		playlist, err := deps.Playlists.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "playlist": playlist})
	}
}

// Rename changes a playlist's name
func Rename(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RenameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.Error(c, apperrors.ValidationFailed("name is required"))
			return
		}

		playlist, err := deps.Playlists.Rename(c.Request.Context(), c.Param("id"), req.Name)
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "playlist": playlist})
	}
}

// Delete removes a playlist
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.Playlists.Delete(c.Request.Context(), c.Param("id")); err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK, Message: "Playlist deleted"})
	}
}

// AddEpisode appends an episode to a playlist
func AddEpisode(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EpisodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.Error(c, apperrors.ValidationFailed("episodeId is required"))
			return
		}

		playlist, err := deps.Playlists.AddEpisode(c.Request.Context(), c.Param("id"), req.EpisodeID)
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "playlist": playlist})
	}
}

// RemoveEpisode removes an episode from a playlist
func RemoveEpisode(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		playlist, err := deps.Playlists.RemoveEpisode(c.Request.Context(), c.Param("id"), c.Param("episodeId"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "playlist": playlist})
	}
}

// Reorder replaces a playlist's episode ordering
func Reorder(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReorderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.Error(c, apperrors.ValidationFailed("episodeIds is required"))
			return
		}

		playlist, err := deps.Playlists.Reorder(c.Request.Context(), c.Param("id"), req.EpisodeIDs)
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "playlist": playlist})
	}
}
