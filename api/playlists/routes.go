package playlists

import (
	"github.com/gin-gonic/gin"

	"github.com/podkeep/podkeep/api/types"
)

// RegisterRoutes registers playlist routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("", List(deps))
	router.POST("", Create(deps))

	router.GET("/:id", Get(deps))
	router.PUT("/:id", Rename(deps))
	router.DELETE("/:id", Delete(deps))
	router.POST("/:id/episodes", AddEpisode(deps))
	router.DELETE("/:id/episodes/:episodeId", RemoveEpisode(deps))
	router.PUT("/:id/order", Reorder(deps))
}
