package queues

import (
	"github.com/gin-gonic/gin"

	"github.com/podkeep/podkeep/api/types"
)

// RegisterRoutes registers playback queue routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("", List(deps))
	router.POST("", Create(deps))

	router.GET("/:id", Get(deps))
	router.DELETE("/:id", Delete(deps))
	router.POST("/:id/episodes", AddEpisode(deps))
	router.DELETE("/:id/episodes/:episodeId", RemoveEpisode(deps))
	router.GET("/:id/current", Current(deps))
	router.POST("/:id/next", Next(deps))
	router.POST("/:id/previous", Previous(deps))
	router.PUT("/:id/repeat", SetRepeat(deps))
}
