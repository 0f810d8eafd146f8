package progress

import (
	"github.com/gin-gonic/gin"

	"github.com/podkeep/podkeep/api/types"
)

// RegisterRoutes registers playback progress routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("", List(deps))
	router.PUT("", Update(deps))
	router.POST("/import", Import(deps))
	router.GET("/export", Export(deps))
	router.POST("/cleanup", Cleanup(deps))

	router.GET("/:episodeId", Get(deps))
	router.GET("/:episodeId/completion", Completion(deps))
	router.POST("/:episodeId/complete", Complete(deps))
}
