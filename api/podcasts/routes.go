package podcasts

import (
	"github.com/gin-gonic/gin"

	"github.com/podkeep/podkeep/api/types"
)

// RegisterRoutes registers podcast subscription routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("", List(deps))
	router.POST("", Subscribe(deps))
	router.GET("/search", Search(deps))
	router.GET("/export", Export(deps))
	router.POST("/refresh", RefreshAll(deps))
	router.GET("/image", Image(deps))

	router.GET("/:id", GetByID(deps))
	router.DELETE("/:id", Unsubscribe(deps))
	router.POST("/:id/refresh", Refresh(deps))
	router.PUT("/:id/settings", UpdateSettings(deps))
	router.GET("/:id/episodes", Episodes(deps))
}
