package settings

import (
	"github.com/gin-gonic/gin"

	"github.com/podkeep/podkeep/api/types"
)

// RegisterRoutes registers settings routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("", Get(deps))
	router.PUT("", Update(deps))
	router.PUT("/volume", SetVolume(deps))
	router.PUT("/speed", SetSpeed(deps))
}
