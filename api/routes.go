package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/podkeep/podkeep/api/health"
	"github.com/podkeep/podkeep/api/playlists"
	"github.com/podkeep/podkeep/api/podcasts"
	"github.com/podkeep/podkeep/api/progress"
	"github.com/podkeep/podkeep/api/queues"
	"github.com/podkeep/podkeep/api/settings"
	"github.com/podkeep/podkeep/api/types"
	"github.com/podkeep/podkeep/api/version"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies) error {
	if deps == nil {
		return fmt.Errorf("handler dependencies are nil")
	}

	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Status:  types.StatusError,
			Message: "Route not found",
		})
	})

	v1 := engine.Group("/api/v1")
	podcasts.RegisterRoutes(v1.Group("/podcasts"), deps)
	progress.RegisterRoutes(v1.Group("/progress"), deps)
	playlists.RegisterRoutes(v1.Group("/playlists"), deps)
	queues.RegisterRoutes(v1.Group("/queues"), deps)
	settings.RegisterRoutes(v1.Group("/settings"), deps)

	return nil
}
