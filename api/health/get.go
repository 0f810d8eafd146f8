package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/podkeep/podkeep/api/types"
)

// Get reports service health, including whether the data directory is
// readable
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		storageStatus := "ok"
		if _, err := deps.Subscriptions.GetAll(c.Request.Context()); err != nil {
			storageStatus = "degraded"
		}

		status := http.StatusOK
		if storageStatus != "ok" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":  storageStatus,
			"storage": storageStatus,
		})
	}
}
