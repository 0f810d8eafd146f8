package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is stamped at build time
var Version = "dev"

// Get handles version requests
func Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "podkeep",
			"version":     Version,
			"description": "Podcast subscription and playback state manager",
			"status":      "running",
		})
	}
}
