package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperbridge/version"
)

type versionResponse struct {
	version.Info
	Backend string `json:"backend,omitempty"`
}

// Version reports the build identity and the engine backend in use.
func Version(backend string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, versionResponse{
			Info:    version.GetVersionInfo(),
			Backend: backend,
		})
	}
}
