package ingest

import (
	"net/http"

	httperr "github.com/webpbin/trafficd/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// maxKeyLength bounds image keys well above anything the uploader
// generates; longer values are junk, not traffic.
const maxKeyLength = 512

// RegisterRoutes registers the ingestion routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/hits/:key", s.HitHandler)
}

// HitHandler handles POST /v1/hits/:key. Fire-and-forget: the response
// never reflects storage trouble, only an unusable key.
func (s *Service) HitHandler(c *gin.Context) {
	key := c.Param("key")
	if key == "" || len(key) > maxKeyLength {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidKeyError,
			Message:   "Image key must be 1-512 characters",
		})
		return
	}

	s.RecordHit(c.Request.Context(), key)

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
