package query

import (
	"errors"
	"net/http"

	"github.com/webpbin/trafficd/internal/core/bucket"
	httperr "github.com/webpbin/trafficd/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all query API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/traffic", s.TrafficHandler)
	r.GET("/v1/traffic/total", s.TotalHandler)
	r.GET("/v1/images/top", s.TopImagesHandler)
	r.GET("/v1/images/:key/stats", s.StatsHandler)
}

// rangeQuery accepts either {days} or absolute {start,end} epoch seconds.
type rangeQuery struct {
	Days  int   `form:"days"`
	Start int64 `form:"start"`
	End   int64 `form:"end"`
}

// TrafficHandler handles GET /v1/traffic.
func (s *Service) TrafficHandler(c *gin.Context) {
	var q rangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBadRequest(c, httperr.HttpInvalidQueryError, "Invalid query parameters", err)
		return
	}

	r, err := s.rangeFromParams(q.Days, q.Start, q.End)
	if err != nil {
		writeBadRequest(c, httperr.HttpInvalidRangeError, "Invalid time range", err)
		return
	}

	series, err := s.GetTraffic(c.Request.Context(), r)
	if err != nil {
		writeQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, series)
}

// TotalHandler handles GET /v1/traffic/total.
func (s *Service) TotalHandler(c *gin.Context) {
	var q rangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBadRequest(c, httperr.HttpInvalidQueryError, "Invalid query parameters", err)
		return
	}

	r, err := s.rangeFromParams(q.Days, q.Start, q.End)
	if err != nil {
		writeBadRequest(c, httperr.HttpInvalidRangeError, "Invalid time range", err)
		return
	}

	total, err := s.GetTotalHits(c.Request.Context(), r)
	if err != nil {
		writeQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": total})
}

// TopImagesHandler handles GET /v1/images/top.
func (s *Service) TopImagesHandler(c *gin.Context) {
	var q struct {
		Days  int `form:"days"`
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBadRequest(c, httperr.HttpInvalidQueryError, "Invalid query parameters", err)
		return
	}

	totals, err := s.GetTopImages(c.Request.Context(), s.RangeForDays(q.Days), q.Limit)
	if err != nil {
		writeQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

// StatsHandler handles GET /v1/images/:key/stats.
func (s *Service) StatsHandler(c *gin.Context) {
	var uri struct {
		Key string `uri:"key" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		writeBadRequest(c, httperr.HttpInvalidKeyError, "Invalid image key", err)
		return
	}

	var q rangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBadRequest(c, httperr.HttpInvalidQueryError, "Invalid query parameters", err)
		return
	}

	r, err := s.rangeFromParams(q.Days, q.Start, q.End)
	if err != nil {
		writeBadRequest(c, httperr.HttpInvalidRangeError, "Invalid time range", err)
		return
	}

	series, err := s.GetStats(c.Request.Context(), uri.Key, r)
	if err != nil {
		writeQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, series.Data)
}

func writeBadRequest(c *gin.Context, errorType, message string, err error) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: errorType,
		Message:   message,
		Details:   err.Error(),
	})
}

func writeQueryError(c *gin.Context, err error) {
	if errors.Is(err, bucket.ErrInvalidRange) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRangeError,
			Message:   "Invalid time range",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to query traffic",
		Details:   err.Error(),
	})
}
