package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/statkit/outlier/pkg/dataset"
	"github.com/statkit/outlier/pkg/stat"
	"github.com/statkit/outlier/pkg/version"
)

const defaultPercentile = 95.0

type CalculateRequest struct {
	Values []float64 `json:"values"`

	// Percentile defaults to 95 when absent from the request body.
	Percentile *float64 `json:"percentile"`
}

type CalculateResponse struct {
	Count      int     `json:"count"`
	Percentile float64 `json:"percentile"`
	Result     float64 `json:"result"`
}

func (s *Server) calculate(c *gin.Context) {
	var payload CalculateRequest
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.Wrap(err, "invalid request body").Error()})
		return
	}

	percentile := defaultPercentile
	if payload.Percentile != nil {
		percentile = *payload.Percentile
	}

	s.respondCalculation(c, payload.Values, percentile)
}

func (s *Server) calculateFile(c *gin.Context) {
	percentile := defaultPercentile
	if text := c.PostForm("percentile"); text != "" {
		if p, err := strconv.ParseFloat(text, 64); err == nil {
			percentile = p
		}
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided, send a file field with your data"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.Wrap(err, "failed to read upload").Error()})
		return
	}
	defer f.Close()

	format := dataset.DetectFormat(fileHeader.Filename)
	if format == dataset.FormatUnsupported {
		c.JSON(http.StatusBadRequest, gin.H{"error": dataset.ErrUnsupportedFormat.Error()})
		return
	}

	values, err := dataset.Parse(f, format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.respondCalculation(c, values, percentile)
}

func (s *Server) respondCalculation(c *gin.Context, values []float64, percentile float64) {
	s.Metrics.DatasetSize.Observe(float64(len(values)))

	start := time.Now()
	result, err := stat.Percentile(values, percentile)
	s.Metrics.ComputeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, CalculateResponse{
		Count:      len(values),
		Percentile: percentile,
		Result:     result,
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "outlier",
		"version": version.Version,
	})
}
