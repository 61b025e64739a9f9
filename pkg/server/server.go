// Package server exposes the percentile calculation over HTTP.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/statkit/outlier/pkg/config"
	"github.com/statkit/outlier/pkg/metrics"
)

type Server struct {
	Config  *config.Config
	Metrics *metrics.Metrics

	srv *http.Server
}

func New(cfg *config.Config, m *metrics.Metrics) *Server {
	return &Server{
		Config:  cfg,
		Metrics: m,
	}
}

func (s *Server) newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestID())
	r.Use(s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	r.POST("/calculate", s.calculate)
	r.POST("/calculate/file", s.calculateFile)
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	return r
}

// Run serves the API until ctx is canceled, then shuts down gracefully,
// giving in-flight requests 5 seconds to finish.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    s.Config.ListenAddr(),
		Handler: s.newEngine(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	logrus.Infof("outlier API server listening on http://%s", s.srv.Addr)

	select {
	case err := <-errCh:
		return err

	case <-ctx.Done():
		logrus.Info("shutting down web server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("server forced to shutdown")
			return err
		}

		logrus.Info("server shutdown completed")
		return nil
	}
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		status := c.Writer.Status()
		s.Metrics.RequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()

		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString("requestID"),
			"method":     c.Request.Method,
			"path":       path,
			"status":     status,
			"duration":   time.Since(start),
		}).Debug("request handled")
	}
}
