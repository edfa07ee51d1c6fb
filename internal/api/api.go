// Package api implements the HTTP API for starting and inspecting crawl runs.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/procrawler/internal/config"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
)

const readHeaderTimeout = 10 * time.Second

// SetupRouter creates the gin router. metricsHandler may be nil.
func SetupRouter(log logger.Interface, runs *RunManager, metricsHandler http.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := router.Group("/api/v1")
	v1.POST("/runs", handleStartRun(runs))
	v1.GET("/runs", func(c *gin.Context) {
		list := runs.List()
		c.JSON(http.StatusOK, gin.H{"runs": list, "total": len(list)})
	})
	v1.GET("/runs/:id", func(c *gin.Context) {
		summary, err := runs.Get(c.Param("id"))
		if errors.Is(err, ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	return router
}

// NewServer wraps router in an http.Server configured from cfg.
func NewServer(cfg *config.ServerConfig, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// handleStartRun decodes run input from the body and starts a run.
func handleStartRun(runs *RunManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := map[string]any{}
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
				return
			}
		}

		raw, err := config.DecodeInput(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		in, err := raw.Resolve()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		summary := runs.Start(in)
		c.JSON(http.StatusAccepted, summary)
	}
}

// loggingMiddleware creates a middleware that logs HTTP requests
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("HTTP Request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
