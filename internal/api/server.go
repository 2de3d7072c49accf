package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/internal/stats"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Handler serves read-only session state and counted vehicle history
type Handler struct {
	publisher *stats.Publisher
	// nil when persistence is disabled
	repo   store.CountRepository
	health func() error
	logger *logrus.Logger
}

// NewHandler creates new Handler. repo and health may be nil
func NewHandler(publisher *stats.Publisher, repo store.CountRepository, health func() error, logger *logrus.Logger) *Handler {
	return &Handler{
		publisher: publisher,
		repo:      repo,
		health:    health,
		logger:    logger,
	}
}

// NewRouter builds gin engine with all routes
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(h.logger))
	h.RegisterRoutes(router)
	return router
}

// RegisterRoutes registers routes on router
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/count", h.Count)
		v1.GET("/vehicles", h.ListVehicles)
		v1.GET("/vehicles/latest", h.LatestVehicle)
	}
}

// Health reports service and database state
func (h *Handler) Health(c *gin.Context) {
	snapshot := h.publisher.Snapshot()
	if h.health != nil {
		if err := h.health(); err != nil {
			h.logger.WithError(err).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"running": snapshot.Running,
				"error":   err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"running": snapshot.Running,
	})
}

// Count returns live counting snapshot. With "since" (RFC3339) it returns
// number of persisted vehicles detected at or after that time instead.
func (h *Handler) Count(c *gin.Context) {
	sinceParam := c.Query("since")
	if sinceParam == "" {
		c.JSON(http.StatusOK, h.publisher.Snapshot())
		return
	}
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is disabled"})
		return
	}
	since, err := time.Parse(time.RFC3339, sinceParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC3339 timestamp"})
		return
	}
	count, err := h.repo.CountSince(c.Request.Context(), since)
	if err != nil {
		h.logger.WithError(err).Error("Can't count vehicles")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"since": since,
		"count": count,
	})
}

// ListVehicles returns persisted vehicles newest first
func (h *Handler) ListVehicles(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is disabled"})
		return
	}
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil || limit < 1 || limit > maxLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number from 1 to 500"})
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative number"})
		return
	}

	records, total, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Can't list vehicles")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"vehicles": records,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// LatestVehicle returns most recently counted vehicle
func (h *Handler) LatestVehicle(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is disabled"})
		return
	}
	record, err := h.repo.Latest(c.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no vehicles counted yet"})
			return
		}
		h.logger.WithError(err).Error("Can't get latest vehicle")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func queryInt(c *gin.Context, key string, defaultValue int) (int, error) {
	value := c.Query(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("HTTP request")
	}
}
