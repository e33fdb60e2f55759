// Package rest is the HTTP adapter exposing the feed and taste endpoints.
package rest

import (
	"context"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/avelar-labs/mixfeed/internal/core/domain"
	"github.com/avelar-labs/mixfeed/internal/core/ports"
)

// FeedService is the slice of the feed generator the HTTP layer needs.
type FeedService interface {
	GenerateHomeFeed(ctx context.Context, userID int64, forceRefresh bool) []domain.Playlist
}

// Handler manages the HTTP interface for the feed service.
type Handler struct {
	feeds  FeedService
	store  ports.TasteStore
	log    *zap.Logger
	engine *gin.Engine
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(feeds FeedService, store ports.TasteStore, logger *zap.Logger, gatherer prometheus.Gatherer) *Handler {
	engine := gin.New()
	engine.Use(RequestID())
	engine.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	engine.Use(ginzap.RecoveryWithZap(logger, true))

	h := &Handler{
		feeds:  feeds,
		store:  store,
		log:    logger,
		engine: engine,
	}
	h.routes(gatherer)
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.engine.ServeHTTP(w, r)
}

func (h *Handler) routes(gatherer prometheus.Gatherer) {
	h.engine.GET("/health", h.HealthCheck)
	h.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := h.engine.Group("/api/v1")
	api.GET("/users/:id/feed", h.GetFeed)
	api.POST("/users/:id/preferences", h.SavePreference)
	api.POST("/users/:id/history", h.RecordPlay)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
