package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/avelar-labs/mixfeed/internal/core/domain"
)

type trackPayload struct {
	ID         int64  `json:"id" binding:"required"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Genre      string `json:"genre"`
	DurationMs int    `json:"duration_ms"`
}

func (p trackPayload) toDomain() domain.Track {
	return domain.Track{
		CatalogID:  p.ID,
		Title:      p.Title,
		Artist:     p.Artist,
		Genre:      p.Genre,
		DurationMs: p.DurationMs,
	}
}

type preferenceRequest struct {
	Track      trackPayload `json:"track" binding:"required"`
	Preference string       `json:"preference" binding:"required,oneof=like dislike"`
}

type historyRequest struct {
	Track          trackPayload `json:"track" binding:"required"`
	PlayDurationMs int          `json:"play_duration_ms"`
}

// SavePreference handles POST /api/v1/users/:id/preferences
func (h *Handler) SavePreference(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pref := domain.Preference{
		Track:     req.Track.toDomain(),
		Kind:      domain.PreferenceKind(req.Preference),
		CreatedAt: time.Now(),
	}
	if err := h.store.SavePreference(c.Request.Context(), userID, pref); err != nil {
		h.log.Error("save preference failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save preference"})
		return
	}

	c.Status(http.StatusNoContent)
}

// RecordPlay handles POST /api/v1/users/:id/history
func (h *Handler) RecordPlay(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	event := domain.PlayEvent{
		Track:          req.Track.toDomain(),
		PlayedAt:       time.Now(),
		PlayDurationMs: req.PlayDurationMs,
	}
	if err := h.store.RecordPlay(c.Request.Context(), userID, event); err != nil {
		h.log.Error("record play failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record play"})
		return
	}

	c.Status(http.StatusNoContent)
}
