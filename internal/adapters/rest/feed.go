package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avelar-labs/mixfeed/internal/core/domain"
)

type trackResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Genre      string `json:"genre,omitempty"`
	DurationMs int    `json:"duration_ms"`
}

type playlistResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Tracks      []trackResponse `json:"tracks"`
}

type feedResponse struct {
	Playlists []playlistResponse `json:"playlists"`
}

// GetFeed handles GET /api/v1/users/:id/feed
//
// The generator never fails, so this endpoint always answers 200; an empty
// playlists array means "no recommendations available now".
func (h *Handler) GetFeed(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	forceRefresh := c.Query("refresh") == "true"
	playlists := h.feeds.GenerateHomeFeed(c.Request.Context(), userID, forceRefresh)

	c.JSON(http.StatusOK, toFeedResponse(playlists))
}

func toFeedResponse(playlists []domain.Playlist) feedResponse {
	out := make([]playlistResponse, len(playlists))
	for i, p := range playlists {
		tracks := make([]trackResponse, len(p.Tracks))
		for j, t := range p.Tracks {
			tracks[j] = trackResponse{
				ID:         t.CatalogID,
				Title:      t.Title,
				Artist:     t.Artist,
				Genre:      t.Genre,
				DurationMs: t.DurationMs,
			}
		}
		out[i] = playlistResponse{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Tracks:      tracks,
		}
	}
	return feedResponse{Playlists: out}
}
