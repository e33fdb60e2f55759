package catalog

import "github.com/avelar-labs/mixfeed/internal/core/domain"

// catalogTrack represents the catalog API response for a track.
type catalogTrack struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Genre      string `json:"genre,omitempty"`
	DurationMs int    `json:"duration_ms"`
	User       struct {
		Username string `json:"username"`
	} `json:"user"`
}

// trackListResponse wraps the catalog's list envelope.
type trackListResponse struct {
	Data []catalogTrack `json:"data"`
}

// toDomain converts a catalogTrack to a domain.Track.
func (ct catalogTrack) toDomain() domain.Track {
	return domain.Track{
		CatalogID:  ct.ID,
		Title:      ct.Title,
		Artist:     ct.User.Username,
		Genre:      ct.Genre,
		DurationMs: ct.DurationMs,
	}
}

func mapTracksToDomain(raw []catalogTrack) []domain.Track {
	tracks := make([]domain.Track, len(raw))
	for i, ct := range raw {
		tracks[i] = ct.toDomain()
	}
	return tracks
}
