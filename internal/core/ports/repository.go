package ports

import (
	"context"
	"time"

	"github.com/avelar-labs/mixfeed/internal/core/domain"
)

// TasteRepository provides the persisted taste signals the feed generator
// reads. All listings are ordered most-recent-first.
type TasteRepository interface {
	DetailedPreferences(ctx context.Context, userID int64, limit int) ([]domain.Preference, error)
	ListeningHistory(ctx context.Context, userID int64, limit int) ([]domain.PlayEvent, error)
	DislikedCatalogIDs(ctx context.Context, userID int64, limit int) ([]int64, error)
}

// TasteStore extends the repository with the write paths used by the ingest
// endpoints and the background refresher.
type TasteStore interface {
	TasteRepository

	// SavePreference upserts the (user, track) preference row.
	SavePreference(ctx context.Context, userID int64, pref domain.Preference) error

	// RecordPlay appends a listening history row.
	RecordPlay(ctx context.Context, userID int64, event domain.PlayEvent) error

	// RecentlyActiveUsers lists users with any preference or play activity
	// since the given instant, up to limit.
	RecentlyActiveUsers(ctx context.Context, since time.Time, limit int) ([]int64, error)
}
