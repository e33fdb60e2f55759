package ports

import (
	"context"

	"github.com/avelar-labs/mixfeed/internal/core/domain"
)

// CatalogProvider is the external music catalog consumed as a black-box
// data source. Both calls are best-effort: the feed generator treats any
// error as "no candidates from this source" and keeps going.
type CatalogProvider interface {
	// SearchTracks runs a free-text search and returns up to limit tracks
	// in the catalog's relevance order.
	SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error)

	// RelatedTracks returns up to limit tracks related to the given
	// catalog track id, in the catalog's ranking order.
	RelatedTracks(ctx context.Context, catalogTrackID int64, limit int) ([]domain.Track, error)
}
