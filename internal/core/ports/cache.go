package ports

import "github.com/avelar-labs/mixfeed/internal/core/domain"

// FeedCache is a per-user key-value store for assembled feeds. It stores
// entries verbatim; TTL policy lives in the feed generator, which checks
// Expired on read. This keeps the backend swappable between the in-process
// map used in a single-instance deployment and a shared external cache.
type FeedCache interface {
	Get(userID int64) (domain.FeedEntry, bool)
	Set(userID int64, entry domain.FeedEntry)
}
