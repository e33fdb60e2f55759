package domain

import "time"

// MinPlaylistTracks is the smallest playlist worth surfacing. Candidate sets
// that filter down below this are discarded, never padded.
const MinPlaylistTracks = 12

// SeedReason records where a seed track came from.
type SeedReason string

const (
	SeedFromLike    SeedReason = "like"
	SeedFromHistory SeedReason = "history"
)

// Seed is a transient, derived value: a track used as the basis for a
// related-tracks lookup. Recomputed on every feed generation.
type Seed struct {
	CatalogID int64
	Title     string
	Reason    SeedReason
	Score     float64
}

// Playlist is one recommended mix. The ID is synthetic
// (e.g. "mix-seed-like-42"), not a catalog or database id.
type Playlist struct {
	ID          string
	Title       string
	Description string
	Tracks      []Track
}

// TrackIDs returns the catalog ids of the playlist's tracks in order.
func (p Playlist) TrackIDs() []int64 {
	ids := make([]int64, len(p.Tracks))
	for i, t := range p.Tracks {
		ids[i] = t.CatalogID
	}
	return ids
}

// FeedEntry is the per-user cached feed: the last assembled playlists plus
// the set of catalog ids already surfaced, used to suppress repeats across
// refreshes. Entries are written once per generation and read-only after.
type FeedEntry struct {
	ExpiresAt     time.Time
	Playlists     []Playlist
	ShownTrackIDs map[int64]struct{}
}

// Expired reports whether the entry's TTL has passed at the given instant.
func (e FeedEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
