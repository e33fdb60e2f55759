package domain

import "strings"

// Track represents a catalog track in the domain layer. Identity is the
// catalog's integer id, not a local database id.
type Track struct {
	CatalogID  int64
	Title      string
	Artist     string
	Genre      string // optional
	DurationMs int
}

// Valid reports whether the track carries a usable catalog id.
func (t Track) Valid() bool {
	return t.CatalogID > 0
}

// ArtistKey returns the artist name used for diversification counting.
// Tracks without an artist share the "unknown" bucket.
func (t Track) ArtistKey() string {
	name := strings.TrimSpace(t.Artist)
	if name == "" {
		return "unknown"
	}
	return name
}
