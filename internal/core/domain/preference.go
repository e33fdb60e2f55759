package domain

import "time"

// PreferenceKind is the user's verdict on a track.
type PreferenceKind string

const (
	PreferenceLike    PreferenceKind = "like"
	PreferenceDislike PreferenceKind = "dislike"
)

// Preference is one (user, track) verdict. A user holds at most one
// preference per track; saving again overwrites the previous kind.
type Preference struct {
	Track     Track
	Kind      PreferenceKind
	CreatedAt time.Time
}

// PlayEvent is one listening history row. Multiple rows per (user, track)
// are allowed; history is append-only.
type PlayEvent struct {
	Track          Track
	PlayedAt       time.Time
	PlayDurationMs int // 0 when the client did not report it
}

// Completion returns the fraction of the track that was actually played,
// clamped to [0, 1]. Unknown or non-positive track durations yield 0.
func (e PlayEvent) Completion() float64 {
	if e.Track.DurationMs <= 0 || e.PlayDurationMs <= 0 {
		return 0
	}
	c := float64(e.PlayDurationMs) / float64(e.Track.DurationMs)
	if c > 1 {
		return 1
	}
	return c
}
