package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestTrackValid(t *testing.T) {
	tests := []struct {
		id   int64
		want bool
	}{
		{id: 1, want: true},
		{id: 0, want: false},
		{id: -7, want: false},
	}
	for _, tc := range tests {
		if got := (Track{CatalogID: tc.id}).Valid(); got != tc.want {
			t.Errorf("Track{CatalogID: %d}.Valid() = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestArtistKey(t *testing.T) {
	tests := []struct {
		artist string
		want   string
	}{
		{artist: "Bicep", want: "Bicep"},
		{artist: "  Bicep  ", want: "Bicep"},
		{artist: "", want: "unknown"},
		{artist: "   ", want: "unknown"},
	}
	for _, tc := range tests {
		if got := (Track{Artist: tc.artist}).ArtistKey(); got != tc.want {
			t.Errorf("ArtistKey(%q) = %q, want %q", tc.artist, got, tc.want)
		}
	}
}

func TestPlayEventCompletion(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		played   int
		want     float64
	}{
		{name: "half played", duration: 200000, played: 100000, want: 0.5},
		{name: "fully played", duration: 200000, played: 200000, want: 1},
		{name: "overplay clamps to one", duration: 200000, played: 300000, want: 1},
		{name: "unknown track duration", duration: 0, played: 100000, want: 0},
		{name: "unreported play duration", duration: 200000, played: 0, want: 0},
		{name: "negative play duration", duration: 200000, played: -5, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev := PlayEvent{
				Track:          Track{CatalogID: 1, DurationMs: tc.duration},
				PlayDurationMs: tc.played,
			}
			if got := ev.Completion(); got != tc.want {
				t.Errorf("Completion() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPlaylistTrackIDs(t *testing.T) {
	p := Playlist{Tracks: []Track{{CatalogID: 3}, {CatalogID: 1}, {CatalogID: 2}}}
	if diff := cmp.Diff([]int64{3, 1, 2}, p.TrackIDs()); diff != "" {
		t.Errorf("TrackIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestFeedEntryExpired(t *testing.T) {
	at := time.Now()
	entry := FeedEntry{ExpiresAt: at}

	if entry.Expired(at.Add(-time.Second)) {
		t.Error("entry expired before its deadline")
	}
	if !entry.Expired(at) {
		t.Error("entry should expire exactly at the deadline")
	}
	if !entry.Expired(at.Add(time.Second)) {
		t.Error("entry should stay expired after the deadline")
	}
}
