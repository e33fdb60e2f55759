package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/avelar-labs/mixfeed/internal/core/domain"
)

func tr(id int64, artist string) domain.Track {
	return domain.Track{CatalogID: id, Title: "Track", Artist: artist, Genre: "Electronic", DurationMs: 180000}
}

func TestFilterAndDiversify(t *testing.T) {
	tests := []struct {
		name         string
		tracks       []domain.Track
		exclude      map[int64]struct{}
		disliked     map[int64]struct{}
		maxPerArtist int
		limit        int
		wantIDs      []int64
	}{
		{
			name:         "duplicates keep first occurrence",
			tracks:       []domain.Track{tr(1, "A"), tr(2, "B"), tr(1, "A"), tr(3, "C")},
			maxPerArtist: 2,
			limit:        30,
			wantIDs:      []int64{1, 2, 3},
		},
		{
			name:         "disliked dropped",
			tracks:       []domain.Track{tr(1, "A"), tr(2, "B"), tr(3, "C")},
			disliked:     map[int64]struct{}{2: {}},
			maxPerArtist: 2,
			limit:        30,
			wantIDs:      []int64{1, 3},
		},
		{
			name:         "excluded dropped",
			tracks:       []domain.Track{tr(1, "A"), tr(2, "B"), tr(3, "C")},
			exclude:      map[int64]struct{}{1: {}, 3: {}},
			maxPerArtist: 2,
			limit:        30,
			wantIDs:      []int64{2},
		},
		{
			name:         "invalid ids dropped",
			tracks:       []domain.Track{tr(0, "A"), tr(-5, "B"), tr(7, "C")},
			maxPerArtist: 2,
			limit:        30,
			wantIDs:      []int64{7},
		},
		{
			name:         "per-artist cap",
			tracks:       []domain.Track{tr(1, "A"), tr(2, "A"), tr(3, "A"), tr(4, "B")},
			maxPerArtist: 2,
			limit:        30,
			wantIDs:      []int64{1, 2, 4},
		},
		{
			name: "blank artists share the unknown bucket",
			tracks: []domain.Track{
				tr(1, ""), tr(2, "  "), tr(3, ""), tr(4, "B"),
			},
			maxPerArtist: 2,
			limit:        30,
			wantIDs:      []int64{1, 2, 4},
		},
		{
			name:         "limit truncates",
			tracks:       []domain.Track{tr(1, "A"), tr(2, "B"), tr(3, "C"), tr(4, "D")},
			maxPerArtist: 2,
			limit:        2,
			wantIDs:      []int64{1, 2},
		},
		{
			name:         "order preserved",
			tracks:       []domain.Track{tr(9, "A"), tr(3, "B"), tr(7, "C")},
			maxPerArtist: 2,
			limit:        30,
			wantIDs:      []int64{9, 3, 7},
		},
		{
			name:         "empty input",
			tracks:       nil,
			maxPerArtist: 2,
			limit:        30,
			wantIDs:      []int64{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterAndDiversify(tc.tracks, tc.exclude, tc.disliked, tc.maxPerArtist, tc.limit)
			gotIDs := make([]int64, 0, len(got))
			for _, track := range got {
				gotIDs = append(gotIDs, track.CatalogID)
			}
			if diff := cmp.Diff(tc.wantIDs, gotIDs); diff != "" {
				t.Errorf("kept ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterAndDiversify_CapDropDoesNotReadmitDuplicates(t *testing.T) {
	// Track 2 is dropped by the artist cap; a later duplicate of it must not
	// slip through just because the first copy never made the output.
	tracks := []domain.Track{tr(1, "A"), tr(5, "A"), tr(2, "A"), tr(2, "B")}
	got := FilterAndDiversify(tracks, nil, nil, 2, 30)

	gotIDs := make([]int64, 0, len(got))
	for _, track := range got {
		gotIDs = append(gotIDs, track.CatalogID)
	}
	if diff := cmp.Diff([]int64{1, 5}, gotIDs); diff != "" {
		t.Errorf("kept ids mismatch (-want +got):\n%s", diff)
	}
}
