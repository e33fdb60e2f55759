package services

import "github.com/avelar-labs/mixfeed/internal/core/domain"

// FilterAndDiversify removes disliked, excluded, invalid and duplicate
// tracks from a raw candidate list, caps per-artist repetition, and
// truncates to limit. It is a single order-preserving pass: upstream
// ranking survives modulo the drops, and no re-sorting happens here.
func FilterAndDiversify(tracks []domain.Track, exclude, disliked map[int64]struct{}, maxPerArtist, limit int) []domain.Track {
	out := make([]domain.Track, 0, min(limit, len(tracks)))
	seen := make(map[int64]struct{}, len(tracks))
	perArtist := make(map[string]int)

	for _, t := range tracks {
		if len(out) >= limit {
			break
		}
		if !t.Valid() {
			continue
		}
		if _, ok := disliked[t.CatalogID]; ok {
			continue
		}
		if _, ok := exclude[t.CatalogID]; ok {
			continue
		}
		if _, ok := seen[t.CatalogID]; ok {
			continue
		}
		seen[t.CatalogID] = struct{}{}

		key := t.ArtistKey()
		if perArtist[key] >= maxPerArtist {
			continue
		}
		perArtist[key]++
		out = append(out, t)
	}
	return out
}
