package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/avelar-labs/mixfeed/internal/core/domain"
)

// Taste weighting constants. Likes decay slower than plays because an
// explicit thumbs-up is a stronger, longer-lived signal than one listen.
const (
	likeScoreWeight  = 3.0
	likeSeedWeight   = 5.0
	likeHalfLifeDays = 21.0

	playScoreWeight  = 2.0
	playSeedWeight   = 3.0
	playHalfLifeDays = 10.0

	maxSeedCandidates = 10
)

// ScoreIndex accumulates weighted scores per key while remembering the order
// in which keys first appeared. Ranking ties break by that insertion order,
// so a plain map won't do.
type ScoreIndex struct {
	order  []string
	scores map[string]float64
}

// NewScoreIndex returns an empty index.
func NewScoreIndex() *ScoreIndex {
	return &ScoreIndex{scores: make(map[string]float64)}
}

// Add accumulates weight for the trimmed key. Empty keys are dropped.
func (ix *ScoreIndex) Add(key string, weight float64) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if _, ok := ix.scores[key]; !ok {
		ix.order = append(ix.order, key)
	}
	ix.scores[key] += weight
}

// Score returns the accumulated score for key, 0 if absent.
func (ix *ScoreIndex) Score(key string) float64 {
	return ix.scores[key]
}

// Len returns the number of distinct keys.
func (ix *ScoreIndex) Len() int {
	return len(ix.order)
}

// Ranked returns all keys sorted by score descending. The sort is stable, so
// equal scores keep first-contribution order.
func (ix *ScoreIndex) Ranked() []ScoredCandidate[string] {
	ranked := make([]ScoredCandidate[string], len(ix.order))
	for i, key := range ix.order {
		ranked[i] = ScoredCandidate[string]{Item: key, Score: ix.scores[key]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// TasteProfile is the derived picture of a user's taste: weighted genre and
// artist scores plus a ranked list of seed-track candidates.
type TasteProfile struct {
	Genres  *ScoreIndex
	Artists *ScoreIndex
	Seeds   []domain.Seed
}

// BuildTasteProfile converts preference and history records into a profile.
// Inputs are expected most-recent-first; the seed list keeps likes ahead of
// history on score ties because likes are registered first.
func BuildTasteProfile(now time.Time, prefs []domain.Preference, history []domain.PlayEvent, disliked map[int64]struct{}) TasteProfile {
	genres := NewScoreIndex()
	artists := NewScoreIndex()
	var candidates []domain.Seed

	for _, p := range prefs {
		if p.Kind != domain.PreferenceLike {
			continue
		}
		w := likeScoreWeight * decay(now, p.CreatedAt, likeHalfLifeDays)
		genres.Add(p.Track.Genre, w)
		artists.Add(p.Track.Artist, w)

		if !p.Track.Valid() {
			continue
		}
		if _, bad := disliked[p.Track.CatalogID]; bad {
			continue
		}
		candidates = append(candidates, domain.Seed{
			CatalogID: p.Track.CatalogID,
			Title:     p.Track.Title,
			Reason:    domain.SeedFromLike,
			Score:     likeSeedWeight * decay(now, p.CreatedAt, likeHalfLifeDays),
		})
	}

	for _, ev := range history {
		completion := ev.Completion()
		w := playScoreWeight * completion * decay(now, ev.PlayedAt, playHalfLifeDays)
		genres.Add(ev.Track.Genre, w)
		artists.Add(ev.Track.Artist, w)

		if !ev.Track.Valid() {
			continue
		}
		if _, bad := disliked[ev.Track.CatalogID]; bad {
			continue
		}
		candidates = append(candidates, domain.Seed{
			CatalogID: ev.Track.CatalogID,
			Title:     ev.Track.Title,
			Reason:    domain.SeedFromHistory,
			Score:     playSeedWeight * completion * decay(now, ev.PlayedAt, playHalfLifeDays),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > maxSeedCandidates {
		candidates = candidates[:maxSeedCandidates]
	}

	return TasteProfile{Genres: genres, Artists: artists, Seeds: candidates}
}

// decay returns exp(-ageDays/halfLifeDays), a continuous exponential decay.
// Timestamps in the future count as age zero.
func decay(now, at time.Time, halfLifeDays float64) float64 {
	ageDays := now.Sub(at).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-ageDays / halfLifeDays)
}
