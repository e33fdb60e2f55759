package services

import "github.com/avelar-labs/mixfeed/internal/core/ports"

// ScoredCandidate pairs an item with its selection weight.
type ScoredCandidate[T any] struct {
	Item  T
	Score float64
}

// Sample picks count items from candidates without replacement, blending
// score-weighted selection with a randomness fraction of pure uniform picks.
// The blend keeps the feed from becoming deterministic across refreshes
// while still favoring high-score items. When count covers all candidates
// they are returned in input order.
func Sample[T any](candidates []ScoredCandidate[T], count int, randomness float64, rnd ports.RandSource) []T {
	if count >= len(candidates) {
		out := make([]T, len(candidates))
		for i, c := range candidates {
			out[i] = c.Item
		}
		return out
	}

	remaining := make([]ScoredCandidate[T], len(candidates))
	copy(remaining, candidates)

	out := make([]T, 0, count)
	for len(out) < count && len(remaining) > 0 {
		idx := pickIndex(remaining, randomness, rnd)
		out = append(out, remaining[idx].Item)
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return out
}

func pickIndex[T any](remaining []ScoredCandidate[T], randomness float64, rnd ports.RandSource) int {
	if rnd.Float64() < randomness {
		return rnd.IntN(len(remaining))
	}

	var total float64
	for _, c := range remaining {
		total += c.Score
	}
	if total <= 0 {
		// All remaining scores are zero; weighted draw degenerates to uniform.
		return rnd.IntN(len(remaining))
	}

	target := rnd.Float64() * total
	var cumulative float64
	for i, c := range remaining {
		cumulative += c.Score
		if target < cumulative {
			return i
		}
	}
	// Floating-point rounding can overshoot the last cumulative bucket.
	return len(remaining) - 1
}
