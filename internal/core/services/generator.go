package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avelar-labs/mixfeed/internal/core/domain"
	"github.com/avelar-labs/mixfeed/internal/core/ports"
	"github.com/avelar-labs/mixfeed/internal/metrics"
)

const (
	preferencesLimit = 200
	historyLimit     = 50
	dislikedLimit    = 500

	// candidatePool is how many tracks each catalog call requests.
	candidatePool = 40

	topGenres   = 5
	pickGenres  = 3
	topArtists  = 4
	pickArtists = 2
	pickSeeds   = 3

	seedRandomness   = 0.35
	genreRandomness  = 0.4
	artistRandomness = 0.4

	// playlistTarget stops the genre/artist stages; fallbackTarget is the
	// floor the generic-genre pass tries to reach. Both are checked before
	// each iteration, so the last accepted playlist may push past them.
	playlistTarget = 5
	fallbackTarget = 4

	defaultFeedTTL = 2 * time.Minute
)

// fallbackGenres backfill thin feeds for users with little or no taste data.
var fallbackGenres = []string{"Hip-hop", "Electronic", "Pop", "Rock", "Indie"}

// Generator assembles the personalized home feed. It coordinates the taste
// profile, weighted sampling, catalog fetches and the per-user feed cache.
// GenerateHomeFeed never fails outward: every error path degrades to a
// smaller fallback feed or an empty list.
type Generator struct {
	catalog ports.CatalogProvider
	repo    ports.TasteRepository
	cache   ports.FeedCache
	log     *zap.Logger
	metrics *metrics.Metrics

	rnd ports.RandSource
	now func() time.Time
	ttl time.Duration
}

// NewGenerator constructs a Generator with production defaults.
func NewGenerator(catalog ports.CatalogProvider, repo ports.TasteRepository, cache ports.FeedCache, logger *zap.Logger, m *metrics.Metrics) *Generator {
	return &Generator{
		catalog: catalog,
		repo:    repo,
		cache:   cache,
		log:     logger,
		metrics: m,
		rnd:     DefaultRandSource(),
		now:     time.Now,
		ttl:     defaultFeedTTL,
	}
}

// SetTTL overrides the default 2-minute cache window.
func (g *Generator) SetTTL(d time.Duration) {
	if d > 0 {
		g.ttl = d
	}
}

// GenerateHomeFeed returns the user's ranked mix playlists. Within the TTL
// window repeated calls return the cached feed untouched; forceRefresh
// always regenerates but still reuses the prior entry's shown-set so fresh
// mixes avoid repeating tracks the user just saw.
func (g *Generator) GenerateHomeFeed(ctx context.Context, userID int64, forceRefresh bool) []domain.Playlist {
	now := g.now()

	prev, havePrev := g.cache.Get(userID)
	if !forceRefresh && havePrev && !prev.Expired(now) {
		g.metrics.CacheHits.Inc()
		return prev.Playlists
	}
	g.metrics.CacheMisses.Inc()

	var prevShown map[int64]struct{}
	if havePrev {
		prevShown = prev.ShownTrackIDs
	}

	start := time.Now()
	playlists, shown, err := g.safeAssemble(ctx, userID, now, prevShown)
	if err != nil {
		g.log.Warn("feed generation failed, serving fallback",
			zap.Int64("user_id", userID), zap.Error(err))
		return g.lastResort(ctx, userID, now)
	}

	g.metrics.FeedGenerations.Inc()
	g.metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	g.metrics.PlaylistsPerFeed.Observe(float64(len(playlists)))

	g.cache.Set(userID, domain.FeedEntry{
		ExpiresAt:     now.Add(g.ttl),
		Playlists:     playlists,
		ShownTrackIDs: shown,
	})
	return playlists
}

// safeAssemble converts panics into errors so a bug in the pipeline degrades
// to the fallback feed instead of taking down the request.
func (g *Generator) safeAssemble(ctx context.Context, userID int64, now time.Time, prevShown map[int64]struct{}) (playlists []domain.Playlist, shown map[int64]struct{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("feed: panic during assembly: %v", r)
		}
	}()
	return g.assemble(ctx, userID, now, prevShown)
}

func (g *Generator) assemble(ctx context.Context, userID int64, now time.Time, prevShown map[int64]struct{}) ([]domain.Playlist, map[int64]struct{}, error) {
	prefs, history, dislikedIDs, err := g.loadTaste(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	disliked := make(map[int64]struct{}, len(dislikedIDs))
	for _, id := range dislikedIDs {
		disliked[id] = struct{}{}
	}

	profile := BuildTasteProfile(now, prefs, history, disliked)

	genres := Sample(topN(profile.Genres.Ranked(), topGenres), pickGenres, genreRandomness, g.rnd)
	artists := Sample(topN(profile.Artists.Ranked(), topArtists), pickArtists, artistRandomness, g.rnd)

	seedCands := make([]ScoredCandidate[domain.Seed], len(profile.Seeds))
	for i, s := range profile.Seeds {
		seedCands[i] = ScoredCandidate[domain.Seed]{Item: s, Score: s.Score}
	}
	seeds := Sample(seedCands, pickSeeds, seedRandomness, g.rnd)

	// used accumulates every catalog id placed into any playlist this
	// generation, seeded with the prior cycle's shown-set.
	used := make(map[int64]struct{}, len(prevShown))
	for id := range prevShown {
		used[id] = struct{}{}
	}

	var playlists []domain.Playlist

	// Seed mixes: one related-tracks pool per seed, fetched concurrently,
	// then filtered in seed order against the running exclusion state.
	pools := g.fetchRelatedPools(ctx, seeds)
	for i, seed := range seeds {
		kept := FilterAndDiversify(pools[i], used, disliked, 2, 30)
		if len(kept) < domain.MinPlaylistTracks {
			g.log.Debug("seed mix too thin, discarding",
				zap.Int64("seed_id", seed.CatalogID), zap.Int("tracks", len(kept)))
			continue
		}
		playlists = append(playlists, seedPlaylist(seed, kept))
		markUsed(used, kept)
	}

	// Genre mixes, sequential so each search sees the updated exclusions.
	for _, genre := range genres {
		if len(playlists) >= playlistTarget {
			break
		}
		tracks, err := g.catalog.SearchTracks(ctx, genre, candidatePool)
		if err != nil {
			g.metrics.CatalogErrors.Inc()
			g.log.Warn("genre search failed", zap.String("genre", genre), zap.Error(err))
			continue
		}
		kept := FilterAndDiversify(tracks, used, disliked, 2, 30)
		if len(kept) < domain.MinPlaylistTracks {
			continue
		}
		playlists = append(playlists, genrePlaylist(genre, kept))
		markUsed(used, kept)
	}

	// Artist mixes allow one more track per artist since the pool is
	// dominated by that artist to begin with.
	for _, artist := range artists {
		if len(playlists) >= playlistTarget {
			break
		}
		tracks, err := g.catalog.SearchTracks(ctx, artist, candidatePool)
		if err != nil {
			g.metrics.CatalogErrors.Inc()
			g.log.Warn("artist search failed", zap.String("artist", artist), zap.Error(err))
			continue
		}
		kept := FilterAndDiversify(tracks, used, disliked, 3, 25)
		if len(kept) < domain.MinPlaylistTracks {
			continue
		}
		playlists = append(playlists, artistPlaylist(artist, kept))
		markUsed(used, kept)
	}

	// Generic genres keep the feed usable for new or sparse users.
	for _, genre := range fallbackGenres {
		if len(playlists) >= fallbackTarget {
			break
		}
		tracks, err := g.catalog.SearchTracks(ctx, genre, candidatePool)
		if err != nil {
			g.metrics.CatalogErrors.Inc()
			g.log.Warn("fallback search failed", zap.String("genre", genre), zap.Error(err))
			continue
		}
		kept := FilterAndDiversify(tracks, used, disliked, 2, 30)
		if len(kept) < domain.MinPlaylistTracks {
			continue
		}
		playlists = append(playlists, fallbackPlaylist(genre, kept))
		markUsed(used, kept)
	}

	// The new shown-set covers exactly this generation's accepted tracks.
	shown := make(map[int64]struct{})
	for _, p := range playlists {
		for _, t := range p.Tracks {
			shown[t.CatalogID] = struct{}{}
		}
	}
	return playlists, shown, nil
}

// loadTaste fans out the three persistence reads and joins them. A failing
// read aborts assembly; the caller falls back to the generic feed.
func (g *Generator) loadTaste(ctx context.Context, userID int64) ([]domain.Preference, []domain.PlayEvent, []int64, error) {
	var (
		wg       sync.WaitGroup
		prefs    []domain.Preference
		history  []domain.PlayEvent
		disliked []int64

		prefErr, histErr, dislikeErr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		prefs, prefErr = g.repo.DetailedPreferences(ctx, userID, preferencesLimit)
	}()
	go func() {
		defer wg.Done()
		history, histErr = g.repo.ListeningHistory(ctx, userID, historyLimit)
	}()
	go func() {
		defer wg.Done()
		disliked, dislikeErr = g.repo.DislikedCatalogIDs(ctx, userID, dislikedLimit)
	}()
	wg.Wait()

	if prefErr != nil {
		return nil, nil, nil, fmt.Errorf("feed: load preferences: %w", prefErr)
	}
	if histErr != nil {
		return nil, nil, nil, fmt.Errorf("feed: load history: %w", histErr)
	}
	if dislikeErr != nil {
		return nil, nil, nil, fmt.Errorf("feed: load dislikes: %w", dislikeErr)
	}
	return prefs, history, disliked, nil
}

// fetchRelatedPools issues one related-tracks call per seed concurrently.
// A failed fetch leaves a nil pool; the seed simply yields no mix.
func (g *Generator) fetchRelatedPools(ctx context.Context, seeds []domain.Seed) [][]domain.Track {
	pools := make([][]domain.Track, len(seeds))
	var wg sync.WaitGroup
	for i, seed := range seeds {
		wg.Add(1)
		go func(i int, seed domain.Seed) {
			defer wg.Done()
			tracks, err := g.catalog.RelatedTracks(ctx, seed.CatalogID, candidatePool)
			if err != nil {
				g.metrics.CatalogErrors.Inc()
				g.log.Warn("related tracks fetch failed",
					zap.Int64("seed_id", seed.CatalogID), zap.Error(err))
				return
			}
			pools[i] = tracks
		}(i, seed)
	}
	wg.Wait()
	return pools
}

// lastResort serves a single generic playlist when the pipeline itself
// failed. If even the generic search fails the caller gets an empty list,
// which the API treats as "no recommendations available now".
func (g *Generator) lastResort(ctx context.Context, userID int64, now time.Time) []domain.Playlist {
	tracks, err := g.catalog.SearchTracks(ctx, "Top 50", candidatePool)
	if err != nil {
		g.metrics.CatalogErrors.Inc()
		g.log.Error("last-resort search failed", zap.Int64("user_id", userID), zap.Error(err))
		return []domain.Playlist{}
	}

	kept := FilterAndDiversify(tracks, nil, nil, 2, 30)
	if len(kept) == 0 {
		return []domain.Playlist{}
	}

	pl := domain.Playlist{
		ID:          "mix-top-tracks",
		Title:       "Top tracks",
		Description: "Popular right now",
		Tracks:      kept,
	}
	playlists := []domain.Playlist{pl}

	shown := make(map[int64]struct{}, len(kept))
	for _, t := range kept {
		shown[t.CatalogID] = struct{}{}
	}
	g.cache.Set(userID, domain.FeedEntry{
		ExpiresAt:     now.Add(g.ttl),
		Playlists:     playlists,
		ShownTrackIDs: shown,
	})
	return playlists
}

func seedPlaylist(seed domain.Seed, tracks []domain.Track) domain.Playlist {
	title := fmt.Sprintf("More like %s", seed.Title)
	description := "Based on your recent listening"
	if seed.Reason == domain.SeedFromLike {
		title = fmt.Sprintf("Because you liked %s", seed.Title)
		description = "Based on tracks you liked"
	}
	return domain.Playlist{
		ID:          fmt.Sprintf("mix-seed-%s-%d", seed.Reason, seed.CatalogID),
		Title:       title,
		Description: description,
		Tracks:      tracks,
	}
}

func genrePlaylist(genre string, tracks []domain.Track) domain.Playlist {
	return domain.Playlist{
		ID:          "mix-genre-" + slug(genre),
		Title:       fmt.Sprintf("%s mix", genre),
		Description: fmt.Sprintf("Fresh %s picks for you", genre),
		Tracks:      tracks,
	}
}

func artistPlaylist(artist string, tracks []domain.Track) domain.Playlist {
	return domain.Playlist{
		ID:          "mix-artist-" + slug(artist),
		Title:       fmt.Sprintf("%s radio", artist),
		Description: fmt.Sprintf("Tracks around %s", artist),
		Tracks:      tracks,
	}
}

func fallbackPlaylist(genre string, tracks []domain.Track) domain.Playlist {
	return domain.Playlist{
		ID:          "mix-fallback-" + slug(genre),
		Title:       fmt.Sprintf("%s essentials", genre),
		Description: fmt.Sprintf("A starter dose of %s", genre),
		Tracks:      tracks,
	}
}

func topN[T any](ranked []ScoredCandidate[T], n int) []ScoredCandidate[T] {
	if len(ranked) > n {
		return ranked[:n]
	}
	return ranked
}

func markUsed(used map[int64]struct{}, tracks []domain.Track) {
	for _, t := range tracks {
		used[t.CatalogID] = struct{}{}
	}
}

func slug(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "-"))
}
