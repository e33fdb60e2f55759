// Package metrics holds the Prometheus instruments for the feed service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for feed generation.
type Metrics struct {
	FeedGenerations    prometheus.Counter
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CatalogErrors      prometheus.Counter
	GenerationDuration prometheus.Histogram
	PlaylistsPerFeed   prometheus.Histogram
}

// New registers the feed metrics against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FeedGenerations: factory.NewCounter(prometheus.CounterOpts{
			Name: "mixfeed_feed_generations_total",
			Help: "The total number of full feed generations",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "mixfeed_feed_cache_hits_total",
			Help: "The total number of feed requests served from cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "mixfeed_feed_cache_misses_total",
			Help: "The total number of feed requests that triggered generation",
		}),
		CatalogErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "mixfeed_catalog_errors_total",
			Help: "The total number of failed catalog calls absorbed during generation",
		}),
		GenerationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mixfeed_feed_generation_duration_seconds",
			Help:    "The duration of feed generation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		PlaylistsPerFeed: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mixfeed_playlists_per_feed",
			Help:    "The number of playlists in each generated feed",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
		}),
	}
}
