// Package worker provides background cache warming for the feed service.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avelar-labs/mixfeed/internal/core/domain"
)

const (
	defaultActivityWindow = 24 * time.Hour
	defaultMaxUsers       = 100
	queueSize             = 128
)

// FeedWarmer is the slice of the feed generator the refresher needs.
type FeedWarmer interface {
	GenerateHomeFeed(ctx context.Context, userID int64, forceRefresh bool) []domain.Playlist
}

// ActivitySource lists users worth warming.
type ActivitySource interface {
	RecentlyActiveUsers(ctx context.Context, since time.Time, limit int) ([]int64, error)
}

// Refresher periodically force-regenerates feeds for recently active users
// so interactive requests land on a warm cache.
type Refresher struct {
	feeds    FeedWarmer
	users    ActivitySource
	log      *zap.Logger
	interval time.Duration
	window   time.Duration
	maxUsers int

	jobs chan int64
	wg   sync.WaitGroup
}

// NewRefresher creates a refresher that wakes every interval.
func NewRefresher(feeds FeedWarmer, users ActivitySource, logger *zap.Logger, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Refresher{
		feeds:    feeds,
		users:    users,
		log:      logger,
		interval: interval,
		window:   defaultActivityWindow,
		maxUsers: defaultMaxUsers,
		jobs:     make(chan int64, queueSize),
	}
}

// Run starts the worker goroutines and the tick loop, blocking until ctx is
// cancelled and in-flight warms have drained.
func (r *Refresher) Run(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			for userID := range r.jobs {
				r.feeds.GenerateHomeFeed(ctx, userID, true)
			}
		}()
	}

	r.enqueueActive(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(r.jobs)
			r.wg.Wait()
			return
		case <-ticker.C:
			r.enqueueActive(ctx)
		}
	}
}

// enqueueActive queues one warm per active user without blocking; a full
// queue means the workers are behind, and dropping is fine since the next
// tick retries.
func (r *Refresher) enqueueActive(ctx context.Context) {
	users, err := r.users.RecentlyActiveUsers(ctx, time.Now().Add(-r.window), r.maxUsers)
	if err != nil {
		r.log.Warn("refresher: listing active users failed", zap.Error(err))
		return
	}
	for _, userID := range users {
		select {
		case r.jobs <- userID:
		default:
			r.log.Warn("refresher: queue full, skipping user", zap.Int64("user_id", userID))
			return
		}
	}
}
