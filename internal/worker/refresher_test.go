package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/avelar-labs/mixfeed/internal/core/domain"
)

type recordingWarmer struct {
	mu     sync.Mutex
	warmed map[int64]int
	forced bool
}

func (w *recordingWarmer) GenerateHomeFeed(_ context.Context, userID int64, forceRefresh bool) []domain.Playlist {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.warmed == nil {
		w.warmed = make(map[int64]int)
	}
	w.warmed[userID]++
	w.forced = forceRefresh
	return nil
}

func (w *recordingWarmer) count(userID int64) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.warmed[userID]
}

type staticActivity struct {
	users []int64
	err   error
}

func (s *staticActivity) RecentlyActiveUsers(context.Context, time.Time, int) ([]int64, error) {
	return s.users, s.err
}

func TestRefresher_WarmsActiveUsers(t *testing.T) {
	warmer := &recordingWarmer{}
	r := NewRefresher(warmer, &staticActivity{users: []int64{1, 2}}, zap.NewNop(), time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// The long interval means only the startup pass runs before the
	// deadline; Run returns once workers drain.
	r.Run(ctx, 2)

	for _, userID := range []int64{1, 2} {
		if warmer.count(userID) != 1 {
			t.Errorf("user %d warmed %d times, want 1", userID, warmer.count(userID))
		}
	}
	if !warmer.forced {
		t.Error("warm-up should force regeneration")
	}
}

func TestRefresher_TicksRepeat(t *testing.T) {
	warmer := &recordingWarmer{}
	r := NewRefresher(warmer, &staticActivity{users: []int64{1}}, zap.NewNop(), 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	r.Run(ctx, 1)

	if got := warmer.count(1); got < 2 {
		t.Errorf("expected repeated warms across ticks, got %d", got)
	}
}

func TestRefresher_ActivityErrorIsSkipped(t *testing.T) {
	warmer := &recordingWarmer{}
	r := NewRefresher(warmer, &staticActivity{err: errors.New("db down")}, zap.NewNop(), 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Must return cleanly despite the failing listing.
	r.Run(ctx, 1)

	if len(warmer.warmed) != 0 {
		t.Errorf("no warms expected, got %v", warmer.warmed)
	}
}
