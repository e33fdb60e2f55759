package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/avelar-labs/mixfeed/internal/adapters/catalog"
	"github.com/avelar-labs/mixfeed/internal/core/domain"
)

func newTestClient(t *testing.T, baseURL string) *catalog.Client {
	t.Helper()
	return catalog.NewClient(catalog.Config{
		BaseURL:     baseURL,
		MaxRetries:  2,
		BaseBackoff: time.Millisecond,
		RPS:         1000,
	}, zap.NewNop())
}

const trackListBody = `{
	"data": [
		{"id": 101, "title": "Opal", "genre": "Electronic", "duration_ms": 240000, "user": {"username": "Bicep"}},
		{"id": 102, "title": "Glue", "duration_ms": 263000, "user": {"username": "Bicep"}}
	]
}`

func TestSearchTracks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tracks/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "Electronic" {
			t.Errorf("query param = %q, want Electronic", got)
		}
		if got := r.URL.Query().Get("limit"); got != "40" {
			t.Errorf("limit param = %q, want 40", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(trackListBody))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	got, err := client.SearchTracks(context.Background(), "Electronic", 40)
	if err != nil {
		t.Fatalf("SearchTracks: %v", err)
	}

	want := []domain.Track{
		{CatalogID: 101, Title: "Opal", Artist: "Bicep", Genre: "Electronic", DurationMs: 240000},
		{CatalogID: 102, Title: "Glue", Artist: "Bicep", DurationMs: 263000},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tracks mismatch (-want +got):\n%s", diff)
	}
}

func TestRelatedTracks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tracks/101/related" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "40" {
			t.Errorf("limit param = %q, want 40", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	got, err := client.RelatedTracks(context.Background(), 101, 40)
	if err != nil {
		t.Fatalf("RelatedTracks: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty track list, got %d", len(got))
	}
}

func TestSearchTracks_ClientErrorDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if _, err := client.SearchTracks(context.Background(), "nothing", 40); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected a single request, server saw %d", got)
	}
}

func TestSearchTracks_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if _, err := client.SearchTracks(context.Background(), "Electronic", 40); err != nil {
		t.Fatalf("expected recovery on second attempt, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 requests, server saw %d", got)
	}
}

func TestSearchTracks_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if _, err := client.SearchTracks(context.Background(), "Electronic", 40); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 requests, server saw %d", got)
	}
}

func TestSearchTracks_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, srv.URL)
	if _, err := client.SearchTracks(ctx, "Electronic", 40); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestSearchTracks_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if _, err := client.SearchTracks(context.Background(), "Electronic", 40); err == nil {
		t.Fatal("expected decode error")
	}
}
