// Package catalog is the HTTP adapter for the external music catalog.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/avelar-labs/mixfeed/internal/core/domain"
	"github.com/avelar-labs/mixfeed/internal/core/ports"
)

const (
	defaultTimeout    = 8 * time.Second
	defaultMaxRetries = 2
	defaultBackoff    = 500 * time.Millisecond
	defaultRPS        = 10
)

// Config carries the catalog connection settings. ClientID/ClientSecret are
// optional; when set, requests carry a client-credentials bearer token.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Timeout      time.Duration
	MaxRetries   int
	BaseBackoff  time.Duration
	RPS          int
}

// Client is an HTTP client for the catalog provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	maxRetries int
	backoff    time.Duration
	log        *zap.Logger
}

// compile-time interface assertion
var _ ports.CatalogProvider = (*Client)(nil)

// NewClient constructs a catalog client with rate limiting and a circuit
// breaker in front of the provider.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	backoff := cfg.BaseBackoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = defaultRPS
	}

	var httpClient *http.Client
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		httpClient = cc.Client(context.Background())
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = timeout

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "catalog",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(rps), rps),
		breaker:    breaker,
		maxRetries: maxRetries,
		backoff:    backoff,
		log:        logger,
	}
}

// SearchTracks runs a free-text track search against the catalog.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	searchURL, err := url.Parse(c.baseURL + "/v1/tracks/search")
	if err != nil {
		return nil, fmt.Errorf("catalog adapter: invalid search url: %w", err)
	}
	q := searchURL.Query()
	q.Set("query", query)
	q.Set("limit", strconv.Itoa(limit))
	searchURL.RawQuery = q.Encode()

	return c.fetchTracks(ctx, searchURL.String())
}

// RelatedTracks returns tracks the catalog considers related to the given id.
func (c *Client) RelatedTracks(ctx context.Context, catalogTrackID int64, limit int) ([]domain.Track, error) {
	relatedURL := fmt.Sprintf("%s/v1/tracks/%d/related?limit=%d", c.baseURL, catalogTrackID, limit)
	return c.fetchTracks(ctx, relatedURL)
}

func (c *Client) fetchTracks(ctx context.Context, rawURL string) ([]domain.Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog adapter: %w", err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return nil, fmt.Errorf("catalog adapter: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog adapter: status %d", resp.StatusCode)
	}

	var body trackListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("catalog adapter: decode error: %w", err)
	}

	return mapTracksToDomain(body.Data), nil
}
