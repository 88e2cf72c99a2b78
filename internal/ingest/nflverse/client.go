package nflverse

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	// BaseURL for nflverse data releases
	BaseURL = "https://github.com/nflverse/nflverse-data/releases/download"

	maxAttempts    = 3
	attemptBackoff = 2 * time.Second
)

// Client downloads nflverse release CSVs. Each feed publishes one CSV per
// season, so a weekly refresh still downloads the season file and filters.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a new nflverse client with a custom base URL
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 90 * time.Second},
	}
}

// NewClient creates a new nflverse client with default settings
func NewClient() *Client {
	return New(BaseURL)
}

// FetchPlayerStats downloads the weekly player stats CSV for a season.
func (c *Client) FetchPlayerStats(ctx context.Context, season int) ([]byte, error) {
	url := fmt.Sprintf("%s/player_stats/player_stats_%d.csv", c.baseURL, season)
	return c.fetch(ctx, url)
}

// FetchSnapCounts downloads the snap counts CSV for a season.
func (c *Client) FetchSnapCounts(ctx context.Context, season int) ([]byte, error) {
	url := fmt.Sprintf("%s/snap_counts/snap_counts_%d.csv", c.baseURL, season)
	return c.fetch(ctx, url)
}

// fetch downloads a URL with retries. Release downloads occasionally return
// transient 5xx from the CDN, so failures back off and retry before giving up.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			log.Printf("[nflverse-client] Retry %d/%d for %s", attempt, maxAttempts, url)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * attemptBackoff):
			}
		}

		body, err := c.fetchOnce(ctx, url)
		if err == nil {
			log.Printf("[nflverse-client] ✓ Downloaded %s (%d bytes)", url, len(body))
			return body, nil
		}

		lastErr = err
		log.Printf("[nflverse-client] ❌ Attempt %d failed: %v", attempt, err)
	}

	return nil, fmt.Errorf("fetching %s: %w", url, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	// A release asset URL that 404s through the CDN can come back as an HTML
	// page with a 200.
	if len(body) > 0 && body[0] == '<' {
		return nil, fmt.Errorf("got HTML instead of CSV: %s", string(body[:min(len(body), 120)]))
	}

	return body, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
