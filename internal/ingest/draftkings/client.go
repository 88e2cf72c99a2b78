package draftkings

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

const (
	// BaseURL for DraftKings
	BaseURL = "https://www.draftkings.com"

	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval to prevent rate limiting
	MinRequestInterval = 2 * time.Second
)

// Client renders DraftKings draft screens with a headless browser. The draft
// screen is a JS application, so a plain HTTP GET returns an empty shell;
// chromedp waits for the salary table to render before grabbing the HTML.
type Client struct {
	lastRequest time.Time
	interval    time.Duration

	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient creates a new DraftKings scraper client
func NewClient() (*Client, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		lastRequest: time.Time{},
		interval:    MinRequestInterval,
		allocCtx:    allocCtx,
		cancel:      cancel,
	}, nil
}

// Close releases resources
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// FetchDraftScreen renders the draft screen for a contest and returns its HTML.
func (c *Client) FetchDraftScreen(ctx context.Context, contestID string) (string, error) {
	url := fmt.Sprintf("%s/draft/contest/%s", BaseURL, contestID)
	return c.fetchWithRateLimit(ctx, url)
}

// fetchWithRateLimit fetches content with automatic rate limiting
func (c *Client) fetchWithRateLimit(ctx context.Context, url string) (string, error) {
	if !c.lastRequest.IsZero() {
		elapsed := time.Since(c.lastRequest)
		if elapsed < c.interval {
			waitTime := c.interval - elapsed
			log.Printf("Rate limiting: waiting %v before next request", waitTime)
			time.Sleep(waitTime)
		}
	}

	html, err := c.fetch(ctx, url)
	c.lastRequest = time.Now()

	return html, err
}

// fetch performs the actual page render using chromedp
func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, 45*time.Second)
	defer cancel()

	var htmlContent string

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second), // Allow the salary table to render
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)

	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}

	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned")
	}

	return htmlContent, nil
}

// ParseHTML converts raw HTML to a goquery Document for parsing
func ParseHTML(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
