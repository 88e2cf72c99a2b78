package nflverse

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
)

// Ingester downloads nflverse feeds and replaces the raw tables.
type Ingester struct {
	client    *Client
	statsRepo *repository.StatsRepository
	snapsRepo *repository.SnapsRepository
}

// NewIngester creates an nflverse ingester using the default release base.
func NewIngester(db *store.Database) *Ingester {
	return NewIngesterWithBaseURL(db, "")
}

// NewIngesterWithBaseURL creates an ingester overriding the release base URL.
func NewIngesterWithBaseURL(db *store.Database, baseURL string) *Ingester {
	var client *Client
	if strings.TrimSpace(baseURL) != "" {
		log.Printf("[ingest] Creating nflverse client with baseURL: %s", baseURL)
		client = New(baseURL)
	} else {
		client = NewClient()
	}

	return &Ingester{
		client:    client,
		statsRepo: repository.NewStatsRepository(db),
		snapsRepo: repository.NewSnapsRepository(db),
	}
}

// IngestPlayerStats downloads and stores a season's stat rows, replacing the
// season wholesale. Returns the number of rows stored.
func (i *Ingester) IngestPlayerStats(ctx context.Context, season int) (int, error) {
	log.Printf("[ingest] Fetching player stats for season %d", season)

	body, err := i.client.FetchPlayerStats(ctx, season)
	if err != nil {
		return 0, fmt.Errorf("fetch player stats: %w", err)
	}

	stats, err := ParsePlayerStats(bytes.NewReader(body), season)
	if err != nil {
		return 0, fmt.Errorf("parse player stats: %w", err)
	}

	if err := i.statsRepo.ReplaceSeason(ctx, season, stats); err != nil {
		return 0, fmt.Errorf("store player stats: %w", err)
	}

	log.Printf("[ingest] ✓ Stored %d stat rows for season %d", len(stats), season)
	return len(stats), nil
}

// IngestSnapCounts downloads and stores a season's snap rows, replacing the
// season wholesale. Returns the number of rows stored.
func (i *Ingester) IngestSnapCounts(ctx context.Context, season int) (int, error) {
	log.Printf("[ingest] Fetching snap counts for season %d", season)

	body, err := i.client.FetchSnapCounts(ctx, season)
	if err != nil {
		return 0, fmt.Errorf("fetch snap counts: %w", err)
	}

	snaps, err := ParseSnapCounts(bytes.NewReader(body), season)
	if err != nil {
		return 0, fmt.Errorf("parse snap counts: %w", err)
	}

	if err := i.snapsRepo.ReplaceSeason(ctx, season, snaps); err != nil {
		return 0, fmt.Errorf("store snap counts: %w", err)
	}

	log.Printf("[ingest] ✓ Stored %d snap rows for season %d", len(snaps), season)
	return len(snaps), nil
}
