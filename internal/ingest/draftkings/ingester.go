package draftkings

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
)

// Ingester loads DraftKings salary data, either by rendering a draft screen
// or by importing an exported salary file.
type Ingester struct {
	client       *Client
	salariesRepo *repository.SalariesRepository
}

// NewIngester creates a new DraftKings ingester
func NewIngester(db *store.Database) (*Ingester, error) {
	client, err := NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create DraftKings client: %w", err)
	}

	return &Ingester{
		client:       client,
		salariesRepo: repository.NewSalariesRepository(db),
	}, nil
}

// NewFileIngester creates an ingester that only imports exported CSVs.
// No headless browser is started, so IngestDraftScreen is unavailable.
func NewFileIngester(db *store.Database) *Ingester {
	return &Ingester{
		salariesRepo: repository.NewSalariesRepository(db),
	}
}

// Close releases resources
func (i *Ingester) Close() {
	if i.client != nil {
		i.client.Close()
	}
}

// IngestDraftScreen renders a contest's draft screen and upserts the salary
// rows it shows. Returns the number of rows stored.
func (i *Ingester) IngestDraftScreen(ctx context.Context, contestID string, season, week int) (int, error) {
	if i.client == nil {
		return 0, fmt.Errorf("draft screen ingestion requires a browser client")
	}

	log.Printf("Ingesting DraftKings salaries for contest %s (season %d week %d)...", contestID, season, week)

	htmlContent, err := i.client.FetchDraftScreen(ctx, contestID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch draft screen: %w", err)
	}

	doc, err := ParseHTML(htmlContent)
	if err != nil {
		return 0, fmt.Errorf("failed to parse HTML: %w", err)
	}

	entries, err := ParseDraftScreen(doc, season, week)
	if err != nil {
		return 0, fmt.Errorf("failed to parse draft screen: %w", err)
	}

	if err := i.salariesRepo.UpsertAll(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to store salaries: %w", err)
	}

	log.Printf("  ✓ Stored %d salary rows", len(entries))
	return len(entries), nil
}

// ImportSalaryFile reads an exported salary CSV (the DKSalaries.csv download)
// and upserts its rows. Returns the number of rows stored.
func (i *Ingester) ImportSalaryFile(ctx context.Context, path string, season, week int) (int, error) {
	log.Printf("Importing DraftKings salary file %s (season %d week %d)...", path, season, week)

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening salary file: %w", err)
	}
	defer f.Close()

	entries, err := ParseSalaryCSV(f, season, week)
	if err != nil {
		return 0, fmt.Errorf("parsing salary file: %w", err)
	}

	if err := i.salariesRepo.UpsertAll(ctx, entries); err != nil {
		return 0, fmt.Errorf("storing salaries: %w", err)
	}

	log.Printf("  ✓ Stored %d salary rows", len(entries))
	return len(entries), nil
}
