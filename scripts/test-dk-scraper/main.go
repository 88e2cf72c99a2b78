package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/fortuna/gridiron/internal/ingest/draftkings"
	"github.com/fortuna/gridiron/internal/store"
)

// Simple test utility to verify the DraftKings draft-screen scraper works
func main() {
	log.Println("Testing DraftKings Draft Screen Scraper")
	log.Println("========================================")

	contestID := "12345678"
	if len(os.Args) > 1 {
		contestID = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Create scraper client
	client, err := draftkings.NewClient()
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	// Fetch the draft screen
	log.Printf("1. Fetching draft screen for contest %s...", contestID)
	htmlContent, err := client.FetchDraftScreen(ctx, contestID)
	if err != nil {
		log.Fatalf("Failed to fetch draft screen: %v", err)
	}

	log.Printf("✓ Retrieved HTML content (%d bytes)", len(htmlContent))

	// Parse HTML
	doc, err := draftkings.ParseHTML(htmlContent)
	if err != nil {
		log.Fatalf("Failed to parse HTML: %v", err)
	}

	season := store.CurrentSeason(time.Now())
	entries, err := draftkings.ParseDraftScreen(doc, season, 1)
	if err != nil {
		log.Fatalf("Failed to parse draft screen: %v", err)
	}

	log.Printf("✓ Parsed %d salary rows", len(entries))
	for i, entry := range entries {
		if i >= 10 {
			log.Printf("  ... and %d more", len(entries)-10)
			break
		}
		log.Printf("  %-22s %-3s %-3s $%d", entry.PlayerName, entry.Position, entry.Team, entry.Salary)
	}

	log.Println("✓ Scraper test complete")
}
