package main

import (
	"bytes"
	"context"
	"log"

	"github.com/fortuna/gridiron/internal/ingest/nflverse"
)

func main() {
	log.Println("Testing nflverse release client directly...")

	client := nflverse.NewClient()
	ctx := context.Background()

	season := 2024

	// Test 1: Fetch the weekly player stats asset
	log.Printf("Fetching player stats for %d...", season)
	data, err := client.FetchPlayerStats(ctx, season)
	if err != nil {
		log.Printf("❌ ERROR: %v", err)
		return
	}

	log.Printf("✅ SUCCESS! (%d bytes)", len(data))

	stats, err := nflverse.ParsePlayerStats(bytes.NewReader(data), season)
	if err != nil {
		log.Printf("❌ ERROR: %v", err)
		return
	}
	log.Printf("   Parsed %d fantasy-relevant stat rows", len(stats))
	if len(stats) > 0 {
		first := stats[0]
		log.Printf("   First row: %s (%s, %s) week %d", first.PlayerName, first.Position, first.Team, first.Week)
	}

	// Test 2: Fetch the snap counts asset
	log.Printf("Fetching snap counts for %d...", season)
	snapData, err := client.FetchSnapCounts(ctx, season)
	if err != nil {
		log.Printf("❌ ERROR: %v", err)
		return
	}

	snaps, err := nflverse.ParseSnapCounts(bytes.NewReader(snapData), season)
	if err != nil {
		log.Printf("❌ ERROR: %v", err)
		return
	}
	log.Printf("✅ SUCCESS! Parsed %d snap rows", len(snaps))

	log.Println("✅ All tests passed!")
}
