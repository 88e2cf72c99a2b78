package nflverse

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/fortuna/gridiron/internal/store"
)

// columnIndex maps lowercased header names to field positions. nflverse has
// renamed columns between release generations (recent_team vs team,
// interceptions vs passing_interceptions), so lookups take candidates in
// preference order.
type columnIndex map[string]int

func indexColumns(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func (idx columnIndex) lookup(record []string, names ...string) string {
	for _, name := range names {
		if i, ok := idx[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
	}
	return ""
}

// ParsePlayerStats parses a season player-stats CSV into stat rows. Rows are
// filtered to regular season and fantasy positions; rows with unparsable
// season/week or stat values are skipped and counted, never fatal.
func ParsePlayerStats(r io.Reader, season int) ([]*store.WeeklyStat, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading stats header: %w", err)
	}
	idx := indexColumns(header)

	var stats []*store.WeeklyStat
	seen := make(map[string]bool)
	skipped := 0

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		if st := idx.lookup(record, "season_type", "game_type"); st != "" && st != "REG" {
			continue
		}

		position := strings.ToUpper(idx.lookup(record, "position"))
		if !store.IsFantasyPosition(position) {
			continue
		}

		rowSeason, err := parseCount(idx.lookup(record, "season"))
		if err != nil || rowSeason != season {
			skipped++
			continue
		}
		week, err := parseCount(idx.lookup(record, "week"))
		if err != nil || week <= 0 {
			skipped++
			continue
		}

		counts, err := parseCounts(record, idx,
			"passing_yards", "passing_tds", "rushing_yards", "rushing_tds",
			"receptions", "receiving_yards", "receiving_tds", "targets",
		)
		if err != nil {
			skipped++
			continue
		}
		interceptions, err := parseCount(idx.lookup(record, "interceptions", "passing_interceptions"))
		if err != nil {
			skipped++
			continue
		}
		fumblesLost, err := parseFumblesLost(record, idx)
		if err != nil {
			skipped++
			continue
		}

		playerID := idx.lookup(record, "player_id")
		id := fmt.Sprintf("%s_%d_%d", playerID, season, week)
		if playerID == "" {
			id = uuid.NewString()
		}
		if seen[id] {
			skipped++
			continue
		}
		seen[id] = true

		stat := &store.WeeklyStat{
			ID:             id,
			SourcePlayerID: nullString(playerID),
			PlayerName:     idx.lookup(record, "player_display_name", "player_name"),
			Position:       position,
			Team:           strings.ToUpper(idx.lookup(record, "recent_team", "team")),
			Season:         season,
			Week:           week,
			Opponent:       nullString(strings.ToUpper(idx.lookup(record, "opponent_team", "opponent"))),
			PassingYards:   counts["passing_yards"],
			PassingTDs:     counts["passing_tds"],
			Interceptions:  interceptions,
			RushingYards:   counts["rushing_yards"],
			RushingTDs:     counts["rushing_tds"],
			Receptions:     counts["receptions"],
			ReceivingYards: counts["receiving_yards"],
			ReceivingTDs:   counts["receiving_tds"],
			Targets:        counts["targets"],
			FumblesLost:    fumblesLost,
		}
		stats = append(stats, stat)
	}

	if skipped > 0 {
		log.Printf("[nflverse-parser] ⊘ Skipped %d stat rows (unparsable or duplicate)", skipped)
	}

	return stats, nil
}

// ParseSnapCounts parses a season snap-counts CSV into snap rows, filtered to
// regular season and fantasy positions.
func ParseSnapCounts(r io.Reader, season int) ([]*store.SnapCount, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading snaps header: %w", err)
	}
	idx := indexColumns(header)

	var snaps []*store.SnapCount
	seen := make(map[string]bool)
	skipped := 0

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		if gt := idx.lookup(record, "game_type", "season_type"); gt != "" && gt != "REG" {
			continue
		}

		position := strings.ToUpper(idx.lookup(record, "position"))
		if !store.IsFantasyPosition(position) {
			continue
		}

		rowSeason, err := parseCount(idx.lookup(record, "season"))
		if err != nil || rowSeason != season {
			skipped++
			continue
		}
		week, err := parseCount(idx.lookup(record, "week"))
		if err != nil || week <= 0 {
			skipped++
			continue
		}
		offenseSnaps, err := parseCount(idx.lookup(record, "offense_snaps"))
		if err != nil {
			skipped++
			continue
		}

		playerID := idx.lookup(record, "pfr_player_id", "player_id")
		id := fmt.Sprintf("%s_%d_%d_snaps", playerID, season, week)
		if playerID == "" {
			id = uuid.NewString()
		}
		if seen[id] {
			skipped++
			continue
		}
		seen[id] = true

		snaps = append(snaps, &store.SnapCount{
			ID:             id,
			SourcePlayerID: nullString(playerID),
			PlayerName:     idx.lookup(record, "player", "player_name"),
			Team:           strings.ToUpper(idx.lookup(record, "team")),
			Season:         season,
			Week:           week,
			OffenseSnaps:   offenseSnaps,
		})
	}

	if skipped > 0 {
		log.Printf("[nflverse-parser] ⊘ Skipped %d snap rows (unparsable or duplicate)", skipped)
	}

	return snaps, nil
}

func parseCounts(record []string, idx columnIndex, names ...string) (map[string]int, error) {
	counts := make(map[string]int, len(names))
	for _, name := range names {
		v, err := parseCount(idx.lookup(record, name))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		counts[name] = v
	}
	return counts, nil
}

// parseFumblesLost prefers a combined fumbles_lost column and falls back to
// summing the per-phase columns newer releases split it into.
func parseFumblesLost(record []string, idx columnIndex) (int, error) {
	if _, ok := idx["fumbles_lost"]; ok {
		return parseCount(idx.lookup(record, "fumbles_lost"))
	}

	total := 0
	for _, name := range []string{"sack_fumbles_lost", "rushing_fumbles_lost", "receiving_fumbles_lost"} {
		v, err := parseCount(idx.lookup(record, name))
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", name, err)
		}
		total += v
	}
	return total, nil
}

// parseCount parses a CSV numeric cell. Empty cells mean zero; the feeds
// write some integer columns as floats ("12.0"), so both forms parse.
func parseCount(s string) (int, error) {
	if s == "" || s == "NA" {
		return 0, nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", s, err)
	}
	return int(f), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
