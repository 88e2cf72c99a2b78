package main

import (
	"log"
	"strconv"

	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/store"
)

// Test utility for the reconciliation engine: feeds it rows carrying the
// name variants the real feeds produce and prints what joins.
func main() {
	log.Println("Testing Reconciliation Engine")
	log.Println("==============================")

	stats := []*store.WeeklyStat{
		stat("Patrick Mahomes", "QB", "KC", 1, 291, 1),
		stat("Kenneth Walker III", "RB", "SEA", 1, 103, 1),
		stat("Amon-Ra St. Brown", "WR", "DET", 1, 0, 0),
	}

	snaps := []*store.SnapCount{
		snap("Patrick Mahomes", "KC", 1, 68),
		snap("Kenneth Walker", "SEA", 1, 41),
		snap("Unknown Lineman", "KC", 1, 70),
	}

	salaries := []*store.SalaryEntry{
		salary("Patrick Mahomes II", "KC", "QB", 1, 8200),
		salary("Amon-Ra St. Brown", "DET", "WR", 1, 7600),
	}

	// A curated mapping resolves the suffixed DraftKings variant up front.
	mappings := []*store.NameMapping{
		{
			RawName:       "Patrick Mahomes II",
			Team:          "KC",
			CanonicalName: "patrick mahomes",
			Position:      "QB",
			Source:        store.MappingSourceManual,
		},
	}

	engine := reconciliation.NewEngine(mappings)
	canonical, report := engine.Reconcile(stats, snaps, salaries)

	log.Printf("Report: %s", report.Summary())
	log.Printf("Snap feed: %d matched, %d mapped, %d unmatched (rate %.0f%%)",
		report.Snaps.Matched, report.Snaps.Mapped, report.Snaps.Unmatched, report.Snaps.MatchRate()*100)
	log.Printf("Salary feed: %d matched, %d mapped, %d unmatched (rate %.0f%%)",
		report.Salaries.Matched, report.Salaries.Mapped, report.Salaries.Unmatched, report.Salaries.MatchRate()*100)

	log.Printf("Canonical rows (%d):", len(canonical))
	for _, row := range canonical {
		displayRow(row)
	}

	if len(report.NewMappings) > 0 {
		log.Printf("New mappings to persist (%d):", len(report.NewMappings))
		for _, m := range report.NewMappings {
			log.Printf("  %q (%s) -> %s", m.RawName, m.Team, m.CanonicalName)
		}
	}

	log.Println("✓ Reconciliation dry run complete")
}

func displayRow(row *store.CanonicalPlayerWeek) {
	snaps := "-"
	if row.SnapCount.Valid {
		snaps = strconv.FormatInt(row.SnapCount.Int64, 10)
	}
	salary := "-"
	if row.Salary.Valid {
		salary = "$" + strconv.FormatInt(row.Salary.Int64, 10)
	}
	log.Printf("  %-22s %-3s %-3s wk%-2d snaps=%-4s salary=%-6s full=%.1f half=%.1f",
		row.DisplayName, row.Position, row.Team, row.Week, snaps, salary,
		row.FantasyPointsFull, row.FantasyPointsHalf)
}

func stat(name, position, team string, week, passYds, passTDs int) *store.WeeklyStat {
	return &store.WeeklyStat{
		ID:           name + "_2024_1",
		PlayerName:   name,
		Position:     position,
		Team:         team,
		Season:       2024,
		Week:         week,
		PassingYards: passYds,
		PassingTDs:   passTDs,
	}
}

func snap(name, team string, week, offenseSnaps int) *store.SnapCount {
	return &store.SnapCount{
		ID:           name + "_2024_1_snaps",
		PlayerName:   name,
		Team:         team,
		Season:       2024,
		Week:         week,
		OffenseSnaps: offenseSnaps,
	}
}

func salary(name, team, position string, week, amount int) *store.SalaryEntry {
	return &store.SalaryEntry{
		ID:         name + "_dk",
		PlayerName: name,
		Team:       team,
		Position:   position,
		Season:     2024,
		Week:       week,
		Salary:     amount,
	}
}
