package reconciliation

import (
	"math"
	"strings"
	"testing"

	"github.com/fortuna/gridiron/internal/store"
)

func makeSnap(name, team string, week, season, snaps int) *store.SnapCount {
	return &store.SnapCount{
		PlayerName:   name,
		Team:         team,
		Week:         week,
		Season:       season,
		OffenseSnaps: snaps,
	}
}

func makeSalary(name, team string, week, season, salary int) *store.SalaryEntry {
	return &store.SalaryEntry{
		PlayerName: name,
		Team:       team,
		Week:       week,
		Season:     season,
		Salary:     salary,
	}
}

func TestEngine_OneRowPerValidStatRow(t *testing.T) {
	stats := []*store.WeeklyStat{
		makeStat("Patrick Mahomes", "KC", "QB", 5, 2025),
		makeStat("Travis Kelce", "KC", "TE", 5, 2025),
		makeStat("Isiah Pacheco", "KC", "RB", 5, 2025),
		makeStat("", "KC", "WR", 5, 2025), // malformed: no name
	}
	snaps := []*store.SnapCount{
		makeSnap("Travis Kelce", "KC", 5, 2025, 61),
		makeSnap("Noah Gray", "KC", 5, 2025, 22), // not in stats: ignored
	}
	salaries := []*store.SalaryEntry{
		makeSalary("Patrick Mahomes", "KC", 5, 2025, 8100),
		makeSalary("Rashee Rice", "KC", 5, 2025, 6800), // not in stats: ignored
	}

	engine := NewEngine(nil)
	rows, report := engine.Reconcile(stats, snaps, salaries)

	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3 (one per valid stat row)", len(rows))
	}
	if report.StatRows != 4 {
		t.Errorf("report.StatRows = %d, want 4", report.StatRows)
	}
	if report.Malformed != 1 {
		t.Errorf("report.Malformed = %d, want 1", report.Malformed)
	}
	if report.Produced != 3 {
		t.Errorf("report.Produced = %d, want 3", report.Produced)
	}
	if report.Snaps.Unmatched != 1 {
		t.Errorf("report.Snaps.Unmatched = %d, want 1", report.Snaps.Unmatched)
	}
	if report.Salaries.Unmatched != 1 {
		t.Errorf("report.Salaries.Unmatched = %d, want 1", report.Salaries.Unmatched)
	}
}

func TestEngine_SalaryAttachesAcrossApostropheVariant(t *testing.T) {
	stats := []*store.WeeklyStat{
		{
			PlayerName:     "Ja'Marr Chase",
			Team:           "CIN",
			Position:       "WR",
			Week:           5,
			Season:         2025,
			Receptions:     10,
			ReceivingYards: 103,
		},
	}
	salaries := []*store.SalaryEntry{
		makeSalary("Jamarr Chase", "CIN", 5, 2025, 9200),
	}

	engine := NewEngine(nil)
	rows, report := engine.Reconcile(stats, nil, salaries)

	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}

	row := rows[0]
	if !row.Salary.Valid || row.Salary.Int64 != 9200 {
		t.Errorf("Salary = %+v, want valid 9200", row.Salary)
	}
	if row.SnapCount.Valid {
		t.Errorf("SnapCount = %+v, want null (no snap feed coverage)", row.SnapCount)
	}
	if got, want := row.FantasyPointsFull, 103*0.1+10*1.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("FantasyPointsFull = %v, want %v", got, want)
	}
	if report.Salaries.Matched != 1 {
		t.Errorf("report.Salaries.Matched = %d, want 1", report.Salaries.Matched)
	}
}

func TestEngine_AbsentSnapIsNotZero(t *testing.T) {
	stats := []*store.WeeklyStat{
		makeStat("Deebo Samuel", "SF", "WR", 8, 2025),
		makeStat("Jauan Jennings", "SF", "WR", 8, 2025),
	}
	snaps := []*store.SnapCount{
		// A recorded zero-snap game is data, not absence.
		makeSnap("Deebo Samuel", "SF", 8, 2025, 0),
	}

	engine := NewEngine(nil)
	rows, _ := engine.Reconcile(stats, snaps, nil)

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	deebo, jennings := rows[0], rows[1]
	if !deebo.SnapCount.Valid || deebo.SnapCount.Int64 != 0 {
		t.Errorf("recorded zero snaps: SnapCount = %+v, want valid 0", deebo.SnapCount)
	}
	if jennings.SnapCount.Valid {
		t.Errorf("no snap coverage: SnapCount = %+v, want null", jennings.SnapCount)
	}
}

func TestEngine_MalformedRowsReportedNotFatal(t *testing.T) {
	stats := []*store.WeeklyStat{
		makeStat("Saquon Barkley", "PHI", "RB", 2, 2025),
		makeStat("A.J. Brown", "", "WR", 2, 2025),  // no team
		makeStat("DeVonta Smith", "PHI", "WR", 0, 2025), // no week
		makeStat("Dallas Goedert", "PHI", "TE", 2, 0),   // no season
	}

	engine := NewEngine(nil)
	rows, report := engine.Reconcile(stats, nil, nil)

	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if report.Malformed != 3 {
		t.Errorf("report.Malformed = %d, want 3", report.Malformed)
	}
	if len(report.MalformedSamples) != 3 {
		t.Errorf("len(MalformedSamples) = %d, want 3", len(report.MalformedSamples))
	}
}

func TestEngine_AmbiguousSecondaryLeftUnresolved(t *testing.T) {
	stats := []*store.WeeklyStat{
		makeStat("Josh Allen", "BUF", "QB", 1, 2018),
		makeStat("Josh Allen", "BUF", "LB", 1, 2018),
	}
	salaries := []*store.SalaryEntry{
		makeSalary("Josh Allen", "BUF", 1, 2018, 5400),
	}

	engine := NewEngine(nil)
	rows, report := engine.Reconcile(stats, nil, salaries)

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	for _, row := range rows {
		if row.Salary.Valid {
			t.Errorf("ambiguous salary was attached to %s %s, want left null", row.DisplayName, row.Position)
		}
	}
	if report.Salaries.Ambiguous != 1 {
		t.Errorf("report.Salaries.Ambiguous = %d, want 1", report.Salaries.Ambiguous)
	}
	if len(report.AmbiguousSamples) != 1 {
		t.Errorf("len(AmbiguousSamples) = %d, want 1", len(report.AmbiguousSamples))
	}
}

func TestEngine_MappingCacheResolvesAmbiguity(t *testing.T) {
	stats := []*store.WeeklyStat{
		makeStat("Josh Allen", "BUF", "QB", 1, 2018),
		makeStat("Josh Allen", "BUF", "LB", 1, 2018),
	}
	salaries := []*store.SalaryEntry{
		makeSalary("Josh Allen", "BUF", 1, 2018, 5400),
	}
	mappings := []*store.NameMapping{
		{RawName: "Josh Allen", Team: "BUF", CanonicalName: "josh allen", Position: "QB", Source: store.MappingSourceManual},
	}

	engine := NewEngine(mappings)
	rows, report := engine.Reconcile(stats, nil, salaries)

	var qb, lb *store.CanonicalPlayerWeek
	for _, row := range rows {
		switch row.Position {
		case "QB":
			qb = row
		case "LB":
			lb = row
		}
	}

	if qb == nil || !qb.Salary.Valid || qb.Salary.Int64 != 5400 {
		t.Errorf("QB salary = %+v, want valid 5400", qb)
	}
	if lb == nil || lb.Salary.Valid {
		t.Errorf("LB salary attached, want null")
	}
	if report.Salaries.Mapped != 1 {
		t.Errorf("report.Salaries.Mapped = %d, want 1", report.Salaries.Mapped)
	}
	if report.Salaries.Ambiguous != 0 {
		t.Errorf("report.Salaries.Ambiguous = %d, want 0", report.Salaries.Ambiguous)
	}
}

func TestEngine_CollectsMappingsForSpellingVariants(t *testing.T) {
	stats := []*store.WeeklyStat{
		{PlayerName: "Ja'Marr Chase", Team: "CIN", Position: "WR", Week: 5, Season: 2025},
		{PlayerName: "Joe Burrow", Team: "CIN", Position: "QB", Week: 5, Season: 2025},
	}
	salaries := []*store.SalaryEntry{
		makeSalary("Jamarr Chase", "CIN", 5, 2025, 9200),
		makeSalary("Joe Burrow", "CIN", 5, 2025, 7900), // identical spelling: nothing to cache
	}

	engine := NewEngine(nil)
	_, report := engine.Reconcile(stats, nil, salaries)

	if len(report.NewMappings) != 1 {
		t.Fatalf("len(NewMappings) = %d, want 1", len(report.NewMappings))
	}

	mapping := report.NewMappings[0]
	if mapping.RawName != "Jamarr Chase" {
		t.Errorf("RawName = %q, want %q", mapping.RawName, "Jamarr Chase")
	}
	if mapping.CanonicalName != "jamarr chase" {
		t.Errorf("CanonicalName = %q, want %q", mapping.CanonicalName, "jamarr chase")
	}
	if mapping.Source != store.MappingSourceAuto {
		t.Errorf("Source = %q, want %q", mapping.Source, store.MappingSourceAuto)
	}
}

func TestEngine_DuplicateSpineRowFirstEncounterWins(t *testing.T) {
	stats := []*store.WeeklyStat{
		{PlayerName: "Derrick Henry", Team: "BAL", Position: "RB", Week: 3, Season: 2025, RushingYards: 151},
		// Same identity listed again, as when a feed row loses its player id
		// and reappears under a generated one.
		{PlayerName: "Derrick Henry", Team: "BAL", Position: "RB", Week: 3, Season: 2025, RushingYards: 84},
	}

	engine := NewEngine(nil)
	rows, report := engine.Reconcile(stats, nil, nil)

	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].RushingYards != 151 {
		t.Errorf("RushingYards = %d, want 151 (first encounter wins)", rows[0].RushingYards)
	}
	if report.Malformed != 1 {
		t.Errorf("report.Malformed = %d, want 1", report.Malformed)
	}
	if len(report.MalformedSamples) != 1 || !strings.Contains(report.MalformedSamples[0], "duplicate player-week") {
		t.Errorf("MalformedSamples = %v, want one duplicate player-week sample", report.MalformedSamples)
	}
}

func TestEngine_DuplicateSecondaryRowsCounted(t *testing.T) {
	stats := []*store.WeeklyStat{
		makeStat("Justin Jefferson", "MIN", "WR", 4, 2025),
	}
	snaps := []*store.SnapCount{
		makeSnap("Justin Jefferson", "MIN", 4, 2025, 58),
		makeSnap("Justin Jefferson", "MIN", 4, 2025, 58),
	}

	engine := NewEngine(nil)
	rows, report := engine.Reconcile(stats, snaps, nil)

	if !rows[0].SnapCount.Valid || rows[0].SnapCount.Int64 != 58 {
		t.Errorf("SnapCount = %+v, want valid 58", rows[0].SnapCount)
	}
	if report.Snaps.Duplicates != 1 {
		t.Errorf("report.Snaps.Duplicates = %d, want 1", report.Snaps.Duplicates)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	stats := []*store.WeeklyStat{
		{PlayerName: "Ja'Marr Chase", Team: "CIN", Position: "WR", Week: 5, Season: 2025, Receptions: 10, ReceivingYards: 103},
		{PlayerName: "Joe Burrow", Team: "CIN", Position: "QB", Week: 5, Season: 2025, PassingYards: 301, PassingTDs: 2},
	}
	snaps := []*store.SnapCount{
		makeSnap("Jamarr Chase", "CIN", 5, 2025, 64),
	}
	salaries := []*store.SalaryEntry{
		makeSalary("Joe Burrow", "CIN", 5, 2025, 7900),
	}

	engine := NewEngine(nil)
	first, _ := engine.Reconcile(stats, snaps, salaries)
	second, _ := engine.Reconcile(stats, snaps, salaries)

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.CanonicalName != b.CanonicalName || a.SnapCount != b.SnapCount ||
			a.Salary != b.Salary || a.FantasyPointsFull != b.FantasyPointsFull ||
			a.FantasyPointsHalf != b.FantasyPointsHalf {
			t.Errorf("row %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
}
