package reconciliation

import (
	"errors"
	"testing"

	"github.com/fortuna/gridiron/internal/store"
)

func makeStat(name, team, position string, week, season int) *store.WeeklyStat {
	return &store.WeeklyStat{
		PlayerName: name,
		Team:       team,
		Position:   position,
		Week:       week,
		Season:     season,
	}
}

func TestMatcher_ExactMatchAcrossNameVariants(t *testing.T) {
	stats := []*store.WeeklyStat{
		makeStat("Ja'Marr Chase", "CIN", "WR", 5, 2025),
		makeStat("Tee Higgins", "CIN", "WR", 5, 2025),
	}
	m := NewMatcher(stats, nil)

	result, err := m.Match("Jamarr Chase", "CIN", 5, 2025)
	if err != nil {
		t.Fatalf("Match error: %v", err)
	}
	if result.Outcome != MatchExact {
		t.Fatalf("Outcome = %s, want %s", result.Outcome, MatchExact)
	}
	if result.Identity.Name != "jamarr chase" {
		t.Errorf("Identity.Name = %q, want %q", result.Identity.Name, "jamarr chase")
	}
	if result.Identity.Position != "WR" {
		t.Errorf("Identity.Position = %q, want %q", result.Identity.Position, "WR")
	}
	if result.Stat == nil || result.Stat.PlayerName != "Ja'Marr Chase" {
		t.Errorf("Stat not resolved to the spine row: %+v", result.Stat)
	}
}

func TestMatcher_NeverMatchesAcrossScope(t *testing.T) {
	stats := []*store.WeeklyStat{
		makeStat("Zay Jones", "ARI", "WR", 5, 2025),
	}
	m := NewMatcher(stats, nil)

	cases := []struct {
		name         string
		team         string
		week, season int
	}{
		{"Zay Jones", "JAX", 5, 2025},
		{"Zay Jones", "ARI", 6, 2025},
		{"Zay Jones", "ARI", 5, 2024},
	}

	for _, tc := range cases {
		result, err := m.Match(tc.name, tc.team, tc.week, tc.season)
		if err != nil {
			t.Fatalf("Match(%q, %s, w%d, %d) error: %v", tc.name, tc.team, tc.week, tc.season, err)
		}
		if result.Outcome != MatchUnmatched {
			t.Errorf("Match(%q, %s, w%d, %d) = %s, want %s",
				tc.name, tc.team, tc.week, tc.season, result.Outcome, MatchUnmatched)
		}
	}
}

func TestMatcher_UnmatchedIsNotAnError(t *testing.T) {
	m := NewMatcher([]*store.WeeklyStat{makeStat("Bijan Robinson", "ATL", "RB", 3, 2025)}, nil)

	result, err := m.Match("Tyler Allgeier", "ATL", 3, 2025)
	if err != nil {
		t.Fatalf("Match error: %v", err)
	}
	if result.Outcome != MatchUnmatched {
		t.Errorf("Outcome = %s, want %s", result.Outcome, MatchUnmatched)
	}
	if result.Identity != nil {
		t.Errorf("Identity = %+v, want nil", result.Identity)
	}
}

func TestMatcher_SharedNameIsAmbiguousWithoutMapping(t *testing.T) {
	stats := []*store.WeeklyStat{
		makeStat("Josh Allen", "BUF", "QB", 1, 2018),
		makeStat("Josh Allen", "BUF", "LB", 1, 2018),
	}
	m := NewMatcher(stats, nil)

	result, err := m.Match("Josh Allen", "BUF", 1, 2018)
	if err != nil {
		t.Fatalf("Match error: %v", err)
	}
	if result.Outcome != MatchAmbiguous {
		t.Fatalf("Outcome = %s, want %s", result.Outcome, MatchAmbiguous)
	}
	if len(result.Candidates) != 2 {
		t.Errorf("len(Candidates) = %d, want 2", len(result.Candidates))
	}
}

func TestMatcher_MappingResolvesSharedName(t *testing.T) {
	stats := []*store.WeeklyStat{
		makeStat("Josh Allen", "BUF", "QB", 1, 2018),
		makeStat("Josh Allen", "BUF", "LB", 1, 2018),
	}
	mappings := []*store.NameMapping{
		{RawName: "Josh Allen", Team: "BUF", CanonicalName: "josh allen", Position: "QB", Source: store.MappingSourceManual},
	}
	m := NewMatcher(stats, mappings)

	result, err := m.Match("Josh Allen", "BUF", 1, 2018)
	if err != nil {
		t.Fatalf("Match error: %v", err)
	}
	if result.Outcome != MatchMapped {
		t.Fatalf("Outcome = %s, want %s", result.Outcome, MatchMapped)
	}
	if result.Identity.Position != "QB" {
		t.Errorf("Identity.Position = %q, want %q", result.Identity.Position, "QB")
	}
}

func TestMatcher_MappingResolvesNicknameVariant(t *testing.T) {
	stats := []*store.WeeklyStat{
		makeStat("Marquise Brown", "KC", "WR", 2, 2025),
	}
	m := NewMatcher(stats, nil)

	// Without a mapping the nickname never matches: normalization only
	// handles suffixes and punctuation.
	result, err := m.Match("Hollywood Brown", "KC", 2, 2025)
	if err != nil {
		t.Fatalf("Match error: %v", err)
	}
	if result.Outcome != MatchUnmatched {
		t.Fatalf("Outcome without mapping = %s, want %s", result.Outcome, MatchUnmatched)
	}

	mappings := []*store.NameMapping{
		{RawName: "Hollywood Brown", Team: "KC", CanonicalName: "marquise brown", Position: "WR", Source: store.MappingSourceManual},
	}
	m = NewMatcher(stats, mappings)

	result, err = m.Match("Hollywood Brown", "KC", 2, 2025)
	if err != nil {
		t.Fatalf("Match error: %v", err)
	}
	if result.Outcome != MatchMapped {
		t.Fatalf("Outcome with mapping = %s, want %s", result.Outcome, MatchMapped)
	}
	if result.Identity.Name != "marquise brown" {
		t.Errorf("Identity.Name = %q, want %q", result.Identity.Name, "marquise brown")
	}
}

func TestMatcher_MappingToAbsentSpineRowIsUnmatched(t *testing.T) {
	stats := []*store.WeeklyStat{
		makeStat("Marquise Brown", "KC", "WR", 2, 2025),
	}
	mappings := []*store.NameMapping{
		{RawName: "Hollywood Brown", Team: "KC", CanonicalName: "marquise brown", Position: "WR", Source: store.MappingSourceManual},
	}
	m := NewMatcher(stats, mappings)

	// The mapped identity has no stat line in week 3: the join stays
	// stats-anchored, so the mapping cannot conjure a row.
	result, err := m.Match("Hollywood Brown", "KC", 3, 2025)
	if err != nil {
		t.Fatalf("Match error: %v", err)
	}
	if result.Outcome != MatchUnmatched {
		t.Errorf("Outcome = %s, want %s", result.Outcome, MatchUnmatched)
	}
}

func TestMatcher_BlankCandidateName(t *testing.T) {
	m := NewMatcher([]*store.WeeklyStat{makeStat("CeeDee Lamb", "DAL", "WR", 1, 2025)}, nil)

	if _, err := m.Match("", "DAL", 1, 2025); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Match with blank name error = %v, want ErrInvalidName", err)
	}
}
