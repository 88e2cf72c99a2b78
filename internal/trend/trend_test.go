package trend

import (
	"errors"
	"math"
	"testing"

	"github.com/fortuna/gridiron/internal/scoring"
	"github.com/fortuna/gridiron/internal/store"
)

func makeRow(canonical, display, position, team string, week, receptions, recYards int) *store.CanonicalPlayerWeek {
	return &store.CanonicalPlayerWeek{
		CanonicalName:  canonical,
		DisplayName:    display,
		Position:       position,
		Team:           team,
		Season:         2025,
		Week:           week,
		Receptions:     receptions,
		ReceivingYards: recYards,
	}
}

func TestBuild_RejectsInvertedRange(t *testing.T) {
	_, err := Build(nil, "CIN", 6, 4, scoring.FullPPR)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Build(start=6, end=4) error = %v, want ErrInvalidRange", err)
	}
}

func TestBuild_EmptyResultIsValid(t *testing.T) {
	rows := []*store.CanonicalPlayerWeek{
		makeRow("tee higgins", "Tee Higgins", "WR", "CIN", 3, 5, 71),
	}

	series, err := Build(rows, "JAX", 1, 18, scoring.FullPPR)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("len(series) = %d, want 0 for a team with no records", len(series))
	}
}

func TestBuild_GroupsNameVariantsIntoOneSeries(t *testing.T) {
	rows := []*store.CanonicalPlayerWeek{
		makeRow("odell beckham", "Odell Beckham Jr.", "WR", "MIA", 3, 4, 46),
		makeRow("odell beckham", "Odell Beckham", "WR", "MIA", 5, 6, 81),
	}

	series, err := Build(rows, "MIA", 1, 18, scoring.FullPPR)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("len(series) = %d, want 1 (variants must group)", len(series))
	}

	s := series[0]
	if len(s.Weeks) != 2 {
		t.Errorf("len(Weeks) = %d, want 2", len(s.Weeks))
	}
	if s.DisplayName != "Odell Beckham" {
		t.Errorf("DisplayName = %q, want the later week's spelling %q", s.DisplayName, "Odell Beckham")
	}
}

func TestBuild_OrderingContract(t *testing.T) {
	rows := []*store.CanonicalPlayerWeek{
		makeRow("george kittle", "George Kittle", "TE", "SF", 2, 4, 52),
		makeRow("deebo samuel", "Deebo Samuel", "WR", "SF", 2, 6, 79),
		makeRow("brock purdy", "Brock Purdy", "QB", "SF", 2, 0, 0),
		makeRow("christian mccaffrey", "Christian McCaffrey", "RB", "SF", 2, 7, 61),
		makeRow("brandon aiyuk", "Brandon Aiyuk", "WR", "SF", 2, 5, 68),
	}

	series, err := Build(rows, "SF", 1, 18, scoring.HalfPPR)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	var got []string
	for _, s := range series {
		got = append(got, s.Identity.Position+" "+s.DisplayName)
	}

	want := []string{
		"QB Brock Purdy",
		"RB Christian McCaffrey",
		"WR Brandon Aiyuk",
		"WR Deebo Samuel",
		"TE George Kittle",
	}

	if len(got) != len(want) {
		t.Fatalf("len(series) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("series[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuild_WindowIsInclusive(t *testing.T) {
	rows := []*store.CanonicalPlayerWeek{
		makeRow("tee higgins", "Tee Higgins", "WR", "CIN", 3, 5, 71),
		makeRow("tee higgins", "Tee Higgins", "WR", "CIN", 4, 3, 39),
		makeRow("tee higgins", "Tee Higgins", "WR", "CIN", 5, 8, 102),
		makeRow("tee higgins", "Tee Higgins", "WR", "CIN", 6, 2, 18),
	}

	series, err := Build(rows, "CIN", 4, 5, scoring.FullPPR)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("len(series) = %d, want 1", len(series))
	}

	s := series[0]
	if len(s.Weeks) != 2 {
		t.Fatalf("len(Weeks) = %d, want 2 (weeks 4 and 5 inclusive)", len(s.Weeks))
	}
	for _, week := range []int{4, 5} {
		if _, ok := s.Weeks[week]; !ok {
			t.Errorf("Weeks missing %d", week)
		}
	}
	for _, week := range []int{3, 6} {
		if _, ok := s.Weeks[week]; ok {
			t.Errorf("Weeks contains %d, outside the window", week)
		}
	}
}

func TestBuild_SparseWeeksNotSynthesized(t *testing.T) {
	rows := []*store.CanonicalPlayerWeek{
		makeRow("puka nacua", "Puka Nacua", "WR", "LAR", 2, 7, 94),
		makeRow("puka nacua", "Puka Nacua", "WR", "LAR", 4, 9, 112),
	}

	series, err := Build(rows, "LAR", 1, 5, scoring.FullPPR)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	s := series[0]
	if _, ok := s.Weeks[3]; ok {
		t.Errorf("Weeks contains a synthesized entry for the missed week 3")
	}
	if s.GamesPlayed != 2 {
		t.Errorf("GamesPlayed = %d, want 2", s.GamesPlayed)
	}

	wantTotal := (94*0.1 + 7.0) + (112*0.1 + 9.0)
	if math.Abs(s.TotalPoints-wantTotal) > 1e-9 {
		t.Errorf("TotalPoints = %v, want %v", s.TotalPoints, wantTotal)
	}
	if math.Abs(s.AvgPoints-wantTotal/2) > 1e-9 {
		t.Errorf("AvgPoints = %v, want %v", s.AvgPoints, wantTotal/2)
	}
}

func TestBuild_PointsFollowMode(t *testing.T) {
	rows := []*store.CanonicalPlayerWeek{
		makeRow("tee higgins", "Tee Higgins", "WR", "CIN", 5, 8, 102),
	}

	full, err := Build(rows, "CIN", 5, 5, scoring.FullPPR)
	if err != nil {
		t.Fatalf("Build(full) error: %v", err)
	}
	half, err := Build(rows, "CIN", 5, 5, scoring.HalfPPR)
	if err != nil {
		t.Fatalf("Build(half) error: %v", err)
	}

	delta := full[0].Points[5] - half[0].Points[5]
	if math.Abs(delta-0.5*8) > 1e-9 {
		t.Errorf("mode delta = %v, want %v", delta, 0.5*8)
	}
}
