package store

import (
	"testing"
	"time"
)

func TestIsFantasyPosition(t *testing.T) {
	for _, pos := range []string{"QB", "RB", "WR", "TE"} {
		if !IsFantasyPosition(pos) {
			t.Errorf("IsFantasyPosition(%q) = false, want true", pos)
		}
	}
	for _, pos := range []string{"K", "DST", "G", "qb", ""} {
		if IsFantasyPosition(pos) {
			t.Errorf("IsFantasyPosition(%q) = true, want false", pos)
		}
	}
}

func TestCurrentSeason(t *testing.T) {
	cases := []struct {
		at   time.Time
		want int
	}{
		{time.Date(2024, time.September, 5, 0, 0, 0, 0, time.UTC), 2024},
		{time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC), 2024},
		{time.Date(2025, time.January, 12, 0, 0, 0, 0, time.UTC), 2024},
		{time.Date(2025, time.February, 9, 0, 0, 0, 0, time.UTC), 2024},
		{time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC), 2024},
		{time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), 2025},
	}

	for _, tc := range cases {
		if got := CurrentSeason(tc.at); got != tc.want {
			t.Errorf("CurrentSeason(%s) = %d, want %d", tc.at.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestCanonicalPlayerWeek_Identity(t *testing.T) {
	row := &CanonicalPlayerWeek{
		CanonicalName: "justin jefferson",
		DisplayName:   "Justin Jefferson",
		Team:          "MIN",
		Position:      "WR",
	}

	id := row.Identity()
	if id.Name != "justin jefferson" || id.Team != "MIN" || id.Position != "WR" {
		t.Errorf("Identity() = %+v, want the normalized name with team and position", id)
	}
}
