package trend

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fortuna/gridiron/internal/scoring"
	"github.com/fortuna/gridiron/internal/store"
)

// ErrInvalidRange indicates a trend window with startWeek > endWeek. A usage
// error rejected outright; an empty result for a valid window is not one.
var ErrInvalidRange = errors.New("invalid week range")

// Series is one player's week-indexed slice of reconciled records across the
// requested window. Weeks holds only the weeks the player actually has a
// record for: a bye or inactive week is simply absent, never a synthesized
// zero line.
type Series struct {
	Identity    store.CanonicalIdentity            `json:"identity"`
	DisplayName string                             `json:"display_name"`
	Weeks       map[int]*store.CanonicalPlayerWeek `json:"weeks"`
	Points      map[int]float64                    `json:"points"`
	TotalPoints float64                            `json:"total_points"`
	AvgPoints   float64                            `json:"avg_points"`
	GamesPlayed int                                `json:"games_played"`
}

// positionRank fixes the section order of the trend view: QB, RB, WR, TE.
var positionRank = map[string]int{
	"QB": 0,
	"RB": 1,
	"WR": 2,
	"TE": 3,
}

// Build groups reconciled player-weeks for one team across an inclusive week
// window into per-player series, scored under the given mode. Grouping is by
// canonical identity, never raw name, so a player whose name the feed spelled
// differently in different weeks still produces one series. Output ordering
// is a contract: position priority QB, RB, WR, TE, then alphabetical by
// display name within a position, so the caller renders without sorting.
func Build(canonical []*store.CanonicalPlayerWeek, team string, startWeek, endWeek int, mode scoring.Mode) ([]*Series, error) {
	if startWeek > endWeek {
		return nil, fmt.Errorf("%w: start week %d after end week %d", ErrInvalidRange, startWeek, endWeek)
	}

	teamScope := strings.ToUpper(strings.TrimSpace(team))

	grouped := make(map[store.CanonicalIdentity]*Series)
	var order []store.CanonicalIdentity

	for _, row := range canonical {
		if row.Team != teamScope {
			continue
		}
		if row.Week < startWeek || row.Week > endWeek {
			continue
		}

		identity := row.Identity()
		series, ok := grouped[identity]
		if !ok {
			series = &Series{
				Identity: identity,
				Weeks:    make(map[int]*store.CanonicalPlayerWeek),
				Points:   make(map[int]float64),
			}
			grouped[identity] = series
			order = append(order, identity)
		}

		// A later week's spelling wins the display name, so the series
		// carries the feed's most recent rendering of the player.
		if series.DisplayName == "" || row.Week >= latestWeek(series) {
			series.DisplayName = row.DisplayName
		}

		series.Weeks[row.Week] = row
		series.Points[row.Week] = scoring.Score(row, mode)
	}

	result := make([]*Series, 0, len(grouped))
	for _, identity := range order {
		series := grouped[identity]
		for _, week := range sortedWeeks(series) {
			series.TotalPoints += series.Points[week]
		}
		series.GamesPlayed = len(series.Weeks)
		if series.GamesPlayed > 0 {
			series.AvgPoints = series.TotalPoints / float64(series.GamesPlayed)
		}
		result = append(result, series)
	}

	sort.SliceStable(result, func(i, j int) bool {
		ri, rj := rankOf(result[i].Identity.Position), rankOf(result[j].Identity.Position)
		if ri != rj {
			return ri < rj
		}
		ni, nj := strings.ToLower(result[i].DisplayName), strings.ToLower(result[j].DisplayName)
		if ni != nj {
			return ni < nj
		}
		return result[i].Identity.Name < result[j].Identity.Name
	})

	return result, nil
}

func rankOf(position string) int {
	if rank, ok := positionRank[position]; ok {
		return rank
	}
	return len(positionRank)
}

func latestWeek(s *Series) int {
	latest := 0
	for week := range s.Weeks {
		if week > latest {
			latest = week
		}
	}
	return latest
}

// sortedWeeks returns the series' present weeks in ascending order, keeping
// float accumulation order reproducible across runs.
func sortedWeeks(s *Series) []int {
	weeks := make([]int, 0, len(s.Weeks))
	for week := range s.Weeks {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)
	return weeks
}
