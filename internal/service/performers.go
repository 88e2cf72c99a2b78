package service

import (
	"context"
	"fmt"

	"github.com/fortuna/gridiron/internal/scoring"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
)

// PerformersService ranks reconciled player-weeks and season totals
type PerformersService struct {
	canonicalRepo *repository.CanonicalRepository
}

// NewPerformersService creates a new performers service
func NewPerformersService(db *store.Database) *PerformersService {
	return &PerformersService{
		canonicalRepo: repository.NewCanonicalRepository(db),
	}
}

// TopWeek returns the highest-scoring player-weeks for one week, optionally
// narrowed to a position.
func (s *PerformersService) TopWeek(ctx context.Context, season, week int, position string, mode scoring.Mode, limit int) ([]*PlayerWeekView, error) {
	records, err := s.canonicalRepo.TopWeek(ctx, season, week, position, mode == scoring.HalfPPR, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching top week performers: %w", err)
	}

	views := make([]*PlayerWeekView, 0, len(records))
	for _, rec := range records {
		views = append(views, newPlayerWeekView(rec, mode))
	}

	return views, nil
}

// TopSeason returns season-total rankings. Totals aggregate the stored
// unrounded points; rounding happens once here on the way out.
func (s *PerformersService) TopSeason(ctx context.Context, season int, position string, mode scoring.Mode, limit int) ([]*SeasonTotalView, error) {
	performances, err := s.canonicalRepo.TopSeason(ctx, season, position, mode == scoring.HalfPPR, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching top season performers: %w", err)
	}

	views := make([]*SeasonTotalView, 0, len(performances))
	for _, p := range performances {
		views = append(views, &SeasonTotalView{
			CanonicalName: p.CanonicalName,
			DisplayName:   p.DisplayName,
			Position:      p.Position,
			Team:          p.Team,
			Season:        p.Season,
			GamesPlayed:   p.GamesPlayed,
			TotalPoints:   scoring.Round1(p.TotalPoints),
			AvgPoints:     scoring.Round1(p.AvgPoints),
			ScoringMode:   string(mode),
		})
	}

	return views, nil
}

// SeasonTotalView is one player's season aggregate in the rankings response
type SeasonTotalView struct {
	CanonicalName string  `json:"canonical_name"`
	DisplayName   string  `json:"display_name"`
	Position      string  `json:"position"`
	Team          string  `json:"team"`
	Season        int     `json:"season"`
	GamesPlayed   int     `json:"games_played"`
	TotalPoints   float64 `json:"total_points"`
	AvgPoints     float64 `json:"avg_points"`
	ScoringMode   string  `json:"scoring_mode"`
}
