package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/scoring"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
	"github.com/fortuna/gridiron/internal/trend"
)

// TrendsService serves per-player week-over-week series for one team
type TrendsService struct {
	canonicalRepo *repository.CanonicalRepository
	cache         *cache.RedisCache
}

// NewTrendsService creates a new trends service
func NewTrendsService(db *store.Database, redisCache *cache.RedisCache) *TrendsService {
	return &TrendsService{
		canonicalRepo: repository.NewCanonicalRepository(db),
		cache:         redisCache,
	}
}

// TrendsQuery describes one team-trend request. The week window is
// inclusive on both ends.
type TrendsQuery struct {
	Season    int
	Team      string
	StartWeek int
	EndWeek   int
	Mode      scoring.Mode
}

// TeamTrends returns every rostered player's series across the window,
// ordered QB, RB, WR, TE and alphabetically within a position. A week a
// player has no record for is absent from the series, never a zero line.
func (s *TrendsService) TeamTrends(ctx context.Context, q TrendsQuery) (*TeamTrends, error) {
	if q.StartWeek > q.EndWeek {
		return nil, fmt.Errorf("%w: weeks %d-%d", trend.ErrInvalidRange, q.StartWeek, q.EndWeek)
	}

	team := strings.ToUpper(strings.TrimSpace(q.Team))

	cacheKey := fmt.Sprintf("%s%d:%s:%d:%d:%s",
		cache.TrendsKeyPrefix, q.Season, team, q.StartWeek, q.EndWeek, q.Mode)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var view TeamTrends
			if err := json.Unmarshal([]byte(cached), &view); err == nil {
				return &view, nil
			}
		}
	}

	records, err := s.canonicalRepo.ListRange(ctx, q.Season, q.StartWeek, q.EndWeek, team)
	if err != nil {
		return nil, fmt.Errorf("listing trend range: %w", err)
	}

	series, err := trend.Build(records, team, q.StartWeek, q.EndWeek, q.Mode)
	if err != nil {
		return nil, fmt.Errorf("building trends: %w", err)
	}

	view := &TeamTrends{
		Team:        team,
		Season:      q.Season,
		StartWeek:   q.StartWeek,
		EndWeek:     q.EndWeek,
		ScoringMode: string(q.Mode),
		Players:     make([]*PlayerTrend, 0, len(series)),
	}
	for _, ps := range series {
		view.Players = append(view.Players, newPlayerTrend(ps))
	}

	if s.cache != nil {
		if data, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(data), cache.DefaultTTL); err != nil {
				log.Printf("Warning: failed to cache team trends: %v", err)
			}
		}
	}

	return view, nil
}

func newPlayerTrend(series *trend.Series) *PlayerTrend {
	pt := &PlayerTrend{
		CanonicalName: series.Identity.Name,
		DisplayName:   series.DisplayName,
		Position:      series.Identity.Position,
		Team:          series.Identity.Team,
		Weeks:         make([]*TrendWeek, 0, len(series.Weeks)),
		GamesPlayed:   series.GamesPlayed,
		TotalPoints:   scoring.Round1(series.TotalPoints),
		AvgPoints:     scoring.Round1(series.AvgPoints),
	}

	for _, week := range sortedSeriesWeeks(series) {
		rec := series.Weeks[week]
		tw := &TrendWeek{
			Week:          week,
			FantasyPoints: scoring.Round1(series.Points[week]),
		}
		if rec.Opponent.Valid {
			tw.Opponent = rec.Opponent.String
		}
		if rec.SnapCount.Valid {
			snaps := rec.SnapCount.Int64
			tw.SnapCount = &snaps
		}
		if rec.Salary.Valid {
			salary := rec.Salary.Int64
			tw.Salary = &salary
		}
		pt.Weeks = append(pt.Weeks, tw)
	}

	return pt
}

func sortedSeriesWeeks(series *trend.Series) []int {
	weeks := make([]int, 0, len(series.Weeks))
	for week := range series.Weeks {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)
	return weeks
}

// TeamTrends is the API shape of one team's trend window
type TeamTrends struct {
	Team        string         `json:"team"`
	Season      int            `json:"season"`
	StartWeek   int            `json:"start_week"`
	EndWeek     int            `json:"end_week"`
	ScoringMode string         `json:"scoring_mode"`
	Players     []*PlayerTrend `json:"players"`
}

// PlayerTrend is one player's series inside a TeamTrends response
type PlayerTrend struct {
	CanonicalName string       `json:"canonical_name"`
	DisplayName   string       `json:"display_name"`
	Position      string       `json:"position"`
	Team          string       `json:"team"`
	Weeks         []*TrendWeek `json:"weeks"`
	GamesPlayed   int          `json:"games_played"`
	TotalPoints   float64      `json:"total_points"`
	AvgPoints     float64      `json:"avg_points"`
}

// TrendWeek is one played week inside a PlayerTrend series
type TrendWeek struct {
	Week          int     `json:"week"`
	Opponent      string  `json:"opponent,omitempty"`
	FantasyPoints float64 `json:"fantasy_points"`
	SnapCount     *int64  `json:"snap_count"`
	Salary        *int64  `json:"salary"`
}
