package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/scoring"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
)

// PlayersService serves reconciled player-week views
type PlayersService struct {
	canonicalRepo *repository.CanonicalRepository
	cache         *cache.RedisCache
}

// NewPlayersService creates a new players service. A nil cache disables
// read-through caching; queries then always hit the database.
func NewPlayersService(db *store.Database, redisCache *cache.RedisCache) *PlayersService {
	return &PlayersService{
		canonicalRepo: repository.NewCanonicalRepository(db),
		cache:         redisCache,
	}
}

// PlayersQuery narrows a player-week listing. Season is required; zero
// values elsewhere mean "no filter".
type PlayersQuery struct {
	Season   int
	Week     int
	Team     string
	Position string
	Mode     scoring.Mode
	Limit    int
	Offset   int
}

// ListPlayerWeeks returns reconciled player-weeks matching the query, best
// week first under the requested scoring mode. Results are cached until the
// next refresh invalidates them.
func (s *PlayersService) ListPlayerWeeks(ctx context.Context, q PlayersQuery) ([]*PlayerWeekView, error) {
	cacheKey := fmt.Sprintf("%s%d:%d:%s:%s:%s:%d:%d",
		cache.PlayersKeyPrefix, q.Season, q.Week, q.Team, q.Position, q.Mode, q.Limit, q.Offset)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var views []*PlayerWeekView
			if err := json.Unmarshal([]byte(cached), &views); err == nil {
				return views, nil
			}
		}
	}

	records, err := s.canonicalRepo.List(ctx, repository.CanonicalFilter{
		Season:   q.Season,
		Week:     q.Week,
		Team:     strings.ToUpper(strings.TrimSpace(q.Team)),
		Position: strings.ToUpper(strings.TrimSpace(q.Position)),
		HalfPPR:  q.Mode == scoring.HalfPPR,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing player weeks: %w", err)
	}

	views := make([]*PlayerWeekView, 0, len(records))
	for _, rec := range records {
		views = append(views, newPlayerWeekView(rec, q.Mode))
	}

	if s.cache != nil {
		if data, err := json.Marshal(views); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(data), cache.DefaultTTL); err != nil {
				log.Printf("Warning: failed to cache player weeks: %v", err)
			}
		}
	}

	return views, nil
}

// newPlayerWeekView projects a canonical record into its API shape under one
// scoring mode. Snap count and salary stay nullable: a missing feed row is
// not a zero.
func newPlayerWeekView(rec *store.CanonicalPlayerWeek, mode scoring.Mode) *PlayerWeekView {
	points := rec.FantasyPointsFull
	if mode == scoring.HalfPPR {
		points = rec.FantasyPointsHalf
	}

	view := &PlayerWeekView{
		CanonicalName:  rec.CanonicalName,
		DisplayName:    rec.DisplayName,
		Position:       rec.Position,
		Team:           rec.Team,
		Season:         rec.Season,
		Week:           rec.Week,
		PassingYards:   rec.PassingYards,
		PassingTDs:     rec.PassingTDs,
		Interceptions:  rec.Interceptions,
		RushingYards:   rec.RushingYards,
		RushingTDs:     rec.RushingTDs,
		Receptions:     rec.Receptions,
		ReceivingYards: rec.ReceivingYards,
		ReceivingTDs:   rec.ReceivingTDs,
		Targets:        rec.Targets,
		FumblesLost:    rec.FumblesLost,
		FantasyPoints:  scoring.Round1(points),
		ScoringMode:    string(mode),
	}

	if rec.Opponent.Valid {
		view.Opponent = rec.Opponent.String
	}
	if rec.SnapCount.Valid {
		snaps := rec.SnapCount.Int64
		view.SnapCount = &snaps
	}
	if rec.Salary.Valid {
		salary := rec.Salary.Int64
		view.Salary = &salary
	}

	return view
}

// PlayerWeekView is the API shape of one reconciled player-week
type PlayerWeekView struct {
	CanonicalName  string   `json:"canonical_name"`
	DisplayName    string   `json:"display_name"`
	Position       string   `json:"position"`
	Team           string   `json:"team"`
	Season         int      `json:"season"`
	Week           int      `json:"week"`
	Opponent       string   `json:"opponent,omitempty"`
	PassingYards   int      `json:"passing_yards"`
	PassingTDs     int      `json:"passing_tds"`
	Interceptions  int      `json:"interceptions"`
	RushingYards   int      `json:"rushing_yards"`
	RushingTDs     int      `json:"rushing_tds"`
	Receptions     int      `json:"receptions"`
	ReceivingYards int      `json:"receiving_yards"`
	ReceivingTDs   int      `json:"receiving_tds"`
	Targets        int      `json:"targets"`
	FumblesLost    int      `json:"fumbles_lost"`
	SnapCount      *int64   `json:"snap_count"`
	Salary         *int64   `json:"salary"`
	FantasyPoints  float64  `json:"fantasy_points"`
	ScoringMode    string   `json:"scoring_mode"`
}
