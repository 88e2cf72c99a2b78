package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/fortuna/gridiron/internal/store"
)

// CanonicalRepository handles reconciled player-week rows. The table is
// derived data: every refresh rebuilds the touched weeks wholesale inside one
// transaction, so readers never see a half-reconciled week.
type CanonicalRepository struct {
	db *store.Database
}

// NewCanonicalRepository creates a new canonical repository
func NewCanonicalRepository(db *store.Database) *CanonicalRepository {
	return &CanonicalRepository{db: db}
}

const canonicalColumns = `id, canonical_name, display_name, position, team, season, week,
		opponent, passing_yards, passing_tds, interceptions,
		rushing_yards, rushing_tds, receptions, receiving_yards, receiving_tds,
		targets, fumbles_lost, snap_count, salary,
		fantasy_points_full, fantasy_points_half, created_at`

// CanonicalFilter narrows List results. Season is required; zero values for
// the rest mean "no filter".
type CanonicalFilter struct {
	Season   int
	Week     int
	Team     string
	Position string
	HalfPPR  bool
	Limit    int
	Offset   int
}

// ReplaceWeeks deletes the canonical rows for the given season+weeks and
// inserts the freshly reconciled rows, all in one transaction.
func (r *CanonicalRepository) ReplaceWeeks(ctx context.Context, season int, weeks []int, records []*store.CanonicalPlayerWeek) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning canonical replace: %w", err)
	}
	defer tx.Rollback()

	weekIDs := make(pq.Int64Array, len(weeks))
	for i, w := range weeks {
		weekIDs[i] = int64(w)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM canonical_player_weeks WHERE season = $1 AND week = ANY($2)`, season, weekIDs); err != nil {
		return fmt.Errorf("clearing canonical rows: %w", err)
	}

	insert := `
		INSERT INTO canonical_player_weeks (canonical_name, display_name, position, team, season, week,
			opponent, passing_yards, passing_tds, interceptions,
			rushing_yards, rushing_tds, receptions, receiving_yards, receiving_tds,
			targets, fumbles_lost, snap_count, salary, fantasy_points_full, fantasy_points_half)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	for _, c := range records {
		_, err := tx.ExecContext(ctx, insert,
			c.CanonicalName, c.DisplayName, c.Position, c.Team, c.Season, c.Week,
			c.Opponent, c.PassingYards, c.PassingTDs, c.Interceptions,
			c.RushingYards, c.RushingTDs, c.Receptions, c.ReceivingYards, c.ReceivingTDs,
			c.Targets, c.FumblesLost, c.SnapCount, c.Salary, c.FantasyPointsFull, c.FantasyPointsHalf,
		)
		if err != nil {
			return fmt.Errorf("inserting canonical row for %s week %d: %w", c.CanonicalName, c.Week, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing canonical replace: %w", err)
	}

	return nil
}

// List returns canonical rows matching the filter, best fantasy week first,
// name as the tiebreak.
func (r *CanonicalRepository) List(ctx context.Context, f CanonicalFilter) ([]*store.CanonicalPlayerWeek, error) {
	conditions := []string{"season = $1"}
	args := []interface{}{f.Season}

	if f.Week > 0 {
		args = append(args, f.Week)
		conditions = append(conditions, fmt.Sprintf("week = $%d", len(args)))
	}
	if f.Team != "" {
		args = append(args, f.Team)
		conditions = append(conditions, fmt.Sprintf("team = $%d", len(args)))
	}
	if f.Position != "" {
		args = append(args, f.Position)
		conditions = append(conditions, fmt.Sprintf("position = $%d", len(args)))
	}

	orderCol := "fantasy_points_full"
	if f.HalfPPR {
		orderCol = "fantasy_points_half"
	}

	query := `
		SELECT ` + canonicalColumns + `
		FROM canonical_player_weeks
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY ` + orderCol + ` DESC, display_name
	`

	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying canonical rows: %w", err)
	}
	defer rows.Close()

	return r.scanCanonical(rows)
}

// ListRange returns the canonical rows inside an inclusive week window,
// optionally narrowed to one team. Rows come back week ascending; trend
// grouping happens in memory.
func (r *CanonicalRepository) ListRange(ctx context.Context, season, startWeek, endWeek int, team string) ([]*store.CanonicalPlayerWeek, error) {
	conditions := []string{"season = $1", "week >= $2", "week <= $3"}
	args := []interface{}{season, startWeek, endWeek}

	if team != "" {
		args = append(args, team)
		conditions = append(conditions, fmt.Sprintf("team = $%d", len(args)))
	}

	query := `
		SELECT ` + canonicalColumns + `
		FROM canonical_player_weeks
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY week, display_name
	`

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying canonical range: %w", err)
	}
	defer rows.Close()

	return r.scanCanonical(rows)
}

// TopWeek returns the highest-scoring canonical rows for a single week.
func (r *CanonicalRepository) TopWeek(ctx context.Context, season, week int, position string, halfPPR bool, limit int) ([]*store.CanonicalPlayerWeek, error) {
	return r.List(ctx, CanonicalFilter{
		Season:   season,
		Week:     week,
		Position: position,
		HalfPPR:  halfPPR,
		Limit:    limit,
	})
}

// SeasonPerformance aggregates one player's canonical weeks across a season.
// A player traded mid-season appears once per team, matching the identity
// scoping used everywhere else.
type SeasonPerformance struct {
	CanonicalName string  `json:"canonical_name"`
	DisplayName   string  `json:"display_name"`
	Position      string  `json:"position"`
	Team          string  `json:"team"`
	Season        int     `json:"season"`
	GamesPlayed   int     `json:"games_played"`
	TotalPoints   float64 `json:"total_points"`
	AvgPoints     float64 `json:"avg_points"`
}

// TopSeason returns season totals ordered by total points. The position
// filter is applied before grouping so it works on the aggregate branch too.
func (r *CanonicalRepository) TopSeason(ctx context.Context, season int, position string, halfPPR bool, limit int) ([]*SeasonPerformance, error) {
	pointsCol := "fantasy_points_full"
	if halfPPR {
		pointsCol = "fantasy_points_half"
	}

	conditions := []string{"season = $1"}
	args := []interface{}{season}

	if position != "" {
		args = append(args, position)
		conditions = append(conditions, fmt.Sprintf("position = $%d", len(args)))
	}

	args = append(args, limit)
	query := `
		SELECT canonical_name,
			(array_agg(display_name ORDER BY week DESC))[1] AS display_name,
			position, team, season,
			COUNT(*) AS games_played,
			SUM(` + pointsCol + `) AS total_points,
			AVG(` + pointsCol + `) AS avg_points
		FROM canonical_player_weeks
		WHERE ` + strings.Join(conditions, " AND ") + `
		GROUP BY canonical_name, position, team, season
		ORDER BY total_points DESC, display_name
		LIMIT $` + fmt.Sprintf("%d", len(args))

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying season performances: %w", err)
	}
	defer rows.Close()

	var performances []*SeasonPerformance
	for rows.Next() {
		p := &SeasonPerformance{}
		err := rows.Scan(
			&p.CanonicalName, &p.DisplayName, &p.Position, &p.Team, &p.Season,
			&p.GamesPlayed, &p.TotalPoints, &p.AvgPoints,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning season performance: %w", err)
		}
		performances = append(performances, p)
	}

	return performances, rows.Err()
}

// Count returns the total number of canonical rows.
func (r *CanonicalRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM canonical_player_weeks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting canonical rows: %w", err)
	}
	return count, nil
}

// LastBuiltAt returns when the newest canonical row was written, or a zero
// time when the table is empty.
func (r *CanonicalRepository) LastBuiltAt(ctx context.Context) (time.Time, error) {
	var built sql.NullTime
	if err := r.db.DB().QueryRowContext(ctx, `SELECT MAX(created_at) FROM canonical_player_weeks`).Scan(&built); err != nil {
		return time.Time{}, fmt.Errorf("querying last build time: %w", err)
	}
	if !built.Valid {
		return time.Time{}, nil
	}
	return built.Time, nil
}

func (r *CanonicalRepository) scanCanonical(rows *sql.Rows) ([]*store.CanonicalPlayerWeek, error) {
	var records []*store.CanonicalPlayerWeek
	for rows.Next() {
		c := &store.CanonicalPlayerWeek{}
		err := rows.Scan(
			&c.ID, &c.CanonicalName, &c.DisplayName, &c.Position, &c.Team, &c.Season, &c.Week,
			&c.Opponent, &c.PassingYards, &c.PassingTDs, &c.Interceptions,
			&c.RushingYards, &c.RushingTDs, &c.Receptions, &c.ReceivingYards, &c.ReceivingTDs,
			&c.Targets, &c.FumblesLost, &c.SnapCount, &c.Salary,
			&c.FantasyPointsFull, &c.FantasyPointsHalf, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning canonical row: %w", err)
		}
		records = append(records, c)
	}

	return records, rows.Err()
}
