package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/gridiron/internal/store"
)

// StatsRepository handles raw weekly stat feed rows. The stats table is the
// reconciliation spine, so writes are wholesale replacements: a refresh
// deletes the scope it is loading and inserts the fresh feed rows in one
// transaction.
type StatsRepository struct {
	db *store.Database
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *store.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

const weeklyStatColumns = `id, source_player_id, player_name, position, team, season, week,
		opponent, passing_yards, passing_tds, interceptions,
		rushing_yards, rushing_tds, receptions, receiving_yards, receiving_tds,
		targets, fumbles_lost, created_at`

// ReplaceSeason replaces every stat row for a season.
func (r *StatsRepository) ReplaceSeason(ctx context.Context, season int, stats []*store.WeeklyStat) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning stats replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM weekly_stats WHERE season = $1`, season); err != nil {
		return fmt.Errorf("clearing stat rows: %w", err)
	}

	insert := `
		INSERT INTO weekly_stats (id, source_player_id, player_name, position, team, season, week,
			opponent, passing_yards, passing_tds, interceptions,
			rushing_yards, rushing_tds, receptions, receiving_yards, receiving_tds,
			targets, fumbles_lost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	for _, s := range stats {
		_, err := tx.ExecContext(ctx, insert,
			s.ID, s.SourcePlayerID, s.PlayerName, s.Position, s.Team, s.Season, s.Week,
			s.Opponent, s.PassingYards, s.PassingTDs, s.Interceptions,
			s.RushingYards, s.RushingTDs, s.Receptions, s.ReceivingYards, s.ReceivingTDs,
			s.Targets, s.FumblesLost,
		)
		if err != nil {
			return fmt.Errorf("inserting stat row %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing stats replace: %w", err)
	}

	return nil
}

// ListBySeason returns all stat rows for a season, week ascending.
func (r *StatsRepository) ListBySeason(ctx context.Context, season int) ([]*store.WeeklyStat, error) {
	query := `
		SELECT ` + weeklyStatColumns + `
		FROM weekly_stats
		WHERE season = $1
		ORDER BY week, team, player_name
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying season stats: %w", err)
	}
	defer rows.Close()

	return r.scanStats(rows)
}

// Seasons returns the distinct seasons present, ascending.
func (r *StatsRepository) Seasons(ctx context.Context) ([]int, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT DISTINCT season FROM weekly_stats ORDER BY season`)
	if err != nil {
		return nil, fmt.Errorf("querying seasons: %w", err)
	}
	defer rows.Close()

	var seasons []int
	for rows.Next() {
		var season int
		if err := rows.Scan(&season); err != nil {
			return nil, fmt.Errorf("scanning season: %w", err)
		}
		seasons = append(seasons, season)
	}

	return seasons, rows.Err()
}

// Weeks returns the distinct weeks present for a season, ascending.
func (r *StatsRepository) Weeks(ctx context.Context, season int) ([]int, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT DISTINCT week FROM weekly_stats WHERE season = $1 ORDER BY week`, season)
	if err != nil {
		return nil, fmt.Errorf("querying weeks: %w", err)
	}
	defer rows.Close()

	var weeks []int
	for rows.Next() {
		var week int
		if err := rows.Scan(&week); err != nil {
			return nil, fmt.Errorf("scanning week: %w", err)
		}
		weeks = append(weeks, week)
	}

	return weeks, rows.Err()
}

// Count returns the total number of stat rows.
func (r *StatsRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM weekly_stats`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting weekly stats: %w", err)
	}
	return count, nil
}

// scanStats scans multiple stat rows
func (r *StatsRepository) scanStats(rows *sql.Rows) ([]*store.WeeklyStat, error) {
	var stats []*store.WeeklyStat
	for rows.Next() {
		s := &store.WeeklyStat{}
		err := rows.Scan(
			&s.ID, &s.SourcePlayerID, &s.PlayerName, &s.Position, &s.Team, &s.Season, &s.Week,
			&s.Opponent, &s.PassingYards, &s.PassingTDs, &s.Interceptions,
			&s.RushingYards, &s.RushingTDs, &s.Receptions, &s.ReceivingYards, &s.ReceivingTDs,
			&s.Targets, &s.FumblesLost, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning stat row: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}
