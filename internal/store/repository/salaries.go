package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/gridiron/internal/store"
)

// SalariesRepository handles DraftKings salary rows. Salary sheets arrive one
// slate at a time, so rows are upserted on (player_name, team, season, week)
// rather than replaced wholesale: re-importing a sheet corrects prices in
// place without touching other weeks.
type SalariesRepository struct {
	db *store.Database
}

// NewSalariesRepository creates a new salaries repository
func NewSalariesRepository(db *store.Database) *SalariesRepository {
	return &SalariesRepository{db: db}
}

// Upsert inserts or updates one salary row. On conflict the existing row id
// survives and e.ID is rewritten to it.
func (r *SalariesRepository) Upsert(ctx context.Context, e *store.SalaryEntry) error {
	query := `
		INSERT INTO dk_salaries (id, player_name, team, position, season, week, salary, game_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (player_name, team, season, week) DO UPDATE SET
			position = EXCLUDED.position,
			salary = EXCLUDED.salary,
			game_info = EXCLUDED.game_info
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		e.ID, e.PlayerName, e.Team, e.Position, e.Season, e.Week, e.Salary, e.GameInfo,
	).Scan(&e.ID)

	if err != nil {
		return fmt.Errorf("upserting salary for %s: %w", e.PlayerName, err)
	}

	return nil
}

// UpsertAll upserts a batch of salary rows, typically one imported sheet.
func (r *SalariesRepository) UpsertAll(ctx context.Context, entries []*store.SalaryEntry) error {
	for _, e := range entries {
		if err := r.Upsert(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// ListByWeek returns the salary rows for a season+week, priciest first.
func (r *SalariesRepository) ListByWeek(ctx context.Context, season, week int) ([]*store.SalaryEntry, error) {
	query := `
		SELECT id, player_name, team, position, season, week, salary, game_info, created_at
		FROM dk_salaries
		WHERE season = $1 AND week = $2
		ORDER BY salary DESC, player_name
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, week)
	if err != nil {
		return nil, fmt.Errorf("querying salaries: %w", err)
	}
	defer rows.Close()

	return r.scanSalaries(rows)
}

// ListBySeason returns all salary rows for a season, week ascending.
func (r *SalariesRepository) ListBySeason(ctx context.Context, season int) ([]*store.SalaryEntry, error) {
	query := `
		SELECT id, player_name, team, position, season, week, salary, game_info, created_at
		FROM dk_salaries
		WHERE season = $1
		ORDER BY week, salary DESC, player_name
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying season salaries: %w", err)
	}
	defer rows.Close()

	return r.scanSalaries(rows)
}

// ListByPosition returns the salary rows for a season+week at one position,
// priciest first.
func (r *SalariesRepository) ListByPosition(ctx context.Context, season, week int, position string) ([]*store.SalaryEntry, error) {
	query := `
		SELECT id, player_name, team, position, season, week, salary, game_info, created_at
		FROM dk_salaries
		WHERE season = $1 AND week = $2 AND position = $3
		ORDER BY salary DESC, player_name
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, week, position)
	if err != nil {
		return nil, fmt.Errorf("querying salaries by position: %w", err)
	}
	defer rows.Close()

	return r.scanSalaries(rows)
}

// Count returns the total number of salary rows.
func (r *SalariesRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM dk_salaries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting salaries: %w", err)
	}
	return count, nil
}

func (r *SalariesRepository) scanSalaries(rows *sql.Rows) ([]*store.SalaryEntry, error) {
	var entries []*store.SalaryEntry
	for rows.Next() {
		e := &store.SalaryEntry{}
		err := rows.Scan(
			&e.ID, &e.PlayerName, &e.Team, &e.Position, &e.Season, &e.Week,
			&e.Salary, &e.GameInfo, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning salary row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
