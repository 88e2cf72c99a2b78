package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/gridiron/internal/store"
)

// SnapsRepository handles raw snap-count feed rows. Snap rows are secondary
// feed data: they never create canonical rows on their own, they only enrich
// the stat spine during reconciliation.
type SnapsRepository struct {
	db *store.Database
}

// NewSnapsRepository creates a new snaps repository
func NewSnapsRepository(db *store.Database) *SnapsRepository {
	return &SnapsRepository{db: db}
}

// ReplaceSeason replaces every snap row for a season.
func (r *SnapsRepository) ReplaceSeason(ctx context.Context, season int, snaps []*store.SnapCount) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snaps replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snap_counts WHERE season = $1`, season); err != nil {
		return fmt.Errorf("clearing snap rows: %w", err)
	}

	insert := `
		INSERT INTO snap_counts (id, source_player_id, player_name, team, season, week, offense_snaps)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, s := range snaps {
		_, err := tx.ExecContext(ctx, insert,
			s.ID, s.SourcePlayerID, s.PlayerName, s.Team, s.Season, s.Week, s.OffenseSnaps,
		)
		if err != nil {
			return fmt.Errorf("inserting snap row %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snaps replace: %w", err)
	}

	return nil
}

// ListByWeek returns all snap rows for a season+week.
func (r *SnapsRepository) ListByWeek(ctx context.Context, season, week int) ([]*store.SnapCount, error) {
	query := `
		SELECT id, source_player_id, player_name, team, season, week, offense_snaps, created_at
		FROM snap_counts
		WHERE season = $1 AND week = $2
		ORDER BY team, player_name
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, week)
	if err != nil {
		return nil, fmt.Errorf("querying snap counts: %w", err)
	}
	defer rows.Close()

	return r.scanSnaps(rows)
}

// ListBySeason returns all snap rows for a season, week ascending.
func (r *SnapsRepository) ListBySeason(ctx context.Context, season int) ([]*store.SnapCount, error) {
	query := `
		SELECT id, source_player_id, player_name, team, season, week, offense_snaps, created_at
		FROM snap_counts
		WHERE season = $1
		ORDER BY week, team, player_name
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying season snap counts: %w", err)
	}
	defer rows.Close()

	return r.scanSnaps(rows)
}

// Count returns the total number of snap rows.
func (r *SnapsRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM snap_counts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting snap counts: %w", err)
	}
	return count, nil
}

func (r *SnapsRepository) scanSnaps(rows *sql.Rows) ([]*store.SnapCount, error) {
	var snaps []*store.SnapCount
	for rows.Next() {
		s := &store.SnapCount{}
		err := rows.Scan(
			&s.ID, &s.SourcePlayerID, &s.PlayerName, &s.Team, &s.Season, &s.Week,
			&s.OffenseSnaps, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning snap row: %w", err)
		}
		snaps = append(snaps, s)
	}

	return snaps, rows.Err()
}
