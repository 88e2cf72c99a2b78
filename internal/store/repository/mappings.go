package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/gridiron/internal/store"
)

// MappingsRepository handles the durable name-mapping cache. A mapping binds
// one exact raw variant + team to a canonical identity; re-recording the same
// variant overwrites the prior row, which is how corrections land.
type MappingsRepository struct {
	db *store.Database
}

// NewMappingsRepository creates a new mappings repository
func NewMappingsRepository(db *store.Database) *MappingsRepository {
	return &MappingsRepository{db: db}
}

const mappingColumns = `id, raw_name, team, canonical_name, position, source, created_at, updated_at`

// List returns every mapping, ordered for stable display.
func (r *MappingsRepository) List(ctx context.Context) ([]*store.NameMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM name_mappings
		ORDER BY raw_name, team
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying mappings: %w", err)
	}
	defer rows.Close()

	return r.scanMappings(rows)
}

// ListByTeam returns the mappings recorded for one team.
func (r *MappingsRepository) ListByTeam(ctx context.Context, team string) ([]*store.NameMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM name_mappings
		WHERE team = $1
		ORDER BY raw_name
	`

	rows, err := r.db.DB().QueryContext(ctx, query, team)
	if err != nil {
		return nil, fmt.Errorf("querying mappings by team: %w", err)
	}
	defer rows.Close()

	return r.scanMappings(rows)
}

// Get returns the mapping for an exact raw variant + team, or nil when none
// is recorded.
func (r *MappingsRepository) Get(ctx context.Context, rawName, team string) (*store.NameMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM name_mappings
		WHERE raw_name = $1 AND team = $2
	`

	m := &store.NameMapping{}
	err := r.db.DB().QueryRowContext(ctx, query, rawName, team).Scan(
		&m.ID, &m.RawName, &m.Team, &m.CanonicalName, &m.Position, &m.Source,
		&m.CreatedAt, &m.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying mapping: %w", err)
	}

	return m, nil
}

// Upsert records a mapping, overwriting any prior mapping for the same raw
// variant + team.
func (r *MappingsRepository) Upsert(ctx context.Context, m *store.NameMapping) error {
	query := `
		INSERT INTO name_mappings (raw_name, team, canonical_name, position, source)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (raw_name, team) DO UPDATE SET
			canonical_name = EXCLUDED.canonical_name,
			position = EXCLUDED.position,
			source = EXCLUDED.source,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		m.RawName, m.Team, m.CanonicalName, m.Position, m.Source,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upserting mapping %q: %w", m.RawName, err)
	}

	return nil
}

// UpsertAll records a batch of mappings, typically the automatic variants a
// reconciliation run discovered.
func (r *MappingsRepository) UpsertAll(ctx context.Context, mappings []*store.NameMapping) error {
	for _, m := range mappings {
		if err := r.Upsert(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the mapping for a raw variant + team.
func (r *MappingsRepository) Delete(ctx context.Context, rawName, team string) error {
	if _, err := r.db.DB().ExecContext(ctx, `DELETE FROM name_mappings WHERE raw_name = $1 AND team = $2`, rawName, team); err != nil {
		return fmt.Errorf("deleting mapping %q: %w", rawName, err)
	}
	return nil
}

// Count returns the total number of mappings.
func (r *MappingsRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM name_mappings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting mappings: %w", err)
	}
	return count, nil
}

func (r *MappingsRepository) scanMappings(rows *sql.Rows) ([]*store.NameMapping, error) {
	var mappings []*store.NameMapping
	for rows.Next() {
		m := &store.NameMapping{}
		err := rows.Scan(
			&m.ID, &m.RawName, &m.Team, &m.CanonicalName, &m.Position, &m.Source,
			&m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}
		mappings = append(mappings, m)
	}

	return mappings, rows.Err()
}
