package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
)

// ErrMappingNotFound indicates a removal targeting a raw variant + team with
// no recorded mapping.
var ErrMappingNotFound = errors.New("mapping not found")

// MappingsService manages the durable name-mapping cache. Manual entries
// recorded here take effect on the next reconcile pass; they never rewrite
// canonical rows in place.
type MappingsService struct {
	mappingsRepo *repository.MappingsRepository
	publisher    *publisher.RedisStreamPublisher
}

// NewMappingsService creates a new mappings service. A nil publisher
// disables mapping events.
func NewMappingsService(db *store.Database, pub *publisher.RedisStreamPublisher) *MappingsService {
	return &MappingsService{
		mappingsRepo: repository.NewMappingsRepository(db),
		publisher:    pub,
	}
}

// List returns the whole mapping cache, or a single team's slice of it.
func (s *MappingsService) List(ctx context.Context, team string) ([]*store.NameMapping, error) {
	team = strings.ToUpper(strings.TrimSpace(team))

	var (
		mappings []*store.NameMapping
		err      error
	)
	if team == "" {
		mappings, err = s.mappingsRepo.List(ctx)
	} else {
		mappings, err = s.mappingsRepo.ListByTeam(ctx, team)
	}
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}

	return mappings, nil
}

// Record upserts one manual mapping. The raw name keeps its original
// spelling because lookups key on the variant exactly as feeds spell it;
// the canonical side is normalized so it lands on the spine.
func (s *MappingsService) Record(ctx context.Context, rawName, team, canonicalName, position string) (*store.NameMapping, error) {
	rawName = strings.TrimSpace(rawName)
	if rawName == "" {
		return nil, fmt.Errorf("raw name is required")
	}

	team = strings.ToUpper(strings.TrimSpace(team))
	if team == "" {
		return nil, fmt.Errorf("team is required")
	}

	normalized, err := reconciliation.Normalize(canonicalName)
	if err != nil {
		return nil, fmt.Errorf("canonical name %q: %w", canonicalName, err)
	}

	position = strings.ToUpper(strings.TrimSpace(position))
	if !store.IsFantasyPosition(position) {
		return nil, fmt.Errorf("position %q is not one of %v", position, store.FantasyPositions)
	}

	mapping := &store.NameMapping{
		RawName:       rawName,
		Team:          team,
		CanonicalName: normalized,
		Position:      position,
		Source:        store.MappingSourceManual,
	}

	if err := s.mappingsRepo.Upsert(ctx, mapping); err != nil {
		return nil, fmt.Errorf("recording mapping: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishMappingRecorded(ctx, mapping); err != nil {
			log.Printf("Warning: failed to publish mapping event: %v", err)
		}
	}

	return mapping, nil
}

// Remove deletes one mapping by its raw name and team scope.
func (s *MappingsService) Remove(ctx context.Context, rawName, team string) error {
	rawName = strings.TrimSpace(rawName)
	team = strings.ToUpper(strings.TrimSpace(team))

	existing, err := s.mappingsRepo.Get(ctx, rawName, team)
	if err != nil {
		return fmt.Errorf("looking up mapping: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("%w: %q (%s)", ErrMappingNotFound, rawName, team)
	}

	if err := s.mappingsRepo.Delete(ctx, rawName, team); err != nil {
		return fmt.Errorf("removing mapping: %w", err)
	}

	return nil
}
