package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
)

// SummaryService reports coverage across the raw feeds and the reconciled
// table, the first thing to check when a week looks thin.
type SummaryService struct {
	statsRepo     *repository.StatsRepository
	snapsRepo     *repository.SnapsRepository
	salariesRepo  *repository.SalariesRepository
	mappingsRepo  *repository.MappingsRepository
	canonicalRepo *repository.CanonicalRepository
}

// NewSummaryService creates a new summary service
func NewSummaryService(db *store.Database) *SummaryService {
	return &SummaryService{
		statsRepo:     repository.NewStatsRepository(db),
		snapsRepo:     repository.NewSnapsRepository(db),
		salariesRepo:  repository.NewSalariesRepository(db),
		mappingsRepo:  repository.NewMappingsRepository(db),
		canonicalRepo: repository.NewCanonicalRepository(db),
	}
}

// Overview returns row counts for every table plus per-season week coverage
// of the stat spine.
func (s *SummaryService) Overview(ctx context.Context) (*Overview, error) {
	overview := &Overview{}

	var err error
	if overview.WeeklyStats, err = s.statsRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("counting weekly stats: %w", err)
	}
	if overview.SnapCounts, err = s.snapsRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("counting snap counts: %w", err)
	}
	if overview.SalaryEntries, err = s.salariesRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("counting salary entries: %w", err)
	}
	if overview.NameMappings, err = s.mappingsRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("counting name mappings: %w", err)
	}
	if overview.CanonicalRows, err = s.canonicalRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("counting canonical rows: %w", err)
	}

	seasons, err := s.statsRepo.Seasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing seasons: %w", err)
	}

	overview.Seasons = make([]*SeasonCoverage, 0, len(seasons))
	for _, season := range seasons {
		weeks, err := s.statsRepo.Weeks(ctx, season)
		if err != nil {
			return nil, fmt.Errorf("listing weeks for season %d: %w", season, err)
		}
		overview.Seasons = append(overview.Seasons, &SeasonCoverage{
			Season: season,
			Weeks:  weeks,
		})
	}

	builtAt, err := s.canonicalRepo.LastBuiltAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching last reconcile time: %w", err)
	}
	if !builtAt.IsZero() {
		overview.LastReconciled = &builtAt
	}

	return overview, nil
}

// Overview contains table counts and stat-spine coverage
type Overview struct {
	WeeklyStats    int               `json:"weekly_stats"`
	SnapCounts     int               `json:"snap_counts"`
	SalaryEntries  int               `json:"salary_entries"`
	NameMappings   int               `json:"name_mappings"`
	CanonicalRows  int               `json:"canonical_rows"`
	Seasons        []*SeasonCoverage `json:"seasons"`
	LastReconciled *time.Time        `json:"last_reconciled,omitempty"`
}

// SeasonCoverage lists the weeks the stat spine holds for one season
type SeasonCoverage struct {
	Season int   `json:"season"`
	Weeks  []int `json:"weeks"`
}
