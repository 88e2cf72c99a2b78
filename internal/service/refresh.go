package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/ingest/nflverse"
	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
)

// Broadcaster pushes refresh lifecycle events to connected WebSocket clients
type Broadcaster interface {
	BroadcastRefreshUpdate(data []byte)
}

// RefreshService runs the full pipeline for a season: ingest the nflverse
// feeds, reconcile them with whatever salaries are on hand, and rebuild the
// canonical table. Salaries are not fetched here; the DraftKings ingester
// fills that table on its own cadence and a refresh joins what it finds.
type RefreshService struct {
	ingester      *nflverse.Ingester
	statsRepo     *repository.StatsRepository
	snapsRepo     *repository.SnapsRepository
	salariesRepo  *repository.SalariesRepository
	mappingsRepo  *repository.MappingsRepository
	canonicalRepo *repository.CanonicalRepository
	cache         *cache.RedisCache
	publisher     *publisher.RedisStreamPublisher
	broadcaster   Broadcaster
}

// NewRefreshService creates a new refresh service. Cache and publisher may
// be nil; invalidation and events are then skipped.
func NewRefreshService(db *store.Database, redisCache *cache.RedisCache, pub *publisher.RedisStreamPublisher) *RefreshService {
	return &RefreshService{
		ingester:      nflverse.NewIngester(db),
		statsRepo:     repository.NewStatsRepository(db),
		snapsRepo:     repository.NewSnapsRepository(db),
		salariesRepo:  repository.NewSalariesRepository(db),
		mappingsRepo:  repository.NewMappingsRepository(db),
		canonicalRepo: repository.NewCanonicalRepository(db),
		cache:         redisCache,
		publisher:     pub,
	}
}

// SetBroadcaster wires the WebSocket hub in after both sides exist.
func (s *RefreshService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Refresh runs the pipeline for each requested season in order. A season
// that fails stops the run; completed seasons stay committed.
func (s *RefreshService) Refresh(ctx context.Context, seasons []int) (*RefreshResult, error) {
	if len(seasons) == 0 {
		return nil, fmt.Errorf("no seasons requested")
	}

	result := &RefreshResult{
		RunID:     uuid.NewString(),
		Seasons:   make([]*SeasonRefresh, 0, len(seasons)),
		StartedAt: time.Now().UTC(),
	}

	log.Printf("[refresh] Run %s starting for seasons %v", result.RunID, seasons)
	s.broadcast("refresh.started", map[string]interface{}{
		"run_id":  result.RunID,
		"seasons": seasons,
	})

	for _, season := range seasons {
		seasonResult, err := s.refreshSeason(ctx, season)
		if err != nil {
			s.broadcast("refresh.failed", map[string]interface{}{
				"run_id": result.RunID,
				"season": season,
				"error":  err.Error(),
			})
			return nil, fmt.Errorf("refreshing season %d: %w", season, err)
		}
		result.Seasons = append(result.Seasons, seasonResult)
	}

	if s.cache != nil {
		if err := s.cache.InvalidatePrefixes(ctx, cache.PlayersKeyPrefix, cache.TrendsKeyPrefix); err != nil {
			log.Printf("Warning: failed to invalidate caches: %v", err)
		}
	}

	result.CompletedAt = time.Now().UTC()

	if s.publisher != nil {
		if err := s.publisher.PublishRefreshCompleted(ctx, result); err != nil {
			log.Printf("Warning: failed to publish refresh event: %v", err)
		}
	}
	s.broadcast("refresh.completed", result)

	log.Printf("[refresh] ✓ Run %s complete in %v", result.RunID, result.CompletedAt.Sub(result.StartedAt).Round(time.Millisecond))
	return result, nil
}

// Rebuild reconciles the stored feeds for each season without refetching
// them. The fast path after recording a manual mapping: corrections land on
// the next pass, and this is how that pass runs without a download.
func (s *RefreshService) Rebuild(ctx context.Context, seasons []int) (*RefreshResult, error) {
	if len(seasons) == 0 {
		return nil, fmt.Errorf("no seasons requested")
	}

	result := &RefreshResult{
		RunID:     uuid.NewString(),
		Seasons:   make([]*SeasonRefresh, 0, len(seasons)),
		StartedAt: time.Now().UTC(),
	}

	for _, season := range seasons {
		seasonResult := &SeasonRefresh{Season: season}
		if err := s.rebuildSeason(ctx, season, seasonResult); err != nil {
			return nil, fmt.Errorf("rebuilding season %d: %w", season, err)
		}
		result.Seasons = append(result.Seasons, seasonResult)
	}

	if s.cache != nil {
		if err := s.cache.InvalidatePrefixes(ctx, cache.PlayersKeyPrefix, cache.TrendsKeyPrefix); err != nil {
			log.Printf("Warning: failed to invalidate caches: %v", err)
		}
	}

	result.CompletedAt = time.Now().UTC()
	return result, nil
}

// refreshSeason ingests and reconciles one season end to end.
func (s *RefreshService) refreshSeason(ctx context.Context, season int) (*SeasonRefresh, error) {
	seasonResult := &SeasonRefresh{Season: season}

	// The two nflverse downloads are independent; fetch them together.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.ingester.IngestPlayerStats(gctx, season)
		if err != nil {
			return fmt.Errorf("ingesting player stats: %w", err)
		}
		seasonResult.StatRows = n
		return nil
	})
	g.Go(func() error {
		n, err := s.ingester.IngestSnapCounts(gctx, season)
		if err != nil {
			return fmt.Errorf("ingesting snap counts: %w", err)
		}
		seasonResult.SnapRows = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.rebuildSeason(ctx, season, seasonResult); err != nil {
		return nil, err
	}

	log.Printf("[refresh] ✓ Season %d: %s", season, seasonResult.Report.Summary())
	return seasonResult, nil
}

// rebuildSeason reconciles one season from the stored feeds into the
// canonical table, filling the reconciliation fields of seasonResult.
func (s *RefreshService) rebuildSeason(ctx context.Context, season int, seasonResult *SeasonRefresh) error {
	stats, err := s.statsRepo.ListBySeason(ctx, season)
	if err != nil {
		return fmt.Errorf("loading stat spine: %w", err)
	}
	snaps, err := s.snapsRepo.ListBySeason(ctx, season)
	if err != nil {
		return fmt.Errorf("loading snap counts: %w", err)
	}
	salaries, err := s.salariesRepo.ListBySeason(ctx, season)
	if err != nil {
		return fmt.Errorf("loading salaries: %w", err)
	}
	seasonResult.SalaryRows = len(salaries)

	mappings, err := s.mappingsRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading mapping cache: %w", err)
	}

	engine := reconciliation.NewEngine(mappings)
	canonical, report := engine.Reconcile(stats, snaps, salaries)
	seasonResult.CanonicalRows = len(canonical)
	seasonResult.Report = report

	// Persist auto-discovered variants so the next pass resolves them from
	// the cache instead of re-deriving them.
	if len(report.NewMappings) > 0 {
		if err := s.mappingsRepo.UpsertAll(ctx, report.NewMappings); err != nil {
			return fmt.Errorf("persisting discovered mappings: %w", err)
		}
		seasonResult.NewMappings = len(report.NewMappings)
	}

	// Rebuild exactly the weeks the spine now covers. A week whose rows all
	// went malformed still gets cleared rather than left stale.
	weeks, err := s.statsRepo.Weeks(ctx, season)
	if err != nil {
		return fmt.Errorf("listing spine weeks: %w", err)
	}
	if len(weeks) > 0 {
		if err := s.canonicalRepo.ReplaceWeeks(ctx, season, weeks, canonical); err != nil {
			return fmt.Errorf("rebuilding canonical weeks: %w", err)
		}
	}

	return nil
}

// broadcast pushes one lifecycle event to the hub, when one is wired.
func (s *RefreshService) broadcast(event string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}

	data, err := json.Marshal(map[string]interface{}{
		"event":     event,
		"data":      payload,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("Warning: failed to encode %s event: %v", event, err)
		return
	}

	s.broadcaster.BroadcastRefreshUpdate(data)
}

// RefreshResult summarizes one refresh run across its seasons
type RefreshResult struct {
	RunID       string           `json:"run_id"`
	Seasons     []*SeasonRefresh `json:"seasons"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
}

// SeasonRefresh summarizes one season inside a refresh run
type SeasonRefresh struct {
	Season        int                    `json:"season"`
	StatRows      int                    `json:"stat_rows"`
	SnapRows      int                    `json:"snap_rows"`
	SalaryRows    int                    `json:"salary_rows"`
	CanonicalRows int                    `json:"canonical_rows"`
	NewMappings   int                    `json:"new_mappings"`
	Report        *reconciliation.Report `json:"report"`
}
