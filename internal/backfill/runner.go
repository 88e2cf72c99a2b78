package backfill

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fortuna/gridiron/internal/ingest/draftkings"
	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store"
)

// Runner executes backfill specs through the refresh pipeline.
type Runner struct {
	db        *store.Database
	refresh   *service.RefreshService
	salaryDir string
}

// NewRunner constructs a runner. salaryDir is where exported DraftKings
// CSVs live, named DKSalaries_<season>_week<week>.csv.
func NewRunner(db *store.Database, refresh *service.RefreshService, salaryDir string) *Runner {
	return &Runner{
		db:        db,
		refresh:   refresh,
		salaryDir: salaryDir,
	}
}

// Run executes the job spec, reporting progress via the Reporter if provided.
func (r *Runner) Run(ctx context.Context, spec JobSpec, reporter Reporter) error {
	if reporter != nil {
		reporter.OnJobStart(spec)
	}

	switch spec.Type {
	case JobTypeSeason:
		if err := r.runSeasons(ctx, spec, reporter); err != nil {
			return err
		}
	case JobTypeSalary:
		if err := r.runSalaries(ctx, spec, reporter); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported job type %s", spec.Type)
	}

	if reporter != nil {
		reporter.OnJobComplete()
	}

	return nil
}

func (r *Runner) runSeasons(ctx context.Context, spec JobSpec, reporter Reporter) error {
	total := len(spec.Seasons)
	for idx, season := range spec.Seasons {
		if err := ctx.Err(); err != nil {
			return err
		}

		if reporter != nil {
			reporter.OnSeasonStart(season, idx, total)
		}

		result, err := r.refresh.Refresh(ctx, []int{season})
		if err != nil {
			if reporter != nil {
				reporter.OnJobError(err)
			}
			return err
		}

		if reporter != nil {
			for _, seasonResult := range result.Seasons {
				reporter.OnRecordsLoaded(seasonResult.CanonicalRows)
			}
			reporter.OnProgress(fmt.Sprintf("✓ Season %d complete", season), idx+1, total)
		}
	}

	return nil
}

func (r *Runner) runSalaries(ctx context.Context, spec JobSpec, reporter Reporter) error {
	ingester := draftkings.NewFileIngester(r.db)

	total := len(spec.Seasons) * len(spec.Weeks)
	step := 0
	for _, season := range spec.Seasons {
		for _, week := range spec.Weeks {
			if err := ctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(r.salaryDir, fmt.Sprintf("DKSalaries_%d_week%d.csv", season, week))
			if reporter != nil {
				reporter.OnProgress(fmt.Sprintf("Importing %s (%d/%d)", filepath.Base(path), step+1, total), step, total)
			}

			imported, err := ingester.ImportSalaryFile(ctx, path, season, week)
			if err != nil {
				if reporter != nil {
					reporter.OnJobError(err)
				}
				return err
			}

			step++
			if reporter != nil {
				reporter.OnRecordsLoaded(imported)
				reporter.OnProgress(fmt.Sprintf("✓ Season %d week %d imported", season, week), step, total)
			}
		}

		// Salary rows only reach canonical player-weeks through a rebuild.
		if _, err := r.refresh.Rebuild(ctx, []int{season}); err != nil {
			if reporter != nil {
				reporter.OnJobError(err)
			}
			return err
		}
	}

	return nil
}
