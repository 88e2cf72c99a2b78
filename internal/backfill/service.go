package backfill

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store"
)

// Request represents a backfill invocation request.
type Request struct {
	JobType     string
	Seasons     []int
	Weeks       []int
	RequestedBy string
}

// DeriveType resolves the requested job type, defaulting to a season load.
func (r Request) DeriveType() (JobType, error) {
	switch r.JobType {
	case "", string(JobTypeSeason):
		return JobTypeSeason, nil
	case string(JobTypeSalary):
		return JobTypeSalary, nil
	}
	return "", fmt.Errorf("unknown job type %q", r.JobType)
}

// Service coordinates job persistence, execution, and status reporting.
type Service struct {
	repo   *Repository
	runner *Runner

	historyLimit int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *log.Logger
}

// NewService constructs a Service. Call Start to launch the worker.
func NewService(db *store.Database, refreshSvc *service.RefreshService, salaryDir string, logger *log.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	if refreshSvc == nil {
		refreshSvc = service.NewRefreshService(db, nil, nil)
	}

	if logger == nil {
		logger = log.New(log.Writer(), "[backfill] ", log.LstdFlags)
	}

	return &Service{
		repo:         NewRepository(db),
		runner:       NewRunner(db, refreshSvc, salaryDir),
		historyLimit: 10,
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger,
	}
}

// Start launches the background worker loop.
func (s *Service) Start() {
	if err := s.repo.ResetStuckJobs(s.ctx); err != nil {
		s.logger.Printf("failed to reset jobs: %v", err)
	}

	s.wg.Add(1)
	go s.worker()
}

// Shutdown stops workers and waits for completion.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Enqueue creates a new job from the provided request.
func (s *Service) Enqueue(ctx context.Context, req Request) (*Job, error) {
	jobType, err := req.DeriveType()
	if err != nil {
		return nil, err
	}

	if len(req.Seasons) == 0 {
		return nil, fmt.Errorf("backfill requires at least one season")
	}

	maxSeason := store.CurrentSeason(time.Now()) + 1
	for _, season := range req.Seasons {
		if season < store.FirstSeason || season > maxSeason {
			return nil, fmt.Errorf("season %d out of range (%d-%d)", season, store.FirstSeason, maxSeason)
		}
	}
	for _, week := range req.Weeks {
		if week < 1 || week > store.MaxWeek {
			return nil, fmt.Errorf("week %d out of range (1-%d)", week, store.MaxWeek)
		}
	}
	if jobType == JobTypeSalary && len(req.Weeks) == 0 {
		return nil, fmt.Errorf("salary backfill requires at least one week")
	}

	job := &Job{
		JobType:       jobType,
		Status:        JobStatusQueued,
		StatusMessage: sql.NullString{String: "Queued", Valid: true},
		RequestedBy:   sql.NullString{String: req.RequestedBy, Valid: req.RequestedBy != ""},
	}
	for _, season := range req.Seasons {
		job.Seasons = append(job.Seasons, int64(season))
	}
	for _, week := range req.Weeks {
		job.Weeks = append(job.Weeks, int64(week))
	}
	job.ProgressTotal = progressUnits(job.Spec())

	stored, err := s.repo.CreateJob(ctx, job)
	if err != nil {
		return nil, err
	}

	_ = s.repo.AppendEvent(ctx, stored.JobID, "queued", "Job queued", nil, nil)

	return stored, nil
}

// GetStatus returns the currently running job plus recent history.
func (s *Service) GetStatus(ctx context.Context) (*StatusSummary, error) {
	active, err := s.repo.GetActiveJob(ctx)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListRecentJobs(ctx, s.historyLimit)
	if err != nil {
		return nil, err
	}

	return &StatusSummary{
		ActiveJob: active,
		History:   history,
	}, nil
}

// GetJob fetches one job by ID. Returns nil when no such job exists.
func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return s.repo.GetJob(ctx, jobID)
}

// Cancel cancels a job that is still queued.
func (s *Service) Cancel(ctx context.Context, jobID string) error {
	if err := s.repo.CancelJob(ctx, jobID); err != nil {
		return err
	}
	_ = s.repo.AppendEvent(ctx, jobID, "cancelled", "Cancelled by request", nil, nil)
	return nil
}

func (s *Service) worker() {
	defer s.wg.Done()

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
			job, err := s.repo.MarkNextJobRunning(s.ctx)
			if err != nil {
				s.logger.Printf("claim job error: %v", err)
				time.Sleep(time.Second)
				continue
			}
			if job == nil {
				select {
				case <-s.ctx.Done():
					return
				case <-ticker.C:
					continue
				}
			}

			s.executeJob(job)
		}
	}
}

func (s *Service) executeJob(job *Job) {
	spec := job.Spec()

	reporter := &jobReporter{
		ctx:   s.ctx,
		repo:  s.repo,
		jobID: job.JobID,
		total: progressUnits(spec),
	}

	if job.ProgressTotal == 0 {
		_ = s.repo.UpdateProgress(s.ctx, job.JobID, 0, reporter.total, "Starting job...")
	}

	if err := s.runner.Run(s.ctx, spec, reporter); err != nil {
		_ = s.repo.UpdateStatus(s.ctx, job.JobID, JobStatusFailed, "Job failed", err)
		return
	}

	_ = s.repo.UpdateStatus(s.ctx, job.JobID, JobStatusCompleted, "Job completed", nil)
}

type jobReporter struct {
	ctx   context.Context
	repo  *Repository
	jobID string
	total int
}

func (r *jobReporter) OnJobStart(spec JobSpec) {
	if r.total == 0 {
		r.total = progressUnits(spec)
	}
	_ = r.repo.UpdateProgress(r.ctx, r.jobID, 0, r.total, "Job starting")
}

func (r *jobReporter) OnSeasonStart(season int, index int, total int) {
	msg := fmt.Sprintf("Loading season %d (%d/%d)", season, index+1, total)
	_ = r.repo.UpdateProgress(r.ctx, r.jobID, index, valueOr(total, r.total), msg)
	_ = r.repo.AppendEvent(r.ctx, r.jobID, "season", msg, nil, nil)
}

func (r *jobReporter) OnProgress(message string, current int, total int) {
	_ = r.repo.UpdateProgress(r.ctx, r.jobID, current, valueOr(total, r.total), message)
}

func (r *jobReporter) OnRecordsLoaded(count int) {
	_ = r.repo.AddRecordsLoaded(r.ctx, r.jobID, count)
}

func (r *jobReporter) OnJobComplete() {
	_ = r.repo.UpdateProgress(r.ctx, r.jobID, r.total, r.total, "Job complete")
}

func (r *jobReporter) OnJobError(err error) {
	_ = r.repo.AppendEvent(r.ctx, r.jobID, "error", err.Error(), nil, nil)
}

func progressUnits(spec JobSpec) int {
	switch spec.Type {
	case JobTypeSeason:
		return len(spec.Seasons)
	case JobTypeSalary:
		return len(spec.Seasons) * len(spec.Weeks)
	default:
		return 0
	}
}

func valueOr(val, fallback int) int {
	if val > 0 {
		return val
	}
	return fallback
}
