package backfill

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// JobType enumerates the supported backfill job variants.
type JobType string

const (
	JobTypeSeason JobType = "season_backfill"
	JobTypeSalary JobType = "salary_backfill"
)

// JobStatus represents the lifecycle state for a job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job models the database representation of a backfill job.
type Job struct {
	JobID           string
	JobType         JobType
	Status          JobStatus
	StatusMessage   sql.NullString
	Seasons         pq.Int64Array
	Weeks           pq.Int64Array
	RequestedBy     sql.NullString
	ProgressCurrent int
	ProgressTotal   int
	RecordsLoaded   int
	LastError       sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StartedAt       sql.NullTime
	CompletedAt     sql.NullTime
}

// Copy returns a shallow copy to prevent external mutation.
func (j *Job) Copy() *Job {
	if j == nil {
		return nil
	}
	cpy := *j
	return &cpy
}

// Spec converts the stored row into the runner's working form.
func (j *Job) Spec() JobSpec {
	spec := JobSpec{Type: j.JobType}
	for _, season := range j.Seasons {
		spec.Seasons = append(spec.Seasons, int(season))
	}
	for _, week := range j.Weeks {
		spec.Weeks = append(spec.Weeks, int(week))
	}
	return spec
}

// JobSpec describes the work to be performed by the runner.
type JobSpec struct {
	Type    JobType
	Seasons []int
	Weeks   []int
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnJobStart(spec JobSpec)
	OnSeasonStart(season int, index int, total int)
	OnProgress(message string, current int, total int)
	OnRecordsLoaded(count int)
	OnJobComplete()
	OnJobError(err error)
}

// StatusSummary is returned to API callers.
type StatusSummary struct {
	ActiveJob *Job   `json:"active_job,omitempty"`
	History   []*Job `json:"recent_jobs,omitempty"`
}
