package backfill

import (
	"testing"

	"github.com/lib/pq"
)

func TestRequest_DeriveType(t *testing.T) {
	cases := []struct {
		in      string
		want    JobType
		wantErr bool
	}{
		{"", JobTypeSeason, false},
		{"season_backfill", JobTypeSeason, false},
		{"salary_backfill", JobTypeSalary, false},
		{"roster_backfill", "", true},
	}

	for _, tc := range cases {
		got, err := Request{JobType: tc.in}.DeriveType()
		if tc.wantErr {
			if err == nil {
				t.Errorf("DeriveType(%q) error = nil, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("DeriveType(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("DeriveType(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestJob_Spec(t *testing.T) {
	job := &Job{
		JobType: JobTypeSalary,
		Seasons: pq.Int64Array{2023, 2024},
		Weeks:   pq.Int64Array{1, 2, 3},
	}

	spec := job.Spec()
	if spec.Type != JobTypeSalary {
		t.Errorf("Type = %s, want %s", spec.Type, JobTypeSalary)
	}
	if len(spec.Seasons) != 2 || spec.Seasons[0] != 2023 || spec.Seasons[1] != 2024 {
		t.Errorf("Seasons = %v, want [2023 2024]", spec.Seasons)
	}
	if len(spec.Weeks) != 3 || spec.Weeks[2] != 3 {
		t.Errorf("Weeks = %v, want [1 2 3]", spec.Weeks)
	}
}

func TestJob_Copy(t *testing.T) {
	var nilJob *Job
	if nilJob.Copy() != nil {
		t.Error("Copy of nil job is not nil")
	}

	job := &Job{JobID: "abc", Status: JobStatusQueued}
	cpy := job.Copy()
	cpy.Status = JobStatusRunning
	if job.Status != JobStatusQueued {
		t.Errorf("mutating the copy changed the original: %s", job.Status)
	}
}

func TestProgressUnits(t *testing.T) {
	cases := []struct {
		name string
		spec JobSpec
		want int
	}{
		{"season job counts seasons", JobSpec{Type: JobTypeSeason, Seasons: []int{2022, 2023, 2024}}, 3},
		{"salary job counts season-weeks", JobSpec{Type: JobTypeSalary, Seasons: []int{2024}, Weeks: []int{1, 2, 3, 4}}, 4},
		{"unknown type has no units", JobSpec{Type: "mystery"}, 0},
	}

	for _, tc := range cases {
		if got := progressUnits(tc.spec); got != tc.want {
			t.Errorf("%s: progressUnits = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestValueOr(t *testing.T) {
	if got := valueOr(5, 10); got != 5 {
		t.Errorf("valueOr(5, 10) = %d, want 5", got)
	}
	if got := valueOr(0, 10); got != 10 {
		t.Errorf("valueOr(0, 10) = %d, want 10", got)
	}
}
