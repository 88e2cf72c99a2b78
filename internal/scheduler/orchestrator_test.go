package scheduler

import (
	"testing"
	"time"

	"github.com/fortuna/gridiron/internal/service"
)

func TestNewOrchestrator_RequiresRefreshService(t *testing.T) {
	if _, err := NewOrchestrator(nil, nil); err == nil {
		t.Error("NewOrchestrator(nil, nil) error = nil, want error")
	}
}

func TestNewOrchestrator_NilConfigUsesDefaults(t *testing.T) {
	o, err := NewOrchestrator(&service.RefreshService{}, nil)
	if err != nil {
		t.Fatalf("NewOrchestrator error: %v", err)
	}
	if o.config.RefreshInterval != 6*time.Hour {
		t.Errorf("RefreshInterval = %v, want 6h", o.config.RefreshInterval)
	}
	if !o.config.EnableScheduledRefresh || !o.config.InSeasonOnly {
		t.Errorf("config = %+v, want scheduled refresh and in-season gating enabled", o.config)
	}
	if o.config.MaxRetries != 3 || o.config.RetryDelay != 5*time.Second {
		t.Errorf("retry config = %d/%v, want 3/5s", o.config.MaxRetries, o.config.RetryDelay)
	}
}

func TestSeason_ConfigOverridesClock(t *testing.T) {
	o, err := NewOrchestrator(&service.RefreshService{}, &Config{CurrentSeason: 2019})
	if err != nil {
		t.Fatalf("NewOrchestrator error: %v", err)
	}
	if got := o.season(); got != 2019 {
		t.Errorf("season() = %d, want the configured 2019", got)
	}
}

func TestSeason_ZeroDerivesFromClock(t *testing.T) {
	o, err := NewOrchestrator(&service.RefreshService{}, &Config{})
	if err != nil {
		t.Fatalf("NewOrchestrator error: %v", err)
	}
	if got := o.season(); got < 2024 {
		t.Errorf("season() = %d, want a clock-derived season", got)
	}
}

func TestIsInSeason(t *testing.T) {
	cases := []struct {
		month time.Month
		want  bool
	}{
		{time.January, true},
		{time.February, true},
		{time.March, false},
		{time.June, false},
		{time.August, false},
		{time.September, true},
		{time.December, true},
	}

	for _, tc := range cases {
		at := time.Date(2025, tc.month, 15, 12, 0, 0, 0, time.UTC)
		if got := isInSeason(at); got != tc.want {
			t.Errorf("isInSeason(%s) = %t, want %t", tc.month, got, tc.want)
		}
	}
}

func TestGetStatus_ReportsConfig(t *testing.T) {
	o, err := NewOrchestrator(&service.RefreshService{}, &Config{
		RefreshInterval:        time.Hour,
		CurrentSeason:          2024,
		EnableScheduledRefresh: true,
		InSeasonOnly:           false,
	})
	if err != nil {
		t.Fatalf("NewOrchestrator error: %v", err)
	}

	status := o.GetStatus()
	if status["scheduled_refresh_enabled"] != true {
		t.Errorf("scheduled_refresh_enabled = %v, want true", status["scheduled_refresh_enabled"])
	}
	if status["refresh_interval"] != "1h0m0s" {
		t.Errorf("refresh_interval = %v, want 1h0m0s", status["refresh_interval"])
	}
	if status["current_season"] != 2024 {
		t.Errorf("current_season = %v, want 2024", status["current_season"])
	}
}
