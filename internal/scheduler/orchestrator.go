package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store"
)

// Orchestrator manages scheduled runs of the refresh pipeline
type Orchestrator struct {
	refresh *service.RefreshService
	config  *Config
	cancel  context.CancelFunc

	// Task coordination
	refreshCtx    context.Context
	refreshCancel context.CancelFunc
}

// Config holds scheduler configuration
type Config struct {
	RefreshInterval        time.Duration // Default: 6h
	CurrentSeason          int           // 0 derives the season from the clock
	EnableScheduledRefresh bool          // Default: true
	InSeasonOnly           bool          // Default: true
	MaxRetries             int           // Default: 3
	RetryDelay             time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval:        6 * time.Hour,
		CurrentSeason:          0,
		EnableScheduledRefresh: true,
		InSeasonOnly:           true,
		MaxRetries:             3,
		RetryDelay:             5 * time.Second,
	}
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(refresh *service.RefreshService, config *Config) (*Orchestrator, error) {
	if refresh == nil {
		return nil, fmt.Errorf("scheduler requires a refresh service")
	}

	if config == nil {
		config = DefaultConfig()
	}

	return &Orchestrator{
		refresh: refresh,
		config:  config,
	}, nil
}

// Start begins all scheduled tasks
func (o *Orchestrator) Start(ctx context.Context) {
	log.Println("╔════════════════════════════════════════╗")
	log.Println("║   Gridiron Scheduler Orchestrator     ║")
	log.Println("╚════════════════════════════════════════╝")
	log.Printf("Scheduled refresh: %v (interval: %v)", o.config.EnableScheduledRefresh, o.config.RefreshInterval)
	log.Printf("In-season only: %v", o.config.InSeasonOnly)
	log.Printf("Season: %d", o.season())
	log.Println()

	// Create cancellable context for the orchestrator
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	// Start the refresh loop
	if o.config.EnableScheduledRefresh {
		o.refreshCtx, o.refreshCancel = context.WithCancel(ctx)
		go o.runScheduledRefresh(o.refreshCtx)
	}

	// Wait for context cancellation
	<-ctx.Done()
	log.Println("Scheduler orchestrator stopping...")
}

// runScheduledRefresh re-runs the pipeline on a fixed interval
func (o *Orchestrator) runScheduledRefresh(ctx context.Context) {
	log.Printf("→ Scheduled refresh started (interval: %v)", o.config.RefreshInterval)

	ticker := time.NewTicker(o.config.RefreshInterval)
	defer ticker.Stop()

	consecutiveErrors := 0
	maxConsecutiveErrors := 5

	// Run immediately on start
	o.refreshWithRetry(ctx, &consecutiveErrors, maxConsecutiveErrors)

	for {
		select {
		case <-ctx.Done():
			log.Println("→ Scheduled refresh stopped")
			return
		case <-ticker.C:
			o.refreshWithRetry(ctx, &consecutiveErrors, maxConsecutiveErrors)
		}
	}
}

// refreshWithRetry runs one refresh pass with retry logic
func (o *Orchestrator) refreshWithRetry(ctx context.Context, consecutiveErrors *int, maxConsecutiveErrors int) {
	if o.config.InSeasonOnly && !isInSeason(time.Now()) {
		log.Println("  ⊘ Offseason, skipping scheduled refresh")
		return
	}

	season := o.season()

	var err error

	// Retry loop
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		_, err = o.refresh.Refresh(ctx, []int{season})

		if err == nil {
			*consecutiveErrors = 0 // Reset on success
			break
		}

		// Log error and retry
		log.Printf("  ⚠️  Refresh attempt %d/%d failed: %v", attempt, o.config.MaxRetries, err)

		if attempt < o.config.MaxRetries {
			log.Printf("  Retrying in %v...", o.config.RetryDelay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.config.RetryDelay):
				// Continue to next attempt
			}
		}
	}

	// All retries exhausted
	if err != nil {
		*consecutiveErrors++
		log.Printf("  ❌ All %d retry attempts failed. Consecutive errors: %d/%d",
			o.config.MaxRetries, *consecutiveErrors, maxConsecutiveErrors)

		// If the feed keeps failing, back off before the next tick fires
		if *consecutiveErrors >= maxConsecutiveErrors {
			log.Printf("  ⚠️  High error rate detected. Backing off...")
			select {
			case <-ctx.Done():
			case <-time.After(20 * time.Second):
			}
		}
	}
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	log.Println("Stopping scheduler orchestrator...")

	// Cancel the refresh loop
	if o.refreshCancel != nil {
		o.refreshCancel()
	}

	// Cancel main orchestrator
	if o.cancel != nil {
		o.cancel()
	}

	log.Println("✓ Scheduler orchestrator stopped")
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"scheduled_refresh_enabled": o.config.EnableScheduledRefresh,
		"refresh_interval":          o.config.RefreshInterval.String(),
		"in_season_only":            o.config.InSeasonOnly,
		"current_season":            o.season(),
	}
}

func (o *Orchestrator) season() int {
	if o.config.CurrentSeason != 0 {
		return o.config.CurrentSeason
	}
	return store.CurrentSeason(time.Now())
}

// isInSeason reports whether t falls inside the NFL calendar: September
// through the January playoffs and February's Super Bowl.
func isInSeason(t time.Time) bool {
	return t.Month() >= time.September || t.Month() <= time.February
}
