package reconciliation

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fortuna/gridiron/internal/scoring"
	"github.com/fortuna/gridiron/internal/store"
)

// maxReportSamples bounds the example lists carried in a Report so a feed
// full of bad rows cannot balloon the summary.
const maxReportSamples = 10

// FeedCounts tracks how one secondary feed resolved against the stat spine.
type FeedCounts struct {
	Rows       int `json:"rows"`
	Matched    int `json:"matched"`
	Mapped     int `json:"mapped"`
	Unmatched  int `json:"unmatched"`
	Ambiguous  int `json:"ambiguous"`
	Invalid    int `json:"invalid"`
	Duplicates int `json:"duplicates"`
}

// MatchRate returns the fraction of feed rows that attached to the spine,
// counting both automatic and mapping-cache resolutions.
func (f FeedCounts) MatchRate() float64 {
	if f.Rows == 0 {
		return 0
	}
	return float64(f.Matched+f.Mapped) / float64(f.Rows)
}

// Report summarizes one reconciliation pass. Data-quality problems are
// counted and sampled here rather than aborting the batch: one bad row never
// blocks the rest of a weekly load.
type Report struct {
	StatRows  int `json:"stat_rows"`
	Malformed int `json:"malformed"`
	Produced  int `json:"produced"`

	Snaps    FeedCounts `json:"snaps"`
	Salaries FeedCounts `json:"salaries"`

	MalformedSamples []string `json:"malformed_samples,omitempty"`
	AmbiguousSamples []string `json:"ambiguous_samples,omitempty"`

	// Mappings worth persisting: raw variants that matched automatically
	// but differ from the spine's spelling, so future passes short-circuit.
	NewMappings []*store.NameMapping `json:"-"`

	CompletedAt time.Time `json:"completed_at"`
}

// Summary renders the one-line form used in logs and refresh events.
func (r *Report) Summary() string {
	return fmt.Sprintf("reconciled %d/%d stat rows (snaps %d/%d, salaries %d/%d, %d ambiguous, %d malformed)",
		r.Produced, r.StatRows,
		r.Snaps.Matched+r.Snaps.Mapped, r.Snaps.Rows,
		r.Salaries.Matched+r.Salaries.Mapped, r.Salaries.Rows,
		r.Snaps.Ambiguous+r.Salaries.Ambiguous,
		r.Malformed)
}

// Engine performs the stats-anchored three-way join: every valid weekly stat
// row becomes exactly one canonical player-week, with snap counts and
// salaries attached where the matcher resolves them and left null where it
// does not. Null is deliberate: a missing feed row is not a zero.
type Engine struct {
	mappings []*store.NameMapping
}

// NewEngine creates a reconciliation engine over a snapshot of the durable
// mapping cache.
func NewEngine(mappings []*store.NameMapping) *Engine {
	return &Engine{mappings: mappings}
}

// Reconcile joins the three raw feeds into canonical player-weeks. The
// output is deterministic for identical inputs and mapping state: rows come
// out in spine order, and every tie-break is by first encounter. The pass
// always completes; malformed and ambiguous rows are reported, not fatal.
func (e *Engine) Reconcile(stats []*store.WeeklyStat, snaps []*store.SnapCount, salaries []*store.SalaryEntry) ([]*store.CanonicalPlayerWeek, *Report) {
	report := &Report{
		StatRows: len(stats),
		Snaps:    FeedCounts{Rows: len(snaps)},
		Salaries: FeedCounts{Rows: len(salaries)},
	}

	matcher := NewMatcher(stats, e.mappings)
	recordedMappings := make(map[string]bool)

	// Resolve each snap row to an identity before walking the spine, so the
	// spine pass is a plain keyed lookup.
	snapByIdentity := make(map[string]*store.SnapCount)
	for _, snap := range snaps {
		result, ok := e.matchSecondary(matcher, &report.Snaps, "snap", snap.PlayerName, snap.Team, snap.Week, snap.Season, report)
		if !ok {
			continue
		}

		key := identityKey(result.Identity.Name, result.Identity.Team, result.Identity.Position, snap.Week, snap.Season)
		if _, exists := snapByIdentity[key]; exists {
			report.Snaps.Duplicates++
			continue
		}
		snapByIdentity[key] = snap

		e.collectMapping(result, snap.PlayerName, snap.Team, recordedMappings, report)
	}

	salaryByIdentity := make(map[string]*store.SalaryEntry)
	for _, salary := range salaries {
		result, ok := e.matchSecondary(matcher, &report.Salaries, "salary", salary.PlayerName, salary.Team, salary.Week, salary.Season, report)
		if !ok {
			continue
		}

		key := identityKey(result.Identity.Name, result.Identity.Team, result.Identity.Position, salary.Week, salary.Season)
		if _, exists := salaryByIdentity[key]; exists {
			report.Salaries.Duplicates++
			continue
		}
		salaryByIdentity[key] = salary

		e.collectMapping(result, salary.PlayerName, salary.Team, recordedMappings, report)
	}

	// Spine pass: one canonical row per valid stat row, in input order. A
	// second spine row carrying an identity already emitted this week is a
	// feed anomaly; first encounter wins, so the stored unique key holds.
	canonical := make([]*store.CanonicalPlayerWeek, 0, len(stats))
	emitted := make(map[string]bool, len(stats))
	for _, stat := range stats {
		normalized, reason := validateStat(stat)
		if reason != "" {
			report.Malformed++
			if len(report.MalformedSamples) < maxReportSamples {
				report.MalformedSamples = append(report.MalformedSamples,
					fmt.Sprintf("%q (%s w%d %d): %s", stat.PlayerName, stat.Team, stat.Week, stat.Season, reason))
			}
			continue
		}

		team := normalizeTeam(stat.Team)
		key := identityKey(normalized, team, stat.Position, stat.Week, stat.Season)
		if emitted[key] {
			report.Malformed++
			if len(report.MalformedSamples) < maxReportSamples {
				report.MalformedSamples = append(report.MalformedSamples,
					fmt.Sprintf("%q (%s w%d %d): duplicate player-week", stat.PlayerName, stat.Team, stat.Week, stat.Season))
			}
			continue
		}
		emitted[key] = true
		row := &store.CanonicalPlayerWeek{
			CanonicalName:  normalized,
			DisplayName:    strings.TrimSpace(stat.PlayerName),
			Position:       stat.Position,
			Team:           team,
			Season:         stat.Season,
			Week:           stat.Week,
			Opponent:       stat.Opponent,
			PassingYards:   stat.PassingYards,
			PassingTDs:     stat.PassingTDs,
			Interceptions:  stat.Interceptions,
			RushingYards:   stat.RushingYards,
			RushingTDs:     stat.RushingTDs,
			Receptions:     stat.Receptions,
			ReceivingYards: stat.ReceivingYards,
			ReceivingTDs:   stat.ReceivingTDs,
			Targets:        stat.Targets,
			FumblesLost:    stat.FumblesLost,
		}

		if snap, ok := snapByIdentity[key]; ok {
			row.SnapCount = sql.NullInt64{Int64: int64(snap.OffenseSnaps), Valid: true}
		}
		if salary, ok := salaryByIdentity[key]; ok {
			row.Salary = sql.NullInt64{Int64: int64(salary.Salary), Valid: true}
		}

		row.FantasyPointsFull = scoring.Score(row, scoring.FullPPR)
		row.FantasyPointsHalf = scoring.Score(row, scoring.HalfPPR)

		canonical = append(canonical, row)
	}

	report.Produced = len(canonical)
	report.CompletedAt = time.Now()

	log.Printf("Reconciled %d player-weeks from %d stat rows (snaps: %d/%d, salaries: %d/%d, ambiguous: %d, malformed: %d)",
		report.Produced, report.StatRows,
		report.Snaps.Matched+report.Snaps.Mapped, report.Snaps.Rows,
		report.Salaries.Matched+report.Salaries.Mapped, report.Salaries.Rows,
		report.Snaps.Ambiguous+report.Salaries.Ambiguous,
		report.Malformed)

	return canonical, report
}

// matchSecondary runs one snap/salary row through the matcher and keeps the
// feed counters. The bool reports whether a usable identity came back.
func (e *Engine) matchSecondary(matcher *Matcher, counts *FeedCounts, feed, rawName, team string, week, season int, report *Report) (MatchResult, bool) {
	if strings.TrimSpace(team) == "" || week <= 0 || season <= 0 {
		counts.Invalid++
		return MatchResult{}, false
	}

	result, err := matcher.Match(rawName, team, week, season)
	if err != nil {
		counts.Invalid++
		return MatchResult{}, false
	}

	switch result.Outcome {
	case MatchExact:
		counts.Matched++
		return result, true
	case MatchMapped:
		counts.Mapped++
		return result, true
	case MatchAmbiguous:
		counts.Ambiguous++
		log.Printf("  ⚠️  Ambiguous %s match for %q (%s w%d): %d candidates, leaving unresolved",
			feed, rawName, normalizeTeam(team), week, len(result.Candidates))
		if len(report.AmbiguousSamples) < maxReportSamples {
			report.AmbiguousSamples = append(report.AmbiguousSamples,
				fmt.Sprintf("%s %q (%s w%d %d)", feed, rawName, normalizeTeam(team), week, season))
		}
		return result, false
	default:
		counts.Unmatched++
		return result, false
	}
}

// collectMapping queues a durable mapping when an automatic match resolved a
// raw variant spelled differently from the spine, so the next pass resolves
// it from the cache instead of recomputing.
func (e *Engine) collectMapping(result MatchResult, rawName, team string, recorded map[string]bool, report *Report) {
	if result.Outcome != MatchExact || result.Identity == nil || result.Stat == nil {
		return
	}

	if result.Stat.PlayerName == strings.TrimSpace(rawName) {
		return
	}

	scope := normalizeTeam(team)
	key := mappingKey(rawName, scope)
	if recorded[key] {
		return
	}
	recorded[key] = true

	report.NewMappings = append(report.NewMappings, &store.NameMapping{
		RawName:       strings.TrimSpace(rawName),
		Team:          scope,
		CanonicalName: result.Identity.Name,
		Position:      result.Identity.Position,
		Source:        store.MappingSourceAuto,
	})
}

// validateStat checks the fields reconciliation structurally requires and
// returns the normalized name plus an empty reason, or the failure reason.
func validateStat(s *store.WeeklyStat) (string, string) {
	if strings.TrimSpace(s.Team) == "" {
		return "", "missing team"
	}
	if s.Week <= 0 {
		return "", "missing week"
	}
	if s.Season <= 0 {
		return "", "missing season"
	}

	normalized, err := Normalize(s.PlayerName)
	if err != nil {
		return "", "missing name"
	}

	return normalized, ""
}
