package reconciliation

import (
	"fmt"
	"strings"

	"github.com/fortuna/gridiron/internal/store"
)

// MatchOutcome classifies how a secondary-feed record resolved against the
// stat spine.
type MatchOutcome string

const (
	// MatchExact means exactly one spine row shared the normalized name
	// within the same team/week/season scope.
	MatchExact MatchOutcome = "exact"

	// MatchMapped means a durable name mapping resolved the raw variant
	// before automatic matching was attempted.
	MatchMapped MatchOutcome = "mapped"

	// MatchUnmatched means no spine row matched. Expected and common: the
	// secondary feeds cover players the stats feed does not, and vice versa.
	MatchUnmatched MatchOutcome = "unmatched"

	// MatchAmbiguous means several spine rows matched and no mapping
	// disambiguates. Never guessed; surfaced for manual curation.
	MatchAmbiguous MatchOutcome = "ambiguous"
)

// MatchResult is the outcome of matching one secondary-feed record. Stat is
// the resolved spine row when the outcome is exact or mapped.
type MatchResult struct {
	Outcome    MatchOutcome
	Identity   *store.CanonicalIdentity
	Stat       *store.WeeklyStat
	Candidates []store.CanonicalIdentity
}

// Matcher resolves raw player names from the snap and salary feeds against
// the weekly-stat spine. Matching is always scoped to (team, week, season):
// two different players can share a normalized name across teams or seasons,
// so cross-scope matching is never attempted.
type Matcher struct {
	// scoped normalized name -> spine rows sharing that key
	pool map[string][]*store.WeeklyStat

	// raw variant -> mapped identity, loaded from the durable mapping cache
	mappings map[string]store.CanonicalIdentity
}

// NewMatcher builds a matcher over the given stat spine and mapping-cache
// snapshot. Spine rows that fail name normalization are skipped here; the
// engine separately counts them as malformed.
func NewMatcher(stats []*store.WeeklyStat, mappings []*store.NameMapping) *Matcher {
	m := &Matcher{
		pool:     make(map[string][]*store.WeeklyStat),
		mappings: make(map[string]store.CanonicalIdentity),
	}

	for _, s := range stats {
		key, err := spineKey(s)
		if err != nil {
			continue
		}
		m.pool[key] = append(m.pool[key], s)
	}

	for _, nm := range mappings {
		m.mappings[mappingKey(nm.RawName, nm.Team)] = store.CanonicalIdentity{
			Name:     nm.CanonicalName,
			Team:     normalizeTeam(nm.Team),
			Position: nm.Position,
		}
	}

	return m
}

// Match resolves one secondary-feed name within its (team, week, season)
// scope. The mapping cache is consulted first: a recorded mapping for the
// exact raw variant beats automatic matching. Otherwise exactly one
// normalized-name hit is a match, zero is unmatched, and several are
// ambiguous unless a mapping settles them.
func (m *Matcher) Match(rawName, team string, week, season int) (MatchResult, error) {
	normalized, err := Normalize(rawName)
	if err != nil {
		return MatchResult{Outcome: MatchUnmatched}, err
	}

	scope := normalizeTeam(team)

	// Mapping cache first. A mapping only resolves to a spine row that
	// actually exists for this week: the join stays stats-anchored. When two
	// spine rows share a normalized name (the 2018 Josh Allen case), the
	// mapping's position picks the row.
	if identity, ok := m.mappings[mappingKey(rawName, scope)]; ok {
		for _, row := range m.pool[poolKey(identity.Name, scope, week, season)] {
			if identity.Position != "" && row.Position != identity.Position {
				continue
			}
			id := identityOf(row)
			return MatchResult{Outcome: MatchMapped, Identity: &id, Stat: row}, nil
		}
		return MatchResult{Outcome: MatchUnmatched}, nil
	}

	rows := m.pool[poolKey(normalized, scope, week, season)]

	switch len(rows) {
	case 0:
		return MatchResult{Outcome: MatchUnmatched}, nil
	case 1:
		id := identityOf(rows[0])
		return MatchResult{Outcome: MatchExact, Identity: &id, Stat: rows[0]}, nil
	default:
		candidates := make([]store.CanonicalIdentity, 0, len(rows))
		for _, row := range rows {
			candidates = append(candidates, identityOf(row))
		}
		return MatchResult{Outcome: MatchAmbiguous, Candidates: candidates}, nil
	}
}

// identityOf derives the canonical identity from a spine row. Position comes
// from the spine: the snap feed carries no position and the salary feed's is
// not trusted over the stats feed's.
func identityOf(s *store.WeeklyStat) store.CanonicalIdentity {
	normalized, _ := Normalize(s.PlayerName)
	return store.CanonicalIdentity{
		Name:     normalized,
		Team:     normalizeTeam(s.Team),
		Position: s.Position,
	}
}

// spineKey builds the scoped pool key for a stat row.
func spineKey(s *store.WeeklyStat) (string, error) {
	normalized, err := Normalize(s.PlayerName)
	if err != nil {
		return "", err
	}
	return poolKey(normalized, normalizeTeam(s.Team), s.Week, s.Season), nil
}

func poolKey(normalizedName, team string, week, season int) string {
	return fmt.Sprintf("%s|%s|%d|%d", normalizedName, team, season, week)
}

// identityKey is the attachment key for one resolved player-week. Unlike
// poolKey it includes position: two spine rows sharing a normalized name on
// one team stay separate here, and a mapped secondary row reaches only the
// position its mapping picked.
func identityKey(normalizedName, team, position string, week, season int) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d", normalizedName, team, position, season, week)
}

func mappingKey(rawName, team string) string {
	return fmt.Sprintf("%s|%s", strings.TrimSpace(rawName), normalizeTeam(team))
}
