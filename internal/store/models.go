package store

import (
	"database/sql"
	"time"
)

// WeeklyStat represents one player's box-score line for one week, as delivered
// by the stats feed. The stats feed is the authoritative spine: reconciliation
// produces exactly one canonical row per valid WeeklyStat.
type WeeklyStat struct {
	ID             string         `json:"id" db:"id"`
	SourcePlayerID sql.NullString `json:"source_player_id,omitempty" db:"source_player_id"`
	PlayerName     string         `json:"player_name" db:"player_name"`
	Position       string         `json:"position" db:"position"`
	Team           string         `json:"team" db:"team"`
	Season         int            `json:"season" db:"season"`
	Week           int            `json:"week" db:"week"`
	Opponent       sql.NullString `json:"opponent,omitempty" db:"opponent"`
	PassingYards   int            `json:"passing_yards" db:"passing_yards"`
	PassingTDs     int            `json:"passing_tds" db:"passing_tds"`
	Interceptions  int            `json:"interceptions" db:"interceptions"`
	RushingYards   int            `json:"rushing_yards" db:"rushing_yards"`
	RushingTDs     int            `json:"rushing_tds" db:"rushing_tds"`
	Receptions     int            `json:"receptions" db:"receptions"`
	ReceivingYards int            `json:"receiving_yards" db:"receiving_yards"`
	ReceivingTDs   int            `json:"receiving_tds" db:"receiving_tds"`
	Targets        int            `json:"targets" db:"targets"`
	FumblesLost    int            `json:"fumbles_lost" db:"fumbles_lost"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// SnapCount represents one player's offensive snap participation for one week.
// The snap feed keys players by a PFR-style id that has no crosswalk to the
// stats feed's ids, so association back to the spine is name-based.
type SnapCount struct {
	ID             string         `json:"id" db:"id"`
	SourcePlayerID sql.NullString `json:"source_player_id,omitempty" db:"source_player_id"`
	PlayerName     string         `json:"player_name" db:"player_name"`
	Team           string         `json:"team" db:"team"`
	Season         int            `json:"season" db:"season"`
	Week           int            `json:"week" db:"week"`
	OffenseSnaps   int            `json:"offense_snaps" db:"offense_snaps"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// SalaryEntry represents one player's DraftKings salary for one week. Salary
// rows carry no upstream player id at all; the raw name string is the only key.
type SalaryEntry struct {
	ID         string         `json:"id" db:"id"`
	PlayerName string         `json:"player_name" db:"player_name"`
	Team       string         `json:"team" db:"team"`
	Position   string         `json:"position" db:"position"`
	Season     int            `json:"season" db:"season"`
	Week       int            `json:"week" db:"week"`
	Salary     int            `json:"salary" db:"salary"`
	GameInfo   sql.NullString `json:"game_info,omitempty" db:"game_info"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// CanonicalIdentity is the stable key for one real player: the normalized
// name plus team and position. Raw name variants from any feed resolve to at
// most one identity per team.
type CanonicalIdentity struct {
	Name     string `json:"name"`
	Team     string `json:"team"`
	Position string `json:"position"`
}

// NameMapping is a durable association from a raw feed name variant to a
// canonical identity, created by high-confidence automatic matching or by
// manual curation. A mapping always takes precedence over automatic matching
// for its exact raw variant; re-recording a variant overwrites the prior
// mapping (an intentional correction, not a conflict).
type NameMapping struct {
	ID            int       `json:"id" db:"id"`
	RawName       string    `json:"raw_name" db:"raw_name"`
	Team          string    `json:"team" db:"team"`
	CanonicalName string    `json:"canonical_name" db:"canonical_name"`
	Position      string    `json:"position" db:"position"`
	Source        string    `json:"source" db:"source"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Mapping sources.
const (
	MappingSourceAuto   = "auto"
	MappingSourceManual = "manual"
)

// CanonicalPlayerWeek is the reconciled entity: one row per (identity, week,
// season), rebuilt wholesale on each refresh. SnapCount and Salary are null
// when the secondary feeds had no matching row; absence is distinct from a
// recorded zero.
type CanonicalPlayerWeek struct {
	ID                int             `json:"id" db:"id"`
	CanonicalName     string          `json:"canonical_name" db:"canonical_name"`
	DisplayName       string          `json:"display_name" db:"display_name"`
	Position          string          `json:"position" db:"position"`
	Team              string          `json:"team" db:"team"`
	Season            int             `json:"season" db:"season"`
	Week              int             `json:"week" db:"week"`
	Opponent          sql.NullString  `json:"opponent,omitempty" db:"opponent"`
	PassingYards      int             `json:"passing_yards" db:"passing_yards"`
	PassingTDs        int             `json:"passing_tds" db:"passing_tds"`
	Interceptions     int             `json:"interceptions" db:"interceptions"`
	RushingYards      int             `json:"rushing_yards" db:"rushing_yards"`
	RushingTDs        int             `json:"rushing_tds" db:"rushing_tds"`
	Receptions        int             `json:"receptions" db:"receptions"`
	ReceivingYards    int             `json:"receiving_yards" db:"receiving_yards"`
	ReceivingTDs      int             `json:"receiving_tds" db:"receiving_tds"`
	Targets           int             `json:"targets" db:"targets"`
	FumblesLost       int             `json:"fumbles_lost" db:"fumbles_lost"`
	SnapCount         sql.NullInt64   `json:"snap_count,omitempty" db:"snap_count"`
	Salary            sql.NullInt64   `json:"salary,omitempty" db:"salary"`
	FantasyPointsFull float64         `json:"fantasy_points_full" db:"fantasy_points_full"`
	FantasyPointsHalf float64         `json:"fantasy_points_half" db:"fantasy_points_half"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// Identity returns the canonical identity key for the row.
func (c *CanonicalPlayerWeek) Identity() CanonicalIdentity {
	return CanonicalIdentity{Name: c.CanonicalName, Team: c.Team, Position: c.Position}
}

// Positions the pipeline carries, in the presentation priority order used by
// the trend view.
var FantasyPositions = []string{"QB", "RB", "WR", "TE"}

// IsFantasyPosition reports whether pos is one of the carried positions.
func IsFantasyPosition(pos string) bool {
	for _, p := range FantasyPositions {
		if p == pos {
			return true
		}
	}
	return false
}

// Bounds on what the feeds can serve. nflverse weekly data starts in 1999;
// week 22 covers the Super Bowl under the 17-game schedule.
const (
	FirstSeason = 1999
	MaxWeek     = 22
)

// CurrentSeason returns the NFL season a moment belongs to. January games
// close out the season that kicked off the previous September.
func CurrentSeason(t time.Time) int {
	if t.Month() >= time.September {
		return t.Year()
	}
	return t.Year() - 1
}
