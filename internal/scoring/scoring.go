package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fortuna/gridiron/internal/store"
)

// Mode selects the reception-scoring rule.
type Mode string

const (
	// FullPPR awards 1.0 point per reception
	FullPPR Mode = "full-ppr"

	// HalfPPR awards 0.5 points per reception
	HalfPPR Mode = "half-ppr"
)

// ErrInvalidMode indicates a scoring mode string outside the two supported
// rules. A usage error surfaced to the caller, not a data error.
var ErrInvalidMode = errors.New("invalid scoring mode")

// ParseMode validates a user-supplied scoring mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case FullPPR:
		return FullPPR, nil
	case HalfPPR:
		return HalfPPR, nil
	case "":
		return FullPPR, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// DraftKings per-stat point values.
const (
	pointsPerPassingYard   = 0.04
	pointsPerPassingTD     = 4.0
	pointsPerInterception  = -1.0
	pointsPerRushingYard   = 0.1
	pointsPerRushingTD     = 6.0
	pointsPerReceivingYard = 0.1
	pointsPerReceivingTD   = 6.0
	pointsPerFumbleLost    = -1.0

	receptionPointsFull = 1.0
	receptionPointsHalf = 0.5
)

// Score computes fantasy points for one reconciled player-week under the
// given mode. Pure: identical inputs always produce the identical float64.
// Stats a record does not accumulate are zero-valued and contribute nothing,
// so a QB line scores without receiving fields and vice versa. The result is
// unrounded; rounding is a presentation concern, and aggregating rounded
// values would accumulate error.
func Score(rec *store.CanonicalPlayerWeek, mode Mode) float64 {
	perReception := receptionPointsHalf
	if mode == FullPPR {
		perReception = receptionPointsFull
	}

	points := float64(rec.PassingYards) * pointsPerPassingYard
	points += float64(rec.PassingTDs) * pointsPerPassingTD
	points += float64(rec.Interceptions) * pointsPerInterception
	points += float64(rec.RushingYards) * pointsPerRushingYard
	points += float64(rec.RushingTDs) * pointsPerRushingTD
	points += float64(rec.ReceivingYards) * pointsPerReceivingYard
	points += float64(rec.ReceivingTDs) * pointsPerReceivingTD
	points += float64(rec.Receptions) * perReception
	points += float64(rec.FumblesLost) * pointsPerFumbleLost

	return points
}

// Round1 rounds to one decimal place for display.
func Round1(points float64) float64 {
	return math.Round(points*10) / 10
}
