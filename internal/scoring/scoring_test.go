package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/fortuna/gridiron/internal/store"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_QBLine(t *testing.T) {
	rec := &store.CanonicalPlayerWeek{
		PassingYards:  300,
		PassingTDs:    2,
		Interceptions: 1,
		RushingYards:  20,
	}

	// 300*0.04 + 2*4 - 1 + 20*0.1 = 21.0, identical under both modes
	// because the line has no receptions.
	full := Score(rec, FullPPR)
	half := Score(rec, HalfPPR)

	if !almostEqual(full, 21.0) {
		t.Errorf("Score(full) = %v, want 21.0", full)
	}
	if full != half {
		t.Errorf("Score(full) = %v, Score(half) = %v, want equal for a line with no receptions", full, half)
	}
}

func TestScore_ReceiverLine(t *testing.T) {
	rec := &store.CanonicalPlayerWeek{
		Receptions:     14,
		ReceivingYards: 177,
	}

	full := Score(rec, FullPPR)
	half := Score(rec, HalfPPR)

	if !almostEqual(full, 31.7) {
		t.Errorf("Score(full) = %v, want 31.7", full)
	}
	if !almostEqual(half, 24.7) {
		t.Errorf("Score(half) = %v, want 24.7", half)
	}
}

func TestScore_PPRDeltaIsHalfPointPerReception(t *testing.T) {
	lines := []*store.CanonicalPlayerWeek{
		{Receptions: 0},
		{Receptions: 1, ReceivingYards: 12},
		{Receptions: 7, ReceivingYards: 88, ReceivingTDs: 1},
		{Receptions: 14, ReceivingYards: 177, RushingYards: 9, FumblesLost: 1},
	}

	for _, rec := range lines {
		delta := Score(rec, FullPPR) - Score(rec, HalfPPR)
		want := 0.5 * float64(rec.Receptions)
		if !almostEqual(delta, want) {
			t.Errorf("delta for %d receptions = %v, want %v", rec.Receptions, delta, want)
		}
	}
}

func TestScore_TurnoversSubtract(t *testing.T) {
	rec := &store.CanonicalPlayerWeek{
		Interceptions: 2,
		FumblesLost:   1,
	}

	if got := Score(rec, FullPPR); !almostEqual(got, -3.0) {
		t.Errorf("Score = %v, want -3.0", got)
	}
}

func TestScore_EmptyLineScoresZero(t *testing.T) {
	rec := &store.CanonicalPlayerWeek{}

	if got := Score(rec, FullPPR); got != 0 {
		t.Errorf("Score(empty, full) = %v, want 0", got)
	}
	if got := Score(rec, HalfPPR); got != 0 {
		t.Errorf("Score(empty, half) = %v, want 0", got)
	}
}

func TestScore_Deterministic(t *testing.T) {
	rec := &store.CanonicalPlayerWeek{
		PassingYards:   247,
		PassingTDs:     1,
		RushingYards:   33,
		Receptions:     2,
		ReceivingYards: 15,
	}

	first := Score(rec, HalfPPR)
	second := Score(rec, HalfPPR)

	if first != second {
		t.Errorf("Score not bit-reproducible: %v vs %v", first, second)
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"full-ppr", FullPPR, false},
		{"half-ppr", HalfPPR, false},
		{"FULL-PPR", FullPPR, false},
		{" half-ppr ", HalfPPR, false},
		{"", FullPPR, false},
		{"standard", "", true},
		{"ppr", "", true},
	}

	for _, tc := range cases {
		got, err := ParseMode(tc.input)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidMode) {
				t.Errorf("ParseMode(%q) error = %v, want ErrInvalidMode", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q) error = %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestRound1(t *testing.T) {
	cases := []struct {
		input, want float64
	}{
		{20.3000000001, 20.3},
		{24.72, 24.7},
		{31.700000000000003, 31.7},
		{-1.04, -1.0},
		{0, 0},
	}

	for _, tc := range cases {
		if got := Round1(tc.input); got != tc.want {
			t.Errorf("Round1(%v) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
