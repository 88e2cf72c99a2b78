package reconciliation

import (
	"errors"
	"testing"
)

func TestNormalize_SuffixEquivalence(t *testing.T) {
	pairs := []struct {
		a, b string
	}{
		{"Chris Godwin Jr.", "Chris Godwin"},
		{"Kenneth Walker III", "Kenneth Walker"},
		{"Odell Beckham Jr.", "Odell Beckham"},
		{"Marvin Harrison, Jr.", "Marvin Harrison"},
		{"Will Fuller V", "Will Fuller"},
		{"Irv Smith Jr", "Irv Smith"},
	}

	for _, pair := range pairs {
		gotA, err := Normalize(pair.a)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", pair.a, err)
		}
		gotB, err := Normalize(pair.b)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", pair.b, err)
		}
		if gotA != gotB {
			t.Errorf("Normalize(%q) = %q, Normalize(%q) = %q, want equal", pair.a, gotA, pair.b, gotB)
		}
	}
}

func TestNormalize_PunctuationVariants(t *testing.T) {
	pairs := []struct {
		a, b string
	}{
		{"D.J. Moore", "DJ Moore"},
		{"Ja'Marr Chase", "Jamarr Chase"},
		{"Ja’Marr Chase", "Jamarr Chase"},
		{"Amon-Ra St. Brown", "Amon Ra St Brown"},
		{"  Davante   Adams  ", "Davante Adams"},
	}

	for _, pair := range pairs {
		gotA, err := Normalize(pair.a)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", pair.a, err)
		}
		gotB, err := Normalize(pair.b)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", pair.b, err)
		}
		if gotA != gotB {
			t.Errorf("Normalize(%q) = %q, Normalize(%q) = %q, want equal", pair.a, gotA, pair.b, gotB)
		}
	}
}

func TestNormalize_Idempotence(t *testing.T) {
	inputs := []string{
		"Ja'Marr Chase",
		"Odell Beckham Jr.",
		"D.J. Moore",
		"Amon-Ra St. Brown",
		"Patrick Mahomes",
	}

	for _, input := range inputs {
		once, err := Normalize(input)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", input, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(Normalize(%q)) error: %v", input, err)
		}
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestNormalize_BlankNameRejected(t *testing.T) {
	for _, input := range []string{"", "   ", "...", "()"} {
		if _, err := Normalize(input); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Normalize(%q) error = %v, want ErrInvalidName", input, err)
		}
	}
}

func TestNormalize_NeverStripsWholeName(t *testing.T) {
	// A single suffix-shaped token is still a name.
	got, err := Normalize("V")
	if err != nil {
		t.Fatalf("Normalize(%q) error: %v", "V", err)
	}
	if got != "v" {
		t.Errorf("Normalize(%q) = %q, want %q", "V", got, "v")
	}
}
