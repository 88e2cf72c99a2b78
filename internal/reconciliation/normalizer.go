package reconciliation

import (
	"errors"
	"strings"
)

// ErrInvalidName indicates a raw name field was empty (or normalized to
// empty) where a name is structurally required. A blank key must never be
// produced: blank-matching two records from different feeds would silently
// join unrelated players.
var ErrInvalidName = errors.New("invalid player name")

// Generational suffixes stripped as trailing tokens. Lower-case because
// normalization lower-cases before the suffix pass.
var nameSuffixes = map[string]bool{
	"jr":  true,
	"sr":  true,
	"ii":  true,
	"iii": true,
	"iv":  true,
	"v":   true,
}

// namePunct removes punctuation that varies across feeds and turns hyphen
// variants into word separators, so "D.J. Moore" == "DJ Moore" and
// "Ja'Marr Chase" == "Jamarr Chase" after normalization.
var namePunct = strings.NewReplacer(
	".", "",
	"'", "",
	"’", "",
	"`", "",
	",", " ",
	"-", " ",
	"–", " ",
	"—", " ",
	"(", "",
	")", "",
)

// Normalize canonicalizes a raw player name into the comparable key used for
// cross-feed identity matching: lower-cased, punctuation-stripped, whitespace
// collapsed, with generational suffixes ("Jr.", "Sr.", "II" through "V",
// optionally comma-preceded) removed from the end. Pure and deterministic;
// applying it twice yields the same key.
func Normalize(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrInvalidName
	}

	s = namePunct.Replace(s)

	fields := strings.Fields(s)

	// Strip trailing suffix tokens, but never the whole name.
	for len(fields) > 1 && nameSuffixes[fields[len(fields)-1]] {
		fields = fields[:len(fields)-1]
	}

	key := strings.Join(fields, " ")
	if key == "" {
		return "", ErrInvalidName
	}

	return key, nil
}

// normalizeTeam canonicalizes a team code for scoped matching. Feeds agree on
// upper-case abbreviations but differ in casing and stray whitespace.
func normalizeTeam(team string) string {
	return strings.ToUpper(strings.TrimSpace(team))
}
