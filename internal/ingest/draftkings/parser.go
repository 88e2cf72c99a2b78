package draftkings

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/fortuna/gridiron/internal/store"
)

// MinSalary is the cheapest price DraftKings assigns a rosterable player.
// Rows below it are placeholder or junk entries and are skipped.
const MinSalary = 2000

// ParseSalaryCSV parses a DraftKings salary export. Both the standard
// DKSalaries.csv header (Position, Name, Salary, Game Info, TeamAbbrev) and
// the internal sheet layout (WEEK, NAME, TEAM, POS, $) are accepted. Rows
// without a WEEK column use defaultWeek.
func ParseSalaryCSV(r io.Reader, season, defaultWeek int) ([]*store.SalaryEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading salary header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(record []string, names ...string) string {
		for _, name := range names {
			if i, ok := idx[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
		}
		return ""
	}

	var entries []*store.SalaryEntry
	skipped := 0

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		week := defaultWeek
		if w := field(record, "week"); w != "" {
			parsed, err := strconv.Atoi(w)
			if err != nil {
				skipped++
				continue
			}
			week = parsed
		}

		entry, ok := buildEntry(
			field(record, "name", "player"),
			field(record, "teamabbrev", "team"),
			field(record, "position", "pos"),
			field(record, "salary", "$"),
			field(record, "game info", "gameinfo"),
			season, week,
		)
		if !ok {
			skipped++
			continue
		}

		entries = append(entries, entry)
	}

	if skipped > 0 {
		log.Printf("[dk-parser] ⊘ Skipped %d salary rows (blank, sub-minimum, or off-position)", skipped)
	}

	return entries, nil
}

// ParseDraftScreen extracts salary rows from a rendered draft screen. The
// markup shifts between DraftKings releases, so parsing tries structured
// selectors first and falls back to a text scan.
func ParseDraftScreen(doc *goquery.Document, season, week int) ([]*store.SalaryEntry, error) {
	var entries []*store.SalaryEntry

	doc.Find("div[class*='player-row'], tr[class*='player-row']").Each(func(_ int, row *goquery.Selection) {
		entry, ok := buildEntry(
			firstText(row, "[class*='player-name'], [class*='playerName']"),
			firstText(row, "[class*='team-abbr'], [class*='teamAbbr'], [class*='team']"),
			firstText(row, "[class*='position']"),
			firstText(row, "[class*='salary']"),
			firstText(row, "[class*='game-info'], [class*='gameInfo']"),
			season, week,
		)
		if ok {
			entries = append(entries, entry)
		}
	})

	if len(entries) == 0 {
		entries = parseDraftScreenText(doc, season, week)
	}

	log.Printf("Parsed %d salary rows from draft screen", len(entries))
	return entries, nil
}

// rowPattern matches lines like "QB Josh Allen BUF $8,500" in flattened text.
var rowPattern = regexp.MustCompile(`\b(QB|RB|WR|TE)\b\s+([A-Za-z][A-Za-z.'\- ]+?)\s+([A-Z]{2,3})\s+\$([\d,]+)`)

func parseDraftScreenText(doc *goquery.Document, season, week int) []*store.SalaryEntry {
	var entries []*store.SalaryEntry

	for _, match := range rowPattern.FindAllStringSubmatch(doc.Text(), -1) {
		entry, ok := buildEntry(match[2], match[3], match[1], match[4], "", season, week)
		if ok {
			entries = append(entries, entry)
		}
	}

	return entries
}

func firstText(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}

// buildEntry validates and assembles one salary row. Blank names, salaries
// below MinSalary, and positions outside the carried four are rejected.
func buildEntry(name, team, position, salaryRaw, gameInfo string, season, week int) (*store.SalaryEntry, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}

	salary, err := parseSalary(salaryRaw)
	if err != nil || salary < MinSalary {
		return nil, false
	}

	position = strings.ToUpper(strings.TrimSpace(position))
	if !store.IsFantasyPosition(position) {
		return nil, false
	}

	team = strings.ToUpper(strings.TrimSpace(team))
	if team == "" {
		team = "UNK"
	}

	return &store.SalaryEntry{
		ID:         uuid.NewString(),
		PlayerName: name,
		Team:       team,
		Position:   position,
		Season:     season,
		Week:       week,
		Salary:     salary,
		GameInfo:   sql.NullString{String: gameInfo, Valid: gameInfo != ""},
	}, true
}

func parseSalary(raw string) (int, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	if cleaned == "" {
		return 0, fmt.Errorf("empty salary")
	}
	return strconv.Atoi(cleaned)
}
