package draftkings

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestParseSalaryCSV_StandardExport(t *testing.T) {
	csv := "Position,Name + ID,Name,ID,Roster Position,Salary,Game Info,TeamAbbrev,AvgPointsPerGame\n" +
		"QB,Josh Allen (15433),Josh Allen,15433,QB,8500,BUF@MIA 11/03/2024 01:00PM ET,BUF,24.5\n" +
		"WR,Practice Squad Guy (99999),Practice Squad Guy,99999,WR,1500,NYJ@NE 11/03/2024 01:00PM ET,NYJ,0\n" +
		"DST,Jets (99998),Jets,99998,DST,2800,NYJ@NE 11/03/2024 01:00PM ET,NYJ,5.1\n" +
		"RB,Mystery Back (99997),Mystery Back,99997,RB,4000,DAL@PHI 11/03/2024 04:25PM ET,,3.2\n"

	entries, err := ParseSalaryCSV(strings.NewReader(csv), 2024, 9)
	if err != nil {
		t.Fatalf("ParseSalaryCSV error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2 (sub-minimum and DST rows dropped)", len(entries))
	}

	allen := entries[0]
	if allen.PlayerName != "Josh Allen" || allen.Team != "BUF" || allen.Position != "QB" {
		t.Errorf("first entry = %s/%s/%s, want Josh Allen/BUF/QB", allen.PlayerName, allen.Team, allen.Position)
	}
	if allen.Salary != 8500 {
		t.Errorf("Salary = %d, want 8500", allen.Salary)
	}
	if allen.Season != 2024 || allen.Week != 9 {
		t.Errorf("Season/Week = %d/%d, want 2024/9 (defaultWeek without a WEEK column)", allen.Season, allen.Week)
	}
	if !allen.GameInfo.Valid || !strings.HasPrefix(allen.GameInfo.String, "BUF@MIA") {
		t.Errorf("GameInfo = %+v, want the matchup string", allen.GameInfo)
	}
	if allen.ID == "" {
		t.Error("entry ID is empty")
	}

	if entries[1].Team != "UNK" {
		t.Errorf("blank TeamAbbrev mapped to %q, want UNK", entries[1].Team)
	}
}

func TestParseSalaryCSV_SheetLayout(t *testing.T) {
	csv := "WEEK,NAME,TEAM,POS,$\n" +
		"10,Jahmyr Gibbs,det,rb,\"$7,900\"\n" +
		"abc,CeeDee Lamb,DAL,WR,$8100\n" +
		"11,Bargain Bin,DAL,WR,$0\n"

	entries, err := ParseSalaryCSV(strings.NewReader(csv), 2024, 1)
	if err != nil {
		t.Fatalf("ParseSalaryCSV error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1 (bad week and zero salary dropped)", len(entries))
	}

	gibbs := entries[0]
	if gibbs.Week != 10 {
		t.Errorf("Week = %d, want 10 (WEEK column overrides defaultWeek)", gibbs.Week)
	}
	if gibbs.Team != "DET" || gibbs.Position != "RB" {
		t.Errorf("Team/Position = %s/%s, want DET/RB (uppercased)", gibbs.Team, gibbs.Position)
	}
	if gibbs.Salary != 7900 {
		t.Errorf("Salary = %d, want 7900 ($ and comma stripped)", gibbs.Salary)
	}
	if gibbs.GameInfo.Valid {
		t.Errorf("GameInfo = %+v, want invalid for the sheet layout", gibbs.GameInfo)
	}
}

func TestParseSalaryCSV_EmptyInput(t *testing.T) {
	if _, err := ParseSalaryCSV(strings.NewReader(""), 2024, 1); err == nil {
		t.Error("ParseSalaryCSV with no header returned nil error")
	}
}

func TestParseDraftScreen_StructuredRows(t *testing.T) {
	html := `<html><body>
		<div class="player-row odd">
			<span class="player-name">Josh Allen</span>
			<span class="position">QB</span>
			<span class="team-abbr">BUF</span>
			<span class="salary">$8,500</span>
			<span class="game-info">BUF@MIA</span>
		</div>
		<div class="player-row even">
			<span class="player-name">Stefon Diggs</span>
			<span class="position">WR</span>
			<span class="team-abbr">HOU</span>
			<span class="salary">$6,800</span>
		</div>
		<div class="player-row odd">
			<span class="player-name">Cheap Guy</span>
			<span class="position">TE</span>
			<span class="team-abbr">NE</span>
			<span class="salary">$1,000</span>
		</div>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("building document: %v", err)
	}

	entries, err := ParseDraftScreen(doc, 2024, 12)
	if err != nil {
		t.Fatalf("ParseDraftScreen error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2 (sub-minimum row dropped)", len(entries))
	}

	allen := entries[0]
	if allen.PlayerName != "Josh Allen" || allen.Team != "BUF" || allen.Salary != 8500 {
		t.Errorf("first entry = %s/%s/%d, want Josh Allen/BUF/8500", allen.PlayerName, allen.Team, allen.Salary)
	}
	if allen.Season != 2024 || allen.Week != 12 {
		t.Errorf("Season/Week = %d/%d, want 2024/12", allen.Season, allen.Week)
	}
	if !allen.GameInfo.Valid || allen.GameInfo.String != "BUF@MIA" {
		t.Errorf("GameInfo = %+v, want BUF@MIA", allen.GameInfo)
	}
	if entries[1].GameInfo.Valid {
		t.Errorf("GameInfo = %+v, want invalid when the row has none", entries[1].GameInfo)
	}
}

func TestParseDraftScreen_TextFallback(t *testing.T) {
	html := `<html><body><div id="app">Lineup builder
		QB Josh Allen BUF $8,500
		RB Christian McCaffrey SF $9,200
		WR Nico Collins HOU $7,100
	</div></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("building document: %v", err)
	}

	entries, err := ParseDraftScreen(doc, 2024, 3)
	if err != nil {
		t.Fatalf("ParseDraftScreen error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3 from the text scan", len(entries))
	}

	cmc := entries[1]
	if cmc.PlayerName != "Christian McCaffrey" {
		t.Errorf("PlayerName = %q, want %q (mid-name capitals stay in the name)", cmc.PlayerName, "Christian McCaffrey")
	}
	if cmc.Team != "SF" || cmc.Position != "RB" || cmc.Salary != 9200 {
		t.Errorf("entry = %s/%s/%d, want SF/RB/9200", cmc.Team, cmc.Position, cmc.Salary)
	}
}

func TestParseSalary_MoneyForms(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"8500", 8500, false},
		{"$8,500", 8500, false},
		{"$ 7,900", 7900, false},
		{"", 0, true},
		{"TBD", 0, true},
	}

	for _, tc := range cases {
		got, err := parseSalary(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseSalary(%q) error = nil, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSalary(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseSalary(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
