package leaguestanding

import (
	"testing"

	"github.com/riskibarqy/elo-championship/internal/domain/match"
)

func records(facts ...match.Fact) []match.Record {
	out := make([]match.Record, 0, len(facts))
	for i, f := range facts {
		out = append(out, match.Record{Position: i + 1, Fact: f})
	}
	return out
}

func TestTableTieBreaks(t *testing.T) {
	t.Parallel()

	table := Table(records(
		match.Fact{HomeTeam: "Alpha", AwayTeam: "Bravo", HomeGoals: 2, AwayGoals: 0},
		match.Fact{HomeTeam: "Charlie", AwayTeam: "Delta", HomeGoals: 3, AwayGoals: 1},
		match.Fact{HomeTeam: "Echo", AwayTeam: "Foxtrot", HomeGoals: 1, AwayGoals: 1},
	))

	// Alpha and Charlie share points and goal difference; Charlie scored more.
	wantOrder := []string{"Charlie", "Alpha", "Echo", "Foxtrot", "Delta", "Bravo"}
	if len(table) != len(wantOrder) {
		t.Fatalf("unexpected rows: %d", len(table))
	}
	for i, name := range wantOrder {
		if table[i].TeamName != name {
			t.Fatalf("row %d: got=%s want=%s", i, table[i].TeamName, name)
		}
		if table[i].Position != i+1 {
			t.Fatalf("row %d: position got=%d want=%d", i, table[i].Position, i+1)
		}
	}
}

func TestFoldCountsResults(t *testing.T) {
	t.Parallel()

	rows := Fold(records(
		match.Fact{HomeTeam: "Alpha", AwayTeam: "Bravo", HomeGoals: 2, AwayGoals: 0},
		match.Fact{HomeTeam: "Bravo", AwayTeam: "Alpha", HomeGoals: 1, AwayGoals: 1},
		match.Fact{HomeTeam: "Alpha", AwayTeam: "Bravo", HomeGoals: 0, AwayGoals: 1},
	))

	alpha := rows[0]
	if alpha.TeamName != "Alpha" || alpha.TeamID != "alpha" {
		t.Fatalf("unexpected first row: %+v", alpha)
	}
	if alpha.Played != 3 || alpha.Won != 1 || alpha.Draw != 1 || alpha.Lost != 1 {
		t.Fatalf("unexpected record: %+v", alpha)
	}
	if alpha.Points != 4 || alpha.GoalsFor != 3 || alpha.GoalsAgainst != 2 || alpha.GoalDifference != 1 {
		t.Fatalf("unexpected totals: %+v", alpha)
	}
	if alpha.Form != "WDL" {
		t.Fatalf("form got=%q want=WDL", alpha.Form)
	}
}

func TestFormKeepsLatestFive(t *testing.T) {
	t.Parallel()

	var row Standing
	for _, score := range [][2]int{{1, 0}, {0, 0}, {0, 1}, {2, 0}, {3, 3}, {0, 2}} {
		row.Record(score[0], score[1])
	}
	if row.Form != "DLWDL" {
		t.Fatalf("form got=%q want=DLWDL", row.Form)
	}
}
