package leaguestanding

import (
	"sort"

	"github.com/riskibarqy/elo-championship/internal/domain/match"
	"github.com/riskibarqy/elo-championship/internal/domain/team"
)

const (
	PointsWin  = 3
	PointsDraw = 1

	formLength = 5
)

// Standing represents a league table row for one team.
type Standing struct {
	TeamID         string
	TeamName       string
	Position       int
	Played         int
	Won            int
	Draw           int
	Lost           int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
	// Form lists the latest results oldest first, e.g. "WDLWW".
	Form   string
	Rating float64
}

// Record adds one result to the row.
func (s *Standing) Record(goalsFor, goalsAgainst int) {
	s.Played++
	s.GoalsFor += goalsFor
	s.GoalsAgainst += goalsAgainst
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst

	var mark byte
	switch {
	case goalsFor > goalsAgainst:
		s.Won++
		s.Points += PointsWin
		mark = 'W'
	case goalsFor < goalsAgainst:
		s.Lost++
		mark = 'L'
	default:
		s.Draw++
		s.Points += PointsDraw
		mark = 'D'
	}

	form := append([]byte(s.Form), mark)
	if len(form) > formLength {
		form = form[len(form)-formLength:]
	}
	s.Form = string(form)
}

// Fold builds the unranked table from the log. Rows keep the order in which
// teams first appeared.
func Fold(records []match.Record) []Standing {
	index := make(map[string]int)
	rows := make([]Standing, 0)
	row := func(name string) *Standing {
		if i, ok := index[name]; ok {
			return &rows[i]
		}
		index[name] = len(rows)
		rows = append(rows, Standing{TeamID: team.IDFromName(name), TeamName: name})
		return &rows[len(rows)-1]
	}

	for _, rec := range records {
		row(rec.HomeTeam).Record(rec.HomeGoals, rec.AwayGoals)
		row(rec.AwayTeam).Record(rec.AwayGoals, rec.HomeGoals)
	}
	return rows
}

// Less orders rows by points, goal difference and goals scored, all
// descending. It reports false for rows that tie on all three.
func Less(a, b Standing) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDifference != b.GoalDifference {
		return a.GoalDifference > b.GoalDifference
	}
	return a.GoalsFor > b.GoalsFor
}

// Rank sorts a copy of rows into table order and assigns positions. Rows
// that tie on points, goal difference and goals scored are ordered by name.
func Rank(rows []Standing) []Standing {
	out := make([]Standing, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if Less(out[i], out[j]) {
			return true
		}
		if Less(out[j], out[i]) {
			return false
		}
		return out[i].TeamName < out[j].TeamName
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// Table folds and ranks the log in one step.
func Table(records []match.Record) []Standing {
	return Rank(Fold(records))
}
