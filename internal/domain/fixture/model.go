package fixture

import (
	"fmt"

	"github.com/riskibarqy/elo-championship/internal/domain/match"
	"github.com/riskibarqy/elo-championship/internal/domain/team"
)

// Fixture represents one unplayed match.
type Fixture struct {
	HomeTeam string
	AwayTeam string
	Neutral  bool
}

// Normalize returns the fixture with canonical team names.
func (f Fixture) Normalize() Fixture {
	f.HomeTeam = team.NormalizeName(f.HomeTeam)
	f.AwayTeam = team.NormalizeName(f.AwayTeam)
	return f
}

func (f Fixture) Validate() error {
	n := f.Normalize()
	if n.HomeTeam == "" || n.AwayTeam == "" {
		return fmt.Errorf("fixture teams are required")
	}
	if n.HomeTeam == n.AwayTeam {
		return fmt.Errorf("team %q cannot play itself", n.HomeTeam)
	}
	return nil
}

type pair struct {
	home string
	away string
}

// Remaining lists the double round-robin fixtures that have not been played
// yet: every ordered (home, away) pair of teams appears once per season.
// Teams are taken in the given order, which also fixes the fixture order.
func Remaining(teams []string, played []match.Record) []Fixture {
	seen := make(map[pair]int, len(played))
	for _, rec := range played {
		seen[pair{home: rec.HomeTeam, away: rec.AwayTeam}]++
	}

	out := make([]Fixture, 0)
	for _, home := range teams {
		for _, away := range teams {
			if home == away {
				continue
			}
			key := pair{home: home, away: away}
			if seen[key] > 0 {
				continue
			}
			out = append(out, Fixture{HomeTeam: home, AwayTeam: away})
		}
	}
	return out
}

// Progress summarizes how far a double round-robin season has advanced.
type Progress struct {
	Teams           int
	MatchesPerTeam  int
	TotalMatches    int
	PlayedMatches   int
	RemainingCount  int
	PercentComplete float64
}

// SeasonProgress compares the number of played matches with a full double
// round-robin between the given teams.
func SeasonProgress(teams int, played int, remaining int) Progress {
	p := Progress{Teams: teams, PlayedMatches: played, RemainingCount: remaining}
	if teams < 2 {
		return p
	}
	p.MatchesPerTeam = 2 * (teams - 1)
	p.TotalMatches = teams * (teams - 1)
	if p.TotalMatches > 0 {
		done := p.TotalMatches - remaining
		if done < 0 {
			done = 0
		}
		p.PercentComplete = float64(done) / float64(p.TotalMatches) * 100
	}
	return p
}

// Complete reports whether no fixtures are left.
func (p Progress) Complete() bool {
	return p.Teams >= 2 && p.RemainingCount == 0
}
