package httpapi

import (
	"time"

	"github.com/riskibarqy/elo-championship/internal/domain/backup"
	"github.com/riskibarqy/elo-championship/internal/domain/fixture"
	"github.com/riskibarqy/elo-championship/internal/domain/leaguestanding"
	"github.com/riskibarqy/elo-championship/internal/domain/match"
	"github.com/riskibarqy/elo-championship/internal/domain/rating"
	"github.com/riskibarqy/elo-championship/internal/domain/simulation"
	"github.com/riskibarqy/elo-championship/internal/usecase"
)

type matchRequest struct {
	HomeTeam  string `json:"home_team" validate:"required,max=100"`
	AwayTeam  string `json:"away_team" validate:"required,max=100,nefield=HomeTeam"`
	HomeGoals *int   `json:"home_goals" validate:"required,min=0,max=99"`
	AwayGoals *int   `json:"away_goals" validate:"required,min=0,max=99"`
	Neutral   bool   `json:"neutral"`
	Position  int    `json:"position" validate:"omitempty,min=1"`
}

func (r matchRequest) toInput() usecase.MatchInput {
	return usecase.MatchInput{
		HomeTeam:  r.HomeTeam,
		AwayTeam:  r.AwayTeam,
		HomeGoals: *r.HomeGoals,
		AwayGoals: *r.AwayGoals,
		Neutral:   r.Neutral,
		Position:  r.Position,
	}
}

type renameTeamRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type predictMatchRequest struct {
	HomeTeam string `json:"home_team" validate:"required,max=100"`
	AwayTeam string `json:"away_team" validate:"required,max=100,nefield=HomeTeam"`
	Neutral  bool   `json:"neutral"`
}

type predictSeasonRequest struct {
	Trials int     `json:"trials" validate:"omitempty,min=1"`
	Seed   *uint64 `json:"seed"`
}

type matchDTO struct {
	ID         string    `json:"id"`
	Position   int       `json:"position"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	HomeGoals  int       `json:"home_goals"`
	AwayGoals  int       `json:"away_goals"`
	Neutral    bool      `json:"neutral"`
	Outcome    string    `json:"outcome"`
	RecordedAt time.Time `json:"recorded_at"`
}

type ratingChangeDTO struct {
	HomeBefore float64 `json:"home_before"`
	AwayBefore float64 `json:"away_before"`
	HomeAfter  float64 `json:"home_after"`
	AwayAfter  float64 `json:"away_after"`
	DeltaHome  float64 `json:"delta_home"`
	DeltaAway  float64 `json:"delta_away"`
	KHome      float64 `json:"k_home"`
	KAway      float64 `json:"k_away"`
	Multiplier float64 `json:"margin_multiplier"`

	// Pre-match probabilities in percent.
	HomeWinPercent float64 `json:"home_win_percent"`
	DrawPercent    float64 `json:"draw_percent"`
	AwayWinPercent float64 `json:"away_win_percent"`
}

type historyEntryDTO struct {
	Match  matchDTO        `json:"match"`
	Rating ratingChangeDTO `json:"rating"`
}

type rankingDTO struct {
	Rank          int     `json:"rank"`
	Team          string  `json:"team"`
	Rating        float64 `json:"rating"`
	MatchesPlayed int     `json:"matches_played"`
	Status        string  `json:"status"`
}

type standingDTO struct {
	Position       int     `json:"position"`
	TeamID         string  `json:"team_id"`
	Team           string  `json:"team"`
	Played         int     `json:"played"`
	Won            int     `json:"won"`
	Draw           int     `json:"draw"`
	Lost           int     `json:"lost"`
	GoalsFor       int     `json:"goals_for"`
	GoalsAgainst   int     `json:"goals_against"`
	GoalDifference int     `json:"goal_difference"`
	Points         int     `json:"points"`
	Form           string  `json:"form"`
	Rating         float64 `json:"rating"`
}

type teamDetailDTO struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Rank          int         `json:"rank"`
	Rating        float64     `json:"rating"`
	MatchesPlayed int         `json:"matches_played"`
	Status        string      `json:"status"`
	Standing      standingDTO `json:"standing"`
}

type fixtureDTO struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Neutral  bool   `json:"neutral"`
}

type progressDTO struct {
	Teams           int     `json:"teams"`
	MatchesPerTeam  int     `json:"matches_per_team"`
	TotalMatches    int     `json:"total_matches"`
	PlayedMatches   int     `json:"played_matches"`
	RemainingCount  int     `json:"remaining_matches"`
	PercentComplete float64 `json:"percent_complete"`
}

type remainingFixturesDTO struct {
	Progress progressDTO  `json:"progress"`
	Fixtures []fixtureDTO `json:"fixtures"`
}

type matchSideDTO struct {
	Team          string  `json:"team"`
	Rating        float64 `json:"rating"`
	MatchesPlayed int     `json:"matches_played"`
	Status        string  `json:"status"`
	Known         bool    `json:"known"`
}

type matchPredictionDTO struct {
	Home           matchSideDTO `json:"home"`
	Away           matchSideDTO `json:"away"`
	Neutral        bool         `json:"neutral"`
	RatingDiff     float64      `json:"rating_diff"`
	HomeWinPercent float64      `json:"home_win_percent"`
	DrawPercent    float64      `json:"draw_percent"`
	AwayWinPercent float64      `json:"away_win_percent"`
	Provisional    bool         `json:"provisional"`
}

type teamOutcomeDTO struct {
	Team                string    `json:"team"`
	Rating              float64   `json:"rating"`
	CurrentPosition     int       `json:"current_position"`
	CurrentPoints       int       `json:"current_points"`
	AveragePosition     float64   `json:"average_position"`
	MostLikelyPosition  int       `json:"most_likely_position"`
	PositionPercentages []float64 `json:"position_percentages"`
	AveragePoints       float64   `json:"average_points"`
	MinPoints           int       `json:"min_points"`
	MaxPoints           int       `json:"max_points"`
	TitlePercent        float64   `json:"title_percent"`
}

type seasonForecastDTO struct {
	Version  uint64           `json:"version"`
	Trials   int              `json:"trials"`
	Seed     uint64           `json:"seed"`
	Fixtures int              `json:"remaining_fixtures"`
	Complete bool             `json:"complete"`
	Progress progressDTO      `json:"progress"`
	Teams    []teamOutcomeDTO `json:"teams"`
}

type backupDTO struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`

	// Matches is -1 when the backup could not be read.
	Matches int `json:"matches"`
}

type restoreResultDTO struct {
	Restored     string    `json:"restored"`
	Matches      int       `json:"matches"`
	SafetyBackup backupDTO `json:"safety_backup"`
}

func matchToDTO(rec match.Record) matchDTO {
	return matchDTO{
		ID:         rec.ID,
		Position:   rec.Position,
		HomeTeam:   rec.HomeTeam,
		AwayTeam:   rec.AwayTeam,
		HomeGoals:  rec.HomeGoals,
		AwayGoals:  rec.AwayGoals,
		Neutral:    rec.Neutral,
		Outcome:    rec.Outcome().String(),
		RecordedAt: rec.RecordedAt,
	}
}

func historyEntryToDTO(entry usecase.HistoryEntry) historyEntryDTO {
	eval := entry.Evaluation
	pct := eval.Probabilities.Percentages()
	return historyEntryDTO{
		Match: matchToDTO(entry.Record),
		Rating: ratingChangeDTO{
			HomeBefore:     rating.Round1(eval.HomeBefore),
			AwayBefore:     rating.Round1(eval.AwayBefore),
			HomeAfter:      rating.Round1(eval.HomeAfter),
			AwayAfter:      rating.Round1(eval.AwayAfter),
			DeltaHome:      rating.Round1(eval.DeltaHome),
			DeltaAway:      rating.Round1(eval.DeltaAway),
			KHome:          eval.KHome,
			KAway:          eval.KAway,
			Multiplier:     eval.Multiplier,
			HomeWinPercent: pct.HomeWin,
			DrawPercent:    pct.Draw,
			AwayWinPercent: pct.AwayWin,
		},
	}
}

func rankingToDTO(r rating.Ranking) rankingDTO {
	return rankingDTO{
		Rank:          r.Rank,
		Team:          r.Name,
		Rating:        rating.Round1(r.Rating),
		MatchesPlayed: r.MatchesPlayed,
		Status:        r.Status,
	}
}

func standingToDTO(s leaguestanding.Standing) standingDTO {
	return standingDTO{
		Position:       s.Position,
		TeamID:         s.TeamID,
		Team:           s.TeamName,
		Played:         s.Played,
		Won:            s.Won,
		Draw:           s.Draw,
		Lost:           s.Lost,
		GoalsFor:       s.GoalsFor,
		GoalsAgainst:   s.GoalsAgainst,
		GoalDifference: s.GoalDifference,
		Points:         s.Points,
		Form:           s.Form,
		Rating:         s.Rating,
	}
}

func teamDetailToDTO(d usecase.TeamDetail) teamDetailDTO {
	return teamDetailDTO{
		ID:            d.ID,
		Name:          d.Name,
		Rank:          d.Rank,
		Rating:        d.Rating,
		MatchesPlayed: d.MatchesPlayed,
		Status:        d.Status,
		Standing:      standingToDTO(d.Standing),
	}
}

func progressToDTO(p fixture.Progress) progressDTO {
	return progressDTO{
		Teams:           p.Teams,
		MatchesPerTeam:  p.MatchesPerTeam,
		TotalMatches:    p.TotalMatches,
		PlayedMatches:   p.PlayedMatches,
		RemainingCount:  p.RemainingCount,
		PercentComplete: p.PercentComplete,
	}
}

func remainingFixturesToDTO(rf usecase.RemainingFixtures) remainingFixturesDTO {
	items := make([]fixtureDTO, 0, len(rf.Fixtures))
	for _, f := range rf.Fixtures {
		items = append(items, fixtureDTO{HomeTeam: f.HomeTeam, AwayTeam: f.AwayTeam, Neutral: f.Neutral})
	}
	return remainingFixturesDTO{Progress: progressToDTO(rf.Progress), Fixtures: items}
}

func matchSideToDTO(side usecase.MatchSide) matchSideDTO {
	return matchSideDTO{
		Team:          side.Name,
		Rating:        rating.Round1(side.Rating),
		MatchesPlayed: side.MatchesPlayed,
		Status:        side.Status,
		Known:         side.Known,
	}
}

func matchPredictionToDTO(p usecase.MatchPrediction) matchPredictionDTO {
	return matchPredictionDTO{
		Home:           matchSideToDTO(p.Home),
		Away:           matchSideToDTO(p.Away),
		Neutral:        p.Neutral,
		RatingDiff:     rating.Round1(p.Triple.RatingDiff),
		HomeWinPercent: p.Percentages.HomeWin,
		DrawPercent:    p.Percentages.Draw,
		AwayWinPercent: p.Percentages.AwayWin,
		Provisional:    p.Provisional,
	}
}

func seasonForecastToDTO(f usecase.SeasonForecast) seasonForecastDTO {
	teams := make([]teamOutcomeDTO, 0, len(f.Result.Teams))
	for _, t := range f.Result.Teams {
		teams = append(teams, teamOutcomeToDTO(t))
	}
	return seasonForecastDTO{
		Version:  f.Version,
		Trials:   f.Result.Trials,
		Seed:     f.Result.Seed,
		Fixtures: f.Result.Fixtures,
		Complete: f.Complete,
		Progress: progressToDTO(f.Progress),
		Teams:    teams,
	}
}

func teamOutcomeToDTO(t simulation.TeamOutcome) teamOutcomeDTO {
	return teamOutcomeDTO{
		Team:                t.Name,
		Rating:              rating.Round1(t.Rating),
		CurrentPosition:     t.CurrentPosition,
		CurrentPoints:       t.CurrentPoints,
		AveragePosition:     t.AveragePosition,
		MostLikelyPosition:  t.MostLikelyPosition,
		PositionPercentages: t.PositionPercentages,
		AveragePoints:       t.AveragePoints,
		MinPoints:           t.MinPoints,
		MaxPoints:           t.MaxPoints,
		TitlePercent:        t.TitlePercent,
	}
}

func backupToDTO(b backup.Backup) backupDTO {
	return backupDTO{
		Name:      b.Name,
		CreatedAt: b.CreatedAt,
		SizeBytes: b.SizeBytes,
		Matches:   b.Matches,
	}
}
