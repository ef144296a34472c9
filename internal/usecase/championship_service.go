package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/elo-championship/internal/domain/backup"
	"github.com/riskibarqy/elo-championship/internal/domain/leaguestanding"
	"github.com/riskibarqy/elo-championship/internal/domain/match"
	"github.com/riskibarqy/elo-championship/internal/domain/rating"
	"github.com/riskibarqy/elo-championship/internal/domain/team"
	idgen "github.com/riskibarqy/elo-championship/internal/platform/id"
	"github.com/riskibarqy/elo-championship/internal/platform/logging"
)

// MatchInput is the incoming payload for recording or editing a match.
type MatchInput struct {
	HomeTeam  string
	AwayTeam  string
	HomeGoals int
	AwayGoals int
	Neutral   bool
	// Position inserts the match at a 1-based position instead of appending.
	// Ignored by edits.
	Position int
}

func (in MatchInput) fact() match.Fact {
	return match.Fact{
		HomeTeam:  in.HomeTeam,
		AwayTeam:  in.AwayTeam,
		HomeGoals: in.HomeGoals,
		AwayGoals: in.AwayGoals,
		Neutral:   in.Neutral,
	}
}

// HistoryEntry pairs a stored record with what the rating fold computed for
// it.
type HistoryEntry struct {
	Record     match.Record
	Evaluation rating.MatchEvaluation
}

// TeamDetail is the rating and table view of one team.
type TeamDetail struct {
	ID            string
	Name          string
	Rank          int
	Rating        float64
	MatchesPlayed int
	Status        string
	Standing      leaguestanding.Standing
}

// championshipState is one consistent view of the log and everything derived
// from it. It is never mutated after publication.
type championshipState struct {
	version     uint64
	log         match.Log
	snapshot    rating.Snapshot
	standings   []leaguestanding.Standing
	lastUpdated time.Time
}

// ChampionshipService owns the match log. Writers are serialized; readers
// load the current state without locking.
type ChampionshipService struct {
	engine *rating.Engine
	repo   match.Repository
	idGen  idgen.Generator
	logger *logging.Logger
	now    func() time.Time

	mu    sync.Mutex
	state atomic.Pointer[championshipState]
}

func NewChampionshipService(
	engine *rating.Engine,
	repo match.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *ChampionshipService {
	if logger == nil {
		logger = logging.Default()
	}

	s := &ChampionshipService{
		engine: engine,
		repo:   repo,
		idGen:  idGen,
		logger: logger.Named("championship"),
		now:    time.Now,
	}
	empty, _ := engine.Recompute(nil)
	s.state.Store(&championshipState{snapshot: empty})
	return s
}

// Load reads the stored log and rebuilds every derived value.
func (s *ChampionshipService) Load(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChampionshipService.Load")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: load match log: %w", ErrDependencyUnavailable, err)
	}

	log := match.NewLog(records)
	next, err := s.derive(log, latestRecordedAt(records))
	if err != nil {
		return err
	}
	s.publish(next)

	s.logger.InfoContext(ctx, "match log loaded", "matches", log.Len(), "teams", len(log.Teams()))
	return nil
}

func (s *ChampionshipService) current() *championshipState {
	return s.state.Load()
}

// Version increases with every committed change.
func (s *ChampionshipService) Version() uint64 {
	return s.current().version
}

func (s *ChampionshipService) RecordMatch(ctx context.Context, input MatchInput) (HistoryEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChampionshipService.RecordMatch")
	defer span.End()

	id, err := s.idGen.NewID()
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("generate match id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current()
	position := input.Position
	if position == 0 {
		position = cur.log.Len() + 1
	}
	nextLog, rec, err := cur.log.Insert(position, id, input.fact(), s.now().UTC())
	if err != nil {
		return HistoryEntry{}, classify(err)
	}

	next, err := s.commit(ctx, nextLog)
	if err != nil {
		return HistoryEntry{}, err
	}
	s.logger.InfoContext(ctx, "match recorded",
		"match_id", rec.ID,
		"position", rec.Position,
		"home_team", rec.HomeTeam,
		"away_team", rec.AwayTeam,
	)
	return next.entry(rec.Position), nil
}

func (s *ChampionshipService) EditMatch(ctx context.Context, position int, input MatchInput) (HistoryEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChampionshipService.EditMatch", attribute.Int("match.position", position))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	nextLog, rec, err := s.current().log.Replace(position, input.fact())
	if err != nil {
		return HistoryEntry{}, classify(err)
	}

	next, err := s.commit(ctx, nextLog)
	if err != nil {
		return HistoryEntry{}, err
	}
	s.logger.InfoContext(ctx, "match edited", "match_id", rec.ID, "position", position)
	return next.entry(rec.Position), nil
}

func (s *ChampionshipService) DeleteMatch(ctx context.Context, position int) (match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChampionshipService.DeleteMatch", attribute.Int("match.position", position))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteLocked(ctx, position)
}

// UndoLastMatch removes the most recent match.
func (s *ChampionshipService) UndoLastMatch(ctx context.Context) (match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChampionshipService.UndoLastMatch")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.current().log.Last()
	if !ok {
		return match.Record{}, fmt.Errorf("%w: no matches recorded", ErrNotFound)
	}
	return s.deleteLocked(ctx, last.Position)
}

func (s *ChampionshipService) deleteLocked(ctx context.Context, position int) (match.Record, error) {
	nextLog, removed, err := s.current().log.Delete(position)
	if err != nil {
		return match.Record{}, classify(err)
	}
	if _, err := s.commit(ctx, nextLog); err != nil {
		return match.Record{}, err
	}
	s.logger.InfoContext(ctx, "match deleted", "match_id", removed.ID, "position", position)
	return removed, nil
}

// RenameTeam rewrites every match of a team under a new name. The new name
// must not belong to another team.
func (s *ChampionshipService) RenameTeam(ctx context.Context, teamID, newName string) (TeamDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChampionshipService.RenameTeam", attribute.String("team.id", teamID))
	defer span.End()

	newName = team.NormalizeName(newName)
	if newName == "" {
		return TeamDetail{}, fmt.Errorf("%w: new team name is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current()
	oldName, ok := cur.teamNameByID(teamID)
	if !ok {
		return TeamDetail{}, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
	}
	if oldName == newName {
		return TeamDetail{}, fmt.Errorf("%w: team is already named %q", ErrInvalidInput, newName)
	}
	if cur.log.HasTeam(newName) {
		return TeamDetail{}, fmt.Errorf("%w: team %q already exists", ErrConflict, newName)
	}

	nextLog, changed, err := cur.log.RenameTeam(oldName, newName)
	if err != nil {
		return TeamDetail{}, classify(err)
	}
	next, err := s.commit(ctx, nextLog)
	if err != nil {
		return TeamDetail{}, err
	}

	s.logger.InfoContext(ctx, "team renamed", "from", oldName, "to", newName, "matches", changed)
	detail, _ := next.team(team.IDFromName(newName))
	return detail, nil
}

// ReplaceLog swaps the whole log, as done by restore and reset.
func (s *ChampionshipService) ReplaceLog(ctx context.Context, records []match.Record) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChampionshipService.ReplaceLog")
	defer span.End()

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return classify(err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.commit(ctx, match.NewLog(records))
	return err
}

// Export returns the current log in backup form.
func (s *ChampionshipService) Export(_ context.Context) backup.Snapshot {
	cur := s.current()
	return backup.Snapshot{Records: cur.log.Records(), LastUpdated: cur.lastUpdated}
}

// History lists matches most recent first. A non-positive limit returns all.
func (s *ChampionshipService) History(_ context.Context, limit int) []HistoryEntry {
	cur := s.current()
	n := cur.log.Len()
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]HistoryEntry, 0, limit)
	for pos := n; pos > n-limit; pos-- {
		out = append(out, cur.entry(pos))
	}
	return out
}

func (s *ChampionshipService) Rankings(_ context.Context) []rating.Ranking {
	return s.current().snapshot.Rankings()
}

func (s *ChampionshipService) Standings(_ context.Context) []leaguestanding.Standing {
	cur := s.current()
	out := make([]leaguestanding.Standing, len(cur.standings))
	copy(out, cur.standings)
	return out
}

func (s *ChampionshipService) Team(_ context.Context, teamID string) (TeamDetail, error) {
	detail, ok := s.current().team(teamID)
	if !ok {
		return TeamDetail{}, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
	}
	return detail, nil
}

// commit checks team ids, then recomputes, persists and publishes nextLog.
// Nothing changes when any step fails. Callers hold s.mu.
func (s *ChampionshipService) commit(ctx context.Context, nextLog match.Log) (*championshipState, error) {
	if clash, ok := team.FindIDCollision(nextLog.Teams()); ok {
		return nil, fmt.Errorf("%w: team %q has the same id %q as %q", ErrConflict, clash.Second, clash.ID, clash.First)
	}
	next, err := s.derive(nextLog, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, nextLog.Records()); err != nil {
		s.logger.ErrorContext(ctx, "persist match log failed", "error", err)
		return nil, fmt.Errorf("%w: save match log: %w", ErrDependencyUnavailable, err)
	}
	s.publish(next)
	return next, nil
}

func (s *ChampionshipService) derive(log match.Log, lastUpdated time.Time) (*championshipState, error) {
	records := log.Records()
	snapshot, err := s.engine.Recompute(records)
	if err != nil {
		return nil, fmt.Errorf("recompute ratings: %w", err)
	}

	standings := leaguestanding.Table(records)
	for i := range standings {
		standings[i].Rating = rating.Round1(snapshot.Rating(standings[i].TeamName))
	}

	return &championshipState{
		log:         log,
		snapshot:    snapshot,
		standings:   standings,
		lastUpdated: lastUpdated,
	}, nil
}

func (s *ChampionshipService) publish(next *championshipState) {
	next.version = s.current().version + 1
	s.state.Store(next)
}

func (st *championshipState) entry(position int) HistoryEntry {
	rec, _ := st.log.At(position)
	evals := st.snapshot.Evaluations()
	var eval rating.MatchEvaluation
	if position >= 1 && position <= len(evals) {
		eval = evals[position-1]
	}
	return HistoryEntry{Record: rec, Evaluation: eval}
}

func (st *championshipState) teamNameByID(teamID string) (string, bool) {
	for _, name := range st.log.Teams() {
		if team.IDFromName(name) == teamID || name == teamID {
			return name, true
		}
	}
	return "", false
}

func (st *championshipState) team(teamID string) (TeamDetail, bool) {
	name, ok := st.teamNameByID(teamID)
	if !ok {
		return TeamDetail{}, false
	}

	detail := TeamDetail{ID: team.IDFromName(name), Name: name}
	for _, r := range st.snapshot.Rankings() {
		if r.Name == name {
			detail.Rank = r.Rank
			detail.Rating = r.Rating
			detail.MatchesPlayed = r.MatchesPlayed
			detail.Status = r.Status
			break
		}
	}
	for _, row := range st.standings {
		if row.TeamName == name {
			detail.Standing = row
			break
		}
	}
	return detail, true
}

func latestRecordedAt(records []match.Record) time.Time {
	var latest time.Time
	for _, rec := range records {
		if rec.RecordedAt.After(latest) {
			latest = rec.RecordedAt
		}
	}
	return latest
}
