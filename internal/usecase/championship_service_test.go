package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/riskibarqy/elo-championship/internal/domain/match"
	"github.com/riskibarqy/elo-championship/internal/domain/rating"
	"github.com/riskibarqy/elo-championship/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/elo-championship/internal/platform/id"
	"github.com/riskibarqy/elo-championship/internal/platform/logging"
	matchmock "github.com/riskibarqy/elo-championship/internal/mocks/domain/match"
	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newTestChampionship(t *testing.T, repo match.Repository) *ChampionshipService {
	t.Helper()

	engine, err := rating.NewEngine(rating.DefaultParams())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	svc := NewChampionshipService(engine, repo, &idgen.Sequence{Prefix: "m-"}, logging.NewNop())
	svc.now = func() time.Time { return fixedNow }
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return svc
}

func record(t *testing.T, svc *ChampionshipService, home, away string, hg, ag int) HistoryEntry {
	t.Helper()

	entry, err := svc.RecordMatch(context.Background(), MatchInput{HomeTeam: home, AwayTeam: away, HomeGoals: hg, AwayGoals: ag})
	if err != nil {
		t.Fatalf("record %s-%s: %v", home, away, err)
	}
	return entry
}

func TestChampionshipService_RecordMatchUpdatesRatings(t *testing.T) {
	t.Parallel()

	repo := memory.NewMatchRepository(nil)
	svc := newTestChampionship(t, repo)

	entry := record(t, svc, "  Home  FC ", "Away", 2, 0)
	if entry.Record.ID != "m-1" || entry.Record.Position != 1 || entry.Record.HomeTeam != "Home FC" {
		t.Fatalf("unexpected record: %+v", entry.Record)
	}
	if !entry.Record.RecordedAt.Equal(fixedNow) {
		t.Fatalf("unexpected recorded at: %v", entry.Record.RecordedAt)
	}
	if math.Abs(entry.Evaluation.HomeAfter-1527.0) > 0.1 {
		t.Fatalf("home rating got=%.2f want~1527", entry.Evaluation.HomeAfter)
	}

	rankings := svc.Rankings(context.Background())
	if len(rankings) != 2 || rankings[0].Name != "Home FC" || rankings[0].Status != "Provisional" {
		t.Fatalf("unexpected rankings: %+v", rankings)
	}

	stored, _ := repo.Load(context.Background())
	if len(stored) != 1 {
		t.Fatalf("expected log to be persisted, got %d records", len(stored))
	}
	if svc.Version() != 2 {
		t.Fatalf("expected version 2 after load and one commit, got %d", svc.Version())
	}
}

func TestChampionshipService_RejectsInvalidMatch(t *testing.T) {
	t.Parallel()

	svc := newTestChampionship(t, memory.NewMatchRepository(nil))
	before := svc.Version()

	_, err := svc.RecordMatch(context.Background(), MatchInput{HomeTeam: "A", AwayTeam: "A"})
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, match.ErrInvalidMatchFact) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	_, err = svc.RecordMatch(context.Background(), MatchInput{HomeTeam: "A", AwayTeam: "B", HomeGoals: -1})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative goals, got %v", err)
	}
	if svc.Version() != before {
		t.Fatalf("rejected matches must not change state")
	}
}

func TestChampionshipService_InsertEditDeleteUndo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestChampionship(t, memory.NewMatchRepository(nil))
	record(t, svc, "A", "B", 1, 0)
	record(t, svc, "B", "C", 2, 2)

	inserted, err := svc.RecordMatch(ctx, MatchInput{HomeTeam: "C", AwayTeam: "A", HomeGoals: 3, AwayGoals: 1, Position: 1})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if inserted.Record.Position != 1 {
		t.Fatalf("expected inserted at position 1, got %d", inserted.Record.Position)
	}
	history := svc.History(ctx, 0)
	if len(history) != 3 || history[0].Record.HomeTeam != "B" || history[2].Record.HomeTeam != "C" {
		t.Fatalf("unexpected history order: %+v", history)
	}

	edited, err := svc.EditMatch(ctx, 2, MatchInput{HomeTeam: "A", AwayTeam: "B", HomeGoals: 0, AwayGoals: 4})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Record.ID != "m-1" || edited.Record.AwayGoals != 4 {
		t.Fatalf("edit must keep identity: %+v", edited.Record)
	}

	if _, err := svc.DeleteMatch(ctx, 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown position, got %v", err)
	}
	removed, err := svc.DeleteMatch(ctx, 1)
	if err != nil || removed.HomeTeam != "C" {
		t.Fatalf("delete: removed=%+v err=%v", removed, err)
	}

	undone, err := svc.UndoLastMatch(ctx)
	if err != nil || undone.HomeTeam != "B" {
		t.Fatalf("undo: removed=%+v err=%v", undone, err)
	}
	history = svc.History(ctx, 5)
	if len(history) != 1 || history[0].Record.Position != 1 {
		t.Fatalf("unexpected history after undo: %+v", history)
	}

	if _, err := svc.UndoLastMatch(ctx); err != nil {
		t.Fatalf("undo last remaining: %v", err)
	}
	if _, err := svc.UndoLastMatch(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on empty log, got %v", err)
	}
}

func TestChampionshipService_EditMatchesDeleteThenInsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	edited := newTestChampionship(t, memory.NewMatchRepository(nil))
	rebuilt := newTestChampionship(t, memory.NewMatchRepository(nil))
	for _, svc := range []*ChampionshipService{edited, rebuilt} {
		record(t, svc, "A", "B", 1, 0)
		record(t, svc, "B", "C", 0, 0)
		record(t, svc, "C", "A", 2, 1)
	}

	if _, err := edited.EditMatch(ctx, 2, MatchInput{HomeTeam: "B", AwayTeam: "C", HomeGoals: 3, AwayGoals: 0}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := rebuilt.DeleteMatch(ctx, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := rebuilt.RecordMatch(ctx, MatchInput{HomeTeam: "B", AwayTeam: "C", HomeGoals: 3, AwayGoals: 0, Position: 2}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	a, b := edited.Rankings(ctx), rebuilt.Rankings(ctx)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("rankings differ at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestChampionshipService_RenameTeam(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestChampionship(t, memory.NewMatchRepository(nil))
	record(t, svc, "Arsenal", "Chelsea", 1, 0)
	record(t, svc, "Chelsea", "Spurs", 2, 1)
	before := svc.Rankings(ctx)

	detail, err := svc.RenameTeam(ctx, "chelsea", "Chelsea FC")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if detail.Name != "Chelsea FC" || detail.ID != "chelsea-fc" || detail.MatchesPlayed != 2 {
		t.Fatalf("unexpected detail: %+v", detail)
	}

	after := svc.Rankings(ctx)
	for i := range before {
		if before[i].Rating != after[i].Rating {
			t.Fatalf("rename must not change ratings: %+v vs %+v", before[i], after[i])
		}
	}

	if _, err := svc.RenameTeam(ctx, "spurs", "Arsenal"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := svc.RenameTeam(ctx, "missing", "Other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.RenameTeam(ctx, "spurs", "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestChampionshipService_RejectsTeamIDCollisions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestChampionship(t, memory.NewMatchRepository(nil))
	record(t, svc, "São Paulo", "Flamengo", 2, 1)
	record(t, svc, "Flamengo", "Santos", 0, 0)
	version := svc.Version()

	_, err := svc.RecordMatch(ctx, MatchInput{HomeTeam: "Sao Paulo", AwayTeam: "Santos", HomeGoals: 1})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("record: expected conflict, got %v", err)
	}
	if _, err := svc.EditMatch(ctx, 2, MatchInput{HomeTeam: "Flamengo", AwayTeam: "SAO PAULO"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("edit: expected conflict, got %v", err)
	}
	if _, err := svc.RenameTeam(ctx, "santos", "Sao  Paulo!"); !errors.Is(err, ErrConflict) {
		t.Fatalf("rename: expected conflict, got %v", err)
	}
	if svc.Version() != version || len(svc.History(ctx, 0)) != 2 {
		t.Fatalf("rejected changes must not be committed")
	}

	detail, err := svc.RenameTeam(ctx, "sao-paulo", "Sao Paulo")
	if err != nil {
		t.Fatalf("renaming a team to a variant of its own id: %v", err)
	}
	if detail.ID != "sao-paulo" || detail.Name != "Sao Paulo" || detail.MatchesPlayed != 1 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
}

func TestChampionshipService_TeamAndStandings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestChampionship(t, memory.NewMatchRepository(nil))
	record(t, svc, "Arsenal", "Chelsea", 3, 0)

	standings := svc.Standings(ctx)
	if len(standings) != 2 || standings[0].TeamName != "Arsenal" || standings[0].Points != 3 {
		t.Fatalf("unexpected standings: %+v", standings)
	}
	if standings[0].Rating <= 1500 || standings[1].Rating >= 1500 {
		t.Fatalf("expected rating column filled: %+v", standings)
	}

	detail, err := svc.Team(ctx, "arsenal")
	if err != nil {
		t.Fatalf("team: %v", err)
	}
	if detail.Rank != 1 || detail.Standing.Position != 1 || detail.Standing.GoalsFor != 3 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if _, err := svc.Team(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestChampionshipService_SaveFailureKeepsState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	repo.On("Load", mock.Anything).Return([]match.Record(nil), nil).Once()
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	svc := newTestChampionship(t, repo)
	version := svc.Version()

	_, err := svc.RecordMatch(ctx, MatchInput{HomeTeam: "A", AwayTeam: "B", HomeGoals: 1})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if svc.Version() != version || len(svc.History(ctx, 0)) != 0 || len(svc.Rankings(ctx)) != 0 {
		t.Fatalf("failed save must leave state unchanged")
	}
}

func TestChampionshipService_LoadRebuildsFromRepository(t *testing.T) {
	t.Parallel()

	stored := []match.Record{
		{ID: "x", Position: 7, RecordedAt: fixedNow.Add(-time.Hour), Fact: match.Fact{HomeTeam: "A", AwayTeam: "B", HomeGoals: 2}},
		{ID: "y", Position: 9, RecordedAt: fixedNow, Fact: match.Fact{HomeTeam: "B", AwayTeam: "A", AwayGoals: 1}},
	}
	repo := matchmock.NewRepository(t)
	repo.On("Load", mock.Anything).Return(stored, nil).Once()

	svc := newTestChampionship(t, repo)
	history := svc.History(context.Background(), 0)
	if len(history) != 2 || history[0].Record.ID != "y" || history[0].Record.Position != 2 {
		t.Fatalf("unexpected history: %+v", history)
	}
	if got := svc.Export(context.Background()).LastUpdated; !got.Equal(fixedNow) {
		t.Fatalf("last updated got=%v want=%v", got, fixedNow)
	}
}

func TestChampionshipService_LoadFailure(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	repo.On("Load", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	engine, _ := rating.NewEngine(rating.DefaultParams())
	svc := NewChampionshipService(engine, repo, idgen.NewUUIDGenerator(), logging.NewNop())
	if err := svc.Load(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestChampionshipService_ReplaceLogValidates(t *testing.T) {
	t.Parallel()

	svc := newTestChampionship(t, memory.NewMatchRepository(nil))
	err := svc.ReplaceLog(context.Background(), []match.Record{{ID: "x", Fact: match.Fact{HomeTeam: "A", AwayTeam: ""}}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
