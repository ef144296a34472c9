package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/elo-championship/internal/domain/backup"
	"github.com/riskibarqy/elo-championship/internal/domain/match"
	"github.com/riskibarqy/elo-championship/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/elo-championship/internal/platform/logging"
	backupmock "github.com/riskibarqy/elo-championship/internal/mocks/domain/backup"
	"github.com/stretchr/testify/mock"
)

func newTestBackups(t *testing.T, champ *ChampionshipService, repo backup.Repository) *BackupService {
	t.Helper()

	svc := NewBackupService(champ, repo, logging.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestBackupService_CreateNamesAreUnique(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	champ := newTestChampionship(t, memory.NewMatchRepository(nil))
	record(t, champ, "A", "B", 1, 0)
	svc := newTestBackups(t, champ, memory.NewBackupRepository())

	first, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.Name != "backup_20261019_090000.json" || second.Name != "backup_20261019_090000_2.json" {
		t.Fatalf("unexpected names: %s %s", first.Name, second.Name)
	}
	if first.Matches != 1 {
		t.Fatalf("unexpected match count: %d", first.Matches)
	}

	list, err := svc.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %+v err=%v", list, err)
	}
}

func TestBackupService_RestoreBacksUpFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	champ := newTestChampionship(t, memory.NewMatchRepository(nil))
	repo := memory.NewBackupRepository()
	svc := newTestBackups(t, champ, repo)

	record(t, champ, "A", "B", 1, 0)
	saved, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	record(t, champ, "B", "C", 2, 0)
	record(t, champ, "C", "A", 0, 0)

	svc.now = func() time.Time { return fixedNow.Add(time.Minute) }
	got, err := svc.Restore(ctx, saved.Name)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got.Matches != 1 || got.SafetyBackup.Matches != 3 {
		t.Fatalf("unexpected restore result: %+v", got)
	}
	if len(champ.History(ctx, 0)) != 1 {
		t.Fatalf("log not restored")
	}

	safety, err := repo.Load(ctx, got.SafetyBackup.Name)
	if err != nil || len(safety.Records) != 3 {
		t.Fatalf("safety backup missing: %+v err=%v", safety, err)
	}
}

func TestBackupService_RestoreErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	champ := newTestChampionship(t, memory.NewMatchRepository(nil))
	svc := newTestBackups(t, champ, memory.NewBackupRepository())

	if _, err := svc.Restore(ctx, "../../etc/passwd"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := svc.Restore(ctx, "backup_20200101_000000.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBackupService_ResetClearsAfterBackup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	champ := newTestChampionship(t, memory.NewMatchRepository(nil))
	record(t, champ, "A", "B", 1, 0)

	repo := backupmock.NewRepository(t)
	repo.
		On("Save", mock.Anything, "backup_20261019_090000.json", mock.MatchedBy(func(s backup.Snapshot) bool {
			return len(s.Records) == 1 && s.Records[0].HomeTeam == "A"
		})).
		Return(backup.Backup{Name: "backup_20261019_090000.json", Matches: 1}, nil).
		Once()
	svc := newTestBackups(t, champ, repo)

	safety, err := svc.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if safety.Matches != 1 {
		t.Fatalf("unexpected safety backup: %+v", safety)
	}
	if len(champ.History(ctx, 0)) != 0 || len(champ.Rankings(ctx)) != 0 {
		t.Fatalf("reset must clear the log")
	}
}

func TestBackupService_ResetAbortsWhenBackupFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	champ := newTestChampionship(t, memory.NewMatchRepository(nil))
	record(t, champ, "A", "B", 1, 0)

	repo := backupmock.NewRepository(t)
	repo.On("Save", mock.Anything, mock.Anything, mock.Anything).
		Return(backup.Backup{}, errors.New("bucket unavailable")).
		Once()
	svc := newTestBackups(t, champ, repo)

	if _, err := svc.Reset(ctx); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(champ.History(ctx, 0)) != 1 {
		t.Fatalf("log must survive a failed reset")
	}
}

func TestBackupService_ScheduledBackupSkipsUnchangedLog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	champ := newTestChampionship(t, memory.NewMatchRepository(nil))
	repo := memory.NewBackupRepository()
	svc := newTestBackups(t, champ, repo)

	svc.backupIfChanged(ctx)
	svc.backupIfChanged(ctx)
	list, _ := repo.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected one backup for an unchanged log, got %d", len(list))
	}

	record(t, champ, "A", "B", 1, 0)
	svc.backupIfChanged(ctx)
	list, _ = repo.List(ctx)
	if len(list) != 2 {
		t.Fatalf("expected a new backup after a change, got %d", len(list))
	}
}

func TestBackupService_ScheduleSkipsLogLoadedAtStartup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seeded := memory.NewMatchRepository([]match.Record{
		{ID: "m-1", Position: 1, RecordedAt: fixedNow, Fact: match.Fact{HomeTeam: "A", AwayTeam: "B", HomeGoals: 1}},
	})
	champ := newTestChampionship(t, seeded)
	repo := memory.NewBackupRepository()
	svc := newTestBackups(t, champ, repo)

	stop, err := svc.StartSchedule(time.Hour)
	if err != nil {
		t.Fatalf("start schedule: %v", err)
	}
	defer func() { _ = stop() }()

	svc.backupIfChanged(ctx)
	if list, _ := repo.List(ctx); len(list) != 0 {
		t.Fatalf("unchanged startup log must not be backed up, got %d", len(list))
	}

	record(t, champ, "B", "A", 2, 2)
	svc.backupIfChanged(ctx)
	if list, _ := repo.List(ctx); len(list) != 1 {
		t.Fatalf("expected one backup after a change, got %d", len(list))
	}
}

func TestBackupService_StartScheduleRejectsZeroInterval(t *testing.T) {
	t.Parallel()

	svc := newTestBackups(t, newTestChampionship(t, memory.NewMatchRepository(nil)), memory.NewBackupRepository())
	if _, err := svc.StartSchedule(0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	stop, err := svc.StartSchedule(time.Hour)
	if err != nil {
		t.Fatalf("start schedule: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop schedule: %v", err)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "invalid fact", in: match.ErrInvalidMatchFact, want: ErrInvalidInput},
		{name: "unknown position", in: match.ErrUnknownMatchReference, want: ErrNotFound},
		{name: "missing backup", in: backup.ErrNotFound, want: ErrNotFound},
		{name: "bad backup name", in: backup.ErrInvalidName, want: ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.in)
			if !errors.Is(got, tc.want) || !errors.Is(got, tc.in) {
				t.Fatalf("classify(%v) = %v", tc.in, got)
			}
		})
	}
	if classify(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}
