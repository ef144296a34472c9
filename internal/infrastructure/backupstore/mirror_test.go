package backupstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/elo-championship/internal/domain/backup"
	"github.com/riskibarqy/elo-championship/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/elo-championship/internal/platform/logging"
)

type failingStore struct{}

func (failingStore) Save(context.Context, string, backup.Snapshot) (backup.Backup, error) {
	return backup.Backup{}, errors.New("bucket unavailable")
}

func (failingStore) List(context.Context) ([]backup.Backup, error) {
	return nil, errors.New("bucket unavailable")
}

func (failingStore) Load(context.Context, string) (backup.Snapshot, error) {
	return backup.Snapshot{}, errors.New("bucket unavailable")
}

func TestMirror_SaveCopiesToSecondary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	primary := memory.NewBackupRepository()
	secondary := memory.NewBackupRepository()
	mirror := NewMirror(primary, secondary, logging.NewNop())

	name := backup.NameFor(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	if _, err := mirror.Save(ctx, name, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := secondary.Load(ctx, name); err != nil {
		t.Fatalf("secondary copy missing: %v", err)
	}
}

func TestMirror_SecondaryFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	primary := memory.NewBackupRepository()
	mirror := NewMirror(primary, failingStore{}, logging.NewNop())

	name := backup.NameFor(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	if _, err := mirror.Save(ctx, name, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	list, err := mirror.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected list: %+v err=%v", list, err)
	}
}

func TestMirror_LoadFallsBackToSecondary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	primary := memory.NewBackupRepository()
	secondary := memory.NewBackupRepository()
	mirror := NewMirror(primary, secondary, logging.NewNop())

	name := backup.NameFor(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	if _, err := secondary.Save(ctx, name, sampleSnapshot()); err != nil {
		t.Fatalf("seed secondary: %v", err)
	}

	got, err := mirror.Load(ctx, name)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Records) != 2 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}

	missing := backup.NameFor(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	if _, err := mirror.Load(ctx, missing); !errors.Is(err, backup.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
