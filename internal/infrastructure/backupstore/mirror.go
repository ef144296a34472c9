package backupstore

import (
	"context"
	"errors"

	"github.com/riskibarqy/elo-championship/internal/domain/backup"
	"github.com/riskibarqy/elo-championship/internal/platform/logging"
)

// Mirror writes every backup to a primary store and copies it to a
// secondary one. Failures on the secondary never fail the call.
type Mirror struct {
	primary   backup.Repository
	secondary backup.Repository
	logger    *logging.Logger
}

func NewMirror(primary, secondary backup.Repository, logger *logging.Logger) *Mirror {
	if logger == nil {
		logger = logging.Default()
	}
	return &Mirror{primary: primary, secondary: secondary, logger: logger.Named("backup_mirror")}
}

func (m *Mirror) Save(ctx context.Context, name string, snapshot backup.Snapshot) (backup.Backup, error) {
	saved, err := m.primary.Save(ctx, name, snapshot)
	if err != nil {
		return backup.Backup{}, err
	}
	if _, err := m.secondary.Save(ctx, name, snapshot); err != nil {
		m.logger.WarnContext(ctx, "mirror backup failed", "backup", name, "error", err)
	}
	return saved, nil
}

func (m *Mirror) List(ctx context.Context) ([]backup.Backup, error) {
	return m.primary.List(ctx)
}

func (m *Mirror) Load(ctx context.Context, name string) (backup.Snapshot, error) {
	snapshot, err := m.primary.Load(ctx, name)
	if err == nil || !errors.Is(err, backup.ErrNotFound) {
		return snapshot, err
	}

	fallback, ferr := m.secondary.Load(ctx, name)
	if ferr != nil {
		m.logger.WarnContext(ctx, "mirror fallback load failed", "backup", name, "error", ferr)
		return backup.Snapshot{}, err
	}
	return fallback, nil
}
