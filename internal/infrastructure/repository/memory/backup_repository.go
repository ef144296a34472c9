package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/riskibarqy/elo-championship/internal/domain/backup"
)

type storedBackup struct {
	meta     backup.Backup
	snapshot backup.Snapshot
}

// BackupRepository keeps backups in process memory.
type BackupRepository struct {
	mu     sync.RWMutex
	byName map[string]storedBackup
}

func NewBackupRepository() *BackupRepository {
	return &BackupRepository{byName: make(map[string]storedBackup)}
}

func (r *BackupRepository) Save(_ context.Context, name string, snapshot backup.Snapshot) (backup.Backup, error) {
	if err := backup.ValidateName(name); err != nil {
		return backup.Backup{}, err
	}
	createdAt, _ := backup.TimeFromName(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return backup.Backup{}, fmt.Errorf("backup %s already exists", name)
	}

	meta := backup.Backup{Name: name, CreatedAt: createdAt, Matches: len(snapshot.Records)}
	r.byName[name] = storedBackup{
		meta: meta,
		snapshot: backup.Snapshot{
			Records:     slices.Clone(snapshot.Records),
			LastUpdated: snapshot.LastUpdated,
		},
	}
	return meta, nil
}

func (r *BackupRepository) List(_ context.Context) ([]backup.Backup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]backup.Backup, 0, len(r.byName))
	for _, item := range r.byName {
		out = append(out, item.meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func (r *BackupRepository) Load(_ context.Context, name string) (backup.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byName[name]
	if !ok {
		return backup.Snapshot{}, fmt.Errorf("%w: %s", backup.ErrNotFound, name)
	}
	return backup.Snapshot{
		Records:     slices.Clone(item.snapshot.Records),
		LastUpdated: item.snapshot.LastUpdated,
	}, nil
}
