package backupstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/riskibarqy/elo-championship/internal/domain/backup"
	"github.com/riskibarqy/elo-championship/internal/infrastructure/document"
)

// Local keeps backups as JSON files in one directory.
type Local struct {
	dir string
}

func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

func (l *Local) Save(ctx context.Context, name string, snapshot backup.Snapshot) (backup.Backup, error) {
	if err := backup.ValidateName(name); err != nil {
		return backup.Backup{}, err
	}
	if err := ctx.Err(); err != nil {
		return backup.Backup{}, err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return backup.Backup{}, fmt.Errorf("create backup dir: %w", err)
	}

	path := filepath.Join(l.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return backup.Backup{}, fmt.Errorf("create backup %s: %w", name, err)
	}
	if err := document.Write(f, snapshot); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return backup.Backup{}, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return backup.Backup{}, fmt.Errorf("sync backup %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return backup.Backup{}, fmt.Errorf("close backup %s: %w", name, err)
	}

	return l.describe(name, len(snapshot.Records))
}

func (l *Local) List(_ context.Context) ([]backup.Backup, error) {
	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []backup.Backup{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	out := make([]backup.Backup, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || backup.ValidateName(entry.Name()) != nil {
			continue
		}
		matches := -1
		if data, err := os.ReadFile(filepath.Join(l.dir, entry.Name())); err == nil {
			if snapshot, err := document.Decode(data); err == nil {
				matches = len(snapshot.Records)
			}
		}
		item, err := l.describe(entry.Name(), matches)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func (l *Local) Load(_ context.Context, name string) (backup.Snapshot, error) {
	if err := backup.ValidateName(name); err != nil {
		return backup.Snapshot{}, err
	}

	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return backup.Snapshot{}, fmt.Errorf("%w: %s", backup.ErrNotFound, name)
	}
	if err != nil {
		return backup.Snapshot{}, fmt.Errorf("read backup %s: %w", name, err)
	}
	return document.Decode(data)
}

func (l *Local) describe(name string, matches int) (backup.Backup, error) {
	info, err := os.Stat(filepath.Join(l.dir, name))
	if err != nil {
		return backup.Backup{}, fmt.Errorf("stat backup %s: %w", name, err)
	}
	createdAt, ok := backup.TimeFromName(name)
	if !ok {
		createdAt = info.ModTime().UTC()
	}
	return backup.Backup{
		Name:      name,
		CreatedAt: createdAt,
		SizeBytes: info.Size(),
		Matches:   matches,
	}, nil
}
