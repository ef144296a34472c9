package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/riskibarqy/elo-championship/internal/domain/backup"
	"github.com/riskibarqy/elo-championship/internal/domain/match"
	"github.com/riskibarqy/elo-championship/internal/infrastructure/document"
)

// MatchRepository keeps the match log in a single JSON document on disk.
// Writes go to a temporary file that is renamed over the target, so readers
// never observe a half-written log.
type MatchRepository struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewMatchRepository(path string) *MatchRepository {
	return &MatchRepository{path: path, now: time.Now}
}

func (r *MatchRepository) Load(_ context.Context) ([]match.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	snapshot, err := document.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	return snapshot.Records, nil
}

func (r *MatchRepository) Save(ctx context.Context, records []match.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	return writeAtomic(r.path, backup.Snapshot{Records: records, LastUpdated: r.now()})
}

func writeAtomic(path string, snapshot backup.Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := document.Write(tmp, snapshot); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
