package backup

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/riskibarqy/elo-championship/internal/domain/match"
)

const nameLayout = "20060102_150405"

var (
	ErrNotFound    = errors.New("backup not found")
	ErrInvalidName = errors.New("invalid backup name")

	namePattern = regexp.MustCompile(`^backup_\d{8}_\d{6}(_\d+)?\.json$`)
)

// Backup describes one stored copy of the match log. Matches is -1 when
// the store cannot count records without downloading the backup.
type Backup struct {
	Name      string
	CreatedAt time.Time
	SizeBytes int64
	Matches   int
}

// Snapshot is the content of a backup.
type Snapshot struct {
	Records     []match.Record
	LastUpdated time.Time
}

// Repository stores backups. List returns newest first.
type Repository interface {
	Save(ctx context.Context, name string, snapshot Snapshot) (Backup, error)
	List(ctx context.Context) ([]Backup, error)
	Load(ctx context.Context, name string) (Snapshot, error)
}

// NameFor builds the file name of a backup taken at t.
func NameFor(t time.Time) string {
	return fmt.Sprintf("backup_%s.json", t.UTC().Format(nameLayout))
}

// SequencedName disambiguates backups taken within the same second. A
// sequence below 2 yields NameFor(t).
func SequencedName(t time.Time, seq int) string {
	if seq < 2 {
		return NameFor(t)
	}
	return fmt.Sprintf("backup_%s_%d.json", t.UTC().Format(nameLayout), seq)
}

// ValidateName rejects names that could escape the backup location.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// TimeFromName recovers the creation time encoded in a backup name.
func TimeFromName(name string) (time.Time, bool) {
	if err := ValidateName(name); err != nil {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(nameLayout, name[len("backup_"):len("backup_")+len(nameLayout)], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
