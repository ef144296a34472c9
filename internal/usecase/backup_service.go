package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/riskibarqy/elo-championship/internal/domain/backup"
	"github.com/riskibarqy/elo-championship/internal/platform/logging"
)

// RestoreResult reports a restore and the backup taken just before it.
type RestoreResult struct {
	Restored     string
	Matches      int
	SafetyBackup backup.Backup
}

type BackupService struct {
	championship *ChampionshipService
	repo         backup.Repository
	logger       *logging.Logger
	now          func() time.Time

	mu          sync.Mutex
	lastStamp   time.Time
	seq         int
	lastVersion uint64
}

func NewBackupService(championship *ChampionshipService, repo backup.Repository, logger *logging.Logger) *BackupService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BackupService{
		championship: championship,
		repo:         repo,
		logger:       logger.Named("backup"),
		now:          time.Now,
	}
}

// Create stores a timestamped copy of the current log.
func (s *BackupService) Create(ctx context.Context) (backup.Backup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackupService.Create")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createLocked(ctx)
}

func (s *BackupService) createLocked(ctx context.Context) (backup.Backup, error) {
	version := s.championship.Version()
	snapshot := s.championship.Export(ctx)

	saved, err := s.repo.Save(ctx, s.nextName(), snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, "create backup failed", "error", err)
		return backup.Backup{}, fmt.Errorf("%w: save backup: %w", ErrDependencyUnavailable, classify(err))
	}
	s.lastVersion = version

	s.logger.InfoContext(ctx, "backup created", "backup", saved.Name, "matches", saved.Matches)
	return saved, nil
}

// nextName keeps names unique when several backups land in the same second.
func (s *BackupService) nextName() string {
	stamp := s.now().UTC().Truncate(time.Second)
	if stamp.Equal(s.lastStamp) {
		s.seq++
	} else {
		s.lastStamp = stamp
		s.seq = 1
	}
	return backup.SequencedName(stamp, s.seq)
}

func (s *BackupService) List(ctx context.Context) ([]backup.Backup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackupService.List")
	defer span.End()

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list backups: %w", ErrDependencyUnavailable, classify(err))
	}
	return items, nil
}

// Restore replaces the log with a stored backup after backing up the
// current state.
func (s *BackupService) Restore(ctx context.Context, name string) (RestoreResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackupService.Restore")
	defer span.End()

	if err := backup.ValidateName(name); err != nil {
		return RestoreResult{}, classify(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.Load(ctx, name)
	if err != nil {
		return RestoreResult{}, classify(err)
	}

	safety, err := s.createLocked(ctx)
	if err != nil {
		return RestoreResult{}, err
	}
	if err := s.championship.ReplaceLog(ctx, snapshot.Records); err != nil {
		return RestoreResult{}, err
	}

	s.logger.InfoContext(ctx, "backup restored", "backup", name, "matches", len(snapshot.Records), "safety_backup", safety.Name)
	return RestoreResult{Restored: name, Matches: len(snapshot.Records), SafetyBackup: safety}, nil
}

// Reset backs up the current state and clears the log.
func (s *BackupService) Reset(ctx context.Context) (backup.Backup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackupService.Reset")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	safety, err := s.createLocked(ctx)
	if err != nil {
		return backup.Backup{}, err
	}
	if err := s.championship.ReplaceLog(ctx, nil); err != nil {
		return backup.Backup{}, err
	}

	s.logger.WarnContext(ctx, "championship reset", "safety_backup", safety.Name)
	return safety, nil
}

// backupIfChanged is the scheduled job body. It skips runs where the log has
// not moved since the last backup.
func (s *BackupService) backupIfChanged(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.championship.Version() == s.lastVersion {
		return
	}
	_, _ = s.createLocked(ctx)
}

// StartSchedule runs periodic backups every interval until the returned
// stop function is called. The log as loaded at start counts as backed up.
func (s *BackupService) StartSchedule(interval time.Duration) (func() error, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: backup interval must be > 0", ErrInvalidInput)
	}

	s.mu.Lock()
	s.lastVersion = s.championship.Version()
	s.mu.Unlock()

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create backup scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			s.backupIfChanged(context.Background())
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("periodic-backup"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule backups: %w", err)
	}
	sched.Start()

	s.logger.Info("backup schedule started", "interval", interval.String())
	return sched.Shutdown, nil
}
