package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/elo-championship/internal/config"
	"github.com/riskibarqy/elo-championship/internal/domain/backup"
	"github.com/riskibarqy/elo-championship/internal/domain/match"
	"github.com/riskibarqy/elo-championship/internal/domain/rating"
	"github.com/riskibarqy/elo-championship/internal/domain/simulation"
	"github.com/riskibarqy/elo-championship/internal/infrastructure/backupstore"
	"github.com/riskibarqy/elo-championship/internal/infrastructure/repository/file"
	"github.com/riskibarqy/elo-championship/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/elo-championship/internal/infrastructure/repository/sqldb"
	"github.com/riskibarqy/elo-championship/internal/interfaces/httpapi"
	"github.com/riskibarqy/elo-championship/internal/platform/cache"
	idgen "github.com/riskibarqy/elo-championship/internal/platform/id"
	"github.com/riskibarqy/elo-championship/internal/platform/logging"
	"github.com/riskibarqy/elo-championship/internal/platform/resilience"
	"github.com/riskibarqy/elo-championship/internal/usecase"
)

// App is the assembled API process. Close releases everything New opened.
type App struct {
	Server *http.Server

	closers []func(context.Context) error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close(context.Background())
		}
	}()

	matchRepo, err := a.matchRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	backupRepo, err := newBackupRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	engine, err := rating.NewEngine(ratingParams(cfg.Elo))
	if err != nil {
		return nil, fmt.Errorf("build rating engine: %w", err)
	}

	championship := usecase.NewChampionshipService(engine, matchRepo, idgen.NewUUIDGenerator(), logger)
	if err := championship.Load(ctx); err != nil {
		return nil, fmt.Errorf("load championship: %w", err)
	}

	simulator := simulation.NewSimulator(engine.Model(), engine.Params().InitialRating)
	predictions := usecase.NewPredictionService(
		championship,
		simulator,
		cache.NewStore[usecase.SeasonForecast](cfg.Simulation.CacheTTL, 32),
		usecase.PredictionOptions{
			DefaultTrials: cfg.Simulation.DefaultTrials,
			MaxTrials:     cfg.Simulation.MaxTrials,
			Workers:       cfg.Simulation.Workers,
		},
		logger,
	)

	backups := usecase.NewBackupService(championship, backupRepo, logger)
	if cfg.BackupInterval > 0 {
		stop, err := backups.StartSchedule(cfg.BackupInterval)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return stop() })
	}

	handler := httpapi.NewHandler(championship, predictions, backups, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.AdminToken)
	if cfg.AdminToken == "" {
		logger.Warn("admin routes are unprotected", "reason", "ADMIN_TOKEN empty")
	}

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ok = true
	return a, nil
}

// Close runs the registered closers in reverse order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) matchRepository(ctx context.Context, cfg config.Config, logger *logging.Logger) (match.Repository, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory match storage", "reason", "STORAGE_DRIVER=memory")
		return memory.NewMatchRepository(nil), nil
	case config.StorageFile:
		logger.Info("using file match storage", "path", cfg.DataFile)
		return file.NewMatchRepository(cfg.DataFile), nil
	case config.StoragePostgres, config.StorageSQLite:
		opts := sqldb.Options{
			Driver:                      cfg.StorageDriver,
			URL:                         cfg.DBURL,
			DisablePreparedBinaryResult: cfg.DBDisablePreparedBinaryResult,
		}
		if cfg.DBAutoMigrate {
			if err := sqldb.MigrateUp(opts); err != nil {
				return nil, fmt.Errorf("migrate database: %w", err)
			}
			logger.Info("database migrated", "driver", cfg.StorageDriver)
		}

		db, err := sqldb.Open(ctx, opts)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		logger.Info("using sql match storage", "driver", cfg.StorageDriver)
		return sqldb.NewMatchRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func newBackupRepository(ctx context.Context, cfg config.Config, logger *logging.Logger) (backup.Repository, error) {
	local := backupstore.NewLocal(cfg.BackupDir)
	if !cfg.BackupS3.Enabled {
		return local, nil
	}

	remote, err := backupstore.NewS3(ctx, backupstore.S3Options{
		Bucket:          cfg.BackupS3.Bucket,
		Region:          cfg.BackupS3.Region,
		Endpoint:        cfg.BackupS3.Endpoint,
		AccessKeyID:     cfg.BackupS3.AccessKeyID,
		SecretAccessKey: cfg.BackupS3.SecretAccessKey,
		Prefix:          cfg.BackupS3.Prefix,
		Breaker: resilience.BreakerConfig{
			Enabled:          true,
			FailureThreshold: cfg.BackupS3.CircuitFailureCount,
			OpenTimeout:      cfg.BackupS3.CircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.BackupS3.CircuitHalfOpenMaxReq,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build s3 backup store: %w", err)
	}
	logger.Info("s3 backup mirror enabled", "bucket", cfg.BackupS3.Bucket, "prefix", cfg.BackupS3.Prefix)
	return backupstore.NewMirror(local, remote, logger), nil
}

func ratingParams(elo config.EloConfig) rating.Params {
	params := rating.DefaultParams()
	params.KBase = elo.KBase
	params.KEarly = elo.KEarly
	params.EarlyMatchesThreshold = elo.EarlyMatchesThreshold
	params.Model.HomeAdvantage = elo.HomeAdvantage
	return params
}
