package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StorageFile || cfg.DataFile != "elo_championship_data.json" {
		t.Fatalf("unexpected storage defaults: %s %s", cfg.StorageDriver, cfg.DataFile)
	}
	if cfg.Elo.HomeAdvantage != 60 || cfg.Elo.KBase != 40 || cfg.Elo.KEarly != 50 || cfg.Elo.EarlyMatchesThreshold != 5 {
		t.Fatalf("unexpected elo defaults: %+v", cfg.Elo)
	}
	if cfg.Simulation.DefaultTrials != 100000 || cfg.Simulation.CacheTTL != 10*time.Minute {
		t.Fatalf("unexpected simulation defaults: %+v", cfg.Simulation)
	}
	if cfg.BackupInterval != 0 {
		t.Fatalf("scheduled backups should be off by default")
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_StorageDriverValidation(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", "mongo")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown STORAGE_DRIVER")
	}
}

func TestLoad_SQLiteDefaultsToLocalFile(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", StorageSQLite)
	t.Setenv("DB_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBURL != "elo_championship.db" {
		t.Fatalf("unexpected sqlite path: %q", cfg.DBURL)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn=\"https://token@api.uptrace.dev/1\"")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BACKUP_S3_ENABLED", "true")
	t.Setenv("BACKUP_S3_BUCKET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BACKUP_S3_ENABLED=true without bucket")
	}
}

func TestLoad_EloAndSimulationOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", EnvStage)
	t.Setenv("ELO_HOME_ADVANTAGE", "45.5")
	t.Setenv("ELO_K_BASE", "32")
	t.Setenv("SIM_DEFAULT_TRIALS", "5000")
	t.Setenv("SIM_MAX_TRIALS", "20000")
	t.Setenv("SIM_WORKERS", "3")
	t.Setenv("BACKUP_INTERVAL", "6h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Elo.HomeAdvantage != 45.5 || cfg.Elo.KBase != 32 {
		t.Fatalf("unexpected elo config: %+v", cfg.Elo)
	}
	if cfg.Simulation.DefaultTrials != 5000 || cfg.Simulation.MaxTrials != 20000 || cfg.Simulation.Workers != 3 {
		t.Fatalf("unexpected simulation config: %+v", cfg.Simulation)
	}
	if cfg.BackupInterval != 6*time.Hour {
		t.Fatalf("unexpected backup interval: %s", cfg.BackupInterval)
	}
}

func TestLoad_SimulationValidation(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SIM_DEFAULT_TRIALS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero default trials")
	}
}

func TestLoad_ReadsDotEnvWithoutOverriding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("APP_SERVICE_NAME=from-dotenv\nAPP_HTTP_ADDR=:9999\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("APP_ENV_FILE", path)
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_HTTP_ADDR", ":7070")
	t.Setenv("APP_SERVICE_NAME", "")
	// godotenv only fills variables that are unset.
	os.Unsetenv("APP_SERVICE_NAME")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "from-dotenv" {
		t.Fatalf("unexpected service name: %q", cfg.ServiceName)
	}
	if cfg.HTTPAddr != ":7070" {
		t.Fatalf("process env should win over .env, got %q", cfg.HTTPAddr)
	}
}
