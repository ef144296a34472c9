// Package sqldb stores the match log in PostgreSQL or SQLite through sqlx.
package sqldb

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	_ "modernc.org/sqlite"

	qb "github.com/riskibarqy/elo-championship/internal/platform/querybuilder"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver                      string
	URL                         string
	DisablePreparedBinaryResult bool
}

// DSN returns the connection string handed to the driver.
func DSN(opts Options) (string, error) {
	raw := strings.TrimSpace(opts.URL)
	if raw == "" {
		return "", fmt.Errorf("database url is required")
	}
	switch opts.Driver {
	case DriverPostgres:
		return normalizeDBURL(raw, opts.DisablePreparedBinaryResult), nil
	case DriverSQLite:
		if strings.Contains(raw, "?") {
			return raw, nil
		}
		return raw + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// Open connects with OpenTelemetry instrumentation and pings the database.
func Open(ctx context.Context, opts Options) (*sqlx.DB, error) {
	dsn, err := DSN(opts)
	if err != nil {
		return nil, err
	}

	system := "postgresql"
	if opts.Driver == DriverSQLite {
		system = "sqlite"
	}
	db, err := otelsqlx.Open(opts.Driver, dsn,
		otelsql.WithDBSystem(system),
		otelsql.WithDBName(dbNameFromURL(opts.URL)),
		otelsql.WithQueryFormatter(formatQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
	}
	if opts.Driver == DriverSQLite {
		// one writer keeps SQLITE_BUSY out of the request path
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Driver, err)
	}
	return db, nil
}

func dialectFor(driver string) qb.Dialect {
	if driver == DriverSQLite {
		return qb.Question
	}
	return qb.Dollar
}
