// Package repomanager selects the profile repository backend from a DSN and
// runs the matching embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sharebox/internal/dbx"
	"github.com/dmitrijs2005/sharebox/internal/server/repositories/profiles"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Profiles(db dbx.DBTX) profiles.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

var sqlOpen = sql.Open

const sqlitePrefix = "sqlite:"

// Open connects to the database named by dsn and migrates it.
// "postgres://" and "postgresql://" DSNs use pgx; "sqlite:<path>" uses
// the pure-Go SQLite driver.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	var (
		driver string
		mgr    RepositoryManager
	)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		driver, mgr = "pgx", NewPostgresRepositoryManager()
	case strings.HasPrefix(dsn, sqlitePrefix):
		driver, mgr = "sqlite", NewSQLiteRepositoryManager()
		dsn = strings.TrimPrefix(dsn, sqlitePrefix)
	default:
		return nil, nil, fmt.Errorf("unsupported database dsn scheme in %q", redact(dsn))
	}

	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := mgr.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate %s: %w", driver, err)
	}
	return db, mgr, nil
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(dsn string) string {
	if i := strings.Index(dsn, ":"); i >= 0 {
		return dsn[:i+1] + "..."
	}
	return "..."
}
