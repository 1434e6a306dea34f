package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"khata/internal/core"
)

// Repository is the durable entity store. It owns the connection pool and
// provides the atomic-commit primitive the ledger engine spans its
// insert+balance-update pairs with.
type Repository struct {
	db      *sql.DB
	queries *Queries
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Queries returns the store operations bound to the pooled connection.
func (r *Repository) Queries() *Queries {
	return r.queries
}

// ExecTx runs fn inside a single all-or-nothing unit. An error from fn
// rolls everything back and is returned unchanged; a begin, rollback or
// commit failure surfaces as core.ErrAtomicity. Either every write in fn
// is durable or none is.
func (r *Repository) ExecTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", core.ErrAtomicity, err)
	}

	if err := fn(New(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed after unit error",
				"error", rbErr, "unit_error", err)
			return fmt.Errorf("%w: rollback after %v: %v", core.ErrAtomicity, err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", core.ErrAtomicity, err)
	}
	return nil
}
