// Package storage owns the PostgreSQL connection and the unit-of-work
// contract: every write that must commit atomically with others receives the
// same UnitOfWork handle, and Transact guarantees rollback on any error path.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kestrelbank/kestrel/internal/models"
)

// UnitOfWork is one open atomic database transaction. Store methods that
// take it never commit or roll back themselves; the lifetime belongs to
// Transact alone.
type UnitOfWork = *sql.Tx

// transactTimeout bounds a single unit of work so a stalled store cannot
// hold row locks indefinitely.
const transactTimeout = 10 * time.Second

type DB struct {
	*sql.DB
}

// Open connects to PostgreSQL and verifies the connection.
func Open(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{DB: db}, nil
}

// Transact runs fn inside a single database transaction. If fn returns an
// error, or the commit fails, nothing fn wrote is observable to any reader.
// Infrastructure failures are reported as models.ErrStorage; domain errors
// returned by fn pass through unchanged.
func (d *DB) Transact(ctx context.Context, fn func(UnitOfWork) error) error {
	ctx, cancel := context.WithTimeout(ctx, transactTimeout)
	defer cancel()

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", models.ErrStorage, err)
	}
	defer tx.Rollback() // no-op after a successful commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", models.ErrStorage, err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-index
// conflict, used by the account store's number-generation retry loop.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
