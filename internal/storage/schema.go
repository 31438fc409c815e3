package storage

import (
	"context"
	"fmt"

	"github.com/kestrelbank/kestrel/internal/models"
)

// Migrate creates the schema if it does not exist. The balance CHECK is the
// database-level backstop for the non-negative invariant; the guarded update
// in the account store enforces it with a domain error before the constraint
// ever fires.
func (d *DB) Migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	phone_number  TEXT,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id             TEXT PRIMARY KEY,
	account_number TEXT NOT NULL UNIQUE,
	owner_id       TEXT NOT NULL REFERENCES users(id),
	account_type   TEXT NOT NULL,
	status         TEXT NOT NULL,
	balance        NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id                     TEXT PRIMARY KEY,
	seq                    BIGSERIAL,
	amount                 NUMERIC(10,2) NOT NULL CHECK (amount > 0),
	kind                   TEXT NOT NULL,
	status                 TEXT NOT NULL,
	description            TEXT,
	source_account_id      TEXT NOT NULL REFERENCES accounts(id),
	destination_account_id TEXT REFERENCES accounts(id),
	created_at             TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_source
	ON transactions (source_account_id, created_at DESC, seq DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_destination
	ON transactions (destination_account_id, created_at DESC, seq DESC);
`
	if _, err := d.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: migrate: %w", models.ErrStorage, err)
	}
	return nil
}
