package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kestrelbank/kestrel/internal/models"
	"github.com/kestrelbank/kestrel/internal/storage"
)

// TransactionRepository is the append-only ledger. Records are written once,
// inside the transfer engine's unit of work, and never updated afterwards.
type TransactionRepository struct {
	db *storage.DB
}

func NewTransactionRepository(db *storage.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, seq, amount, kind, status, description, source_account_id, destination_account_id, created_at`

// Append writes one immutable ledger record as part of the caller's unit of
// work and fills in the database-assigned sequence number.
func (r *TransactionRepository) Append(ctx context.Context, uow storage.UnitOfWork, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, amount, kind, status, description, source_account_id, destination_account_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq
	`
	err := uow.QueryRowContext(ctx, query,
		t.ID, t.Amount, t.Kind, t.Status,
		nullString(t.Description), t.SourceAccountID, nullString(t.DestinationAccountID),
		t.CreatedAt,
	).Scan(&t.Seq)
	if err != nil {
		return fmt.Errorf("%w: append transaction: %w", models.ErrStorage, err)
	}
	return nil
}

// ListForAccount returns records touching the account, newest first.
// limit <= 0 returns everything.
func (r *TransactionRepository) ListForAccount(ctx context.Context, accountID string, limit int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE source_account_id = $1 OR destination_account_id = $1
		ORDER BY created_at DESC, seq DESC
	`
	args := []any{accountID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return r.list(ctx, query, args...)
}

// ListForOwner returns records touching any of the owner's accounts on
// either side, newest first. Backs the cross-account activity feed.
func (r *TransactionRepository) ListForOwner(ctx context.Context, ownerID string, limit int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE source_account_id IN (SELECT id FROM accounts WHERE owner_id = $1)
		   OR destination_account_id IN (SELECT id FROM accounts WHERE owner_id = $1)
		ORDER BY created_at DESC, seq DESC
	`
	args := []any{ownerID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return r.list(ctx, query, args...)
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %w", models.ErrStorage, err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var description, destination sql.NullString
		if err := rows.Scan(
			&t.ID, &t.Seq, &t.Amount, &t.Kind, &t.Status,
			&description, &t.SourceAccountID, &destination, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %w", models.ErrStorage, err)
		}
		t.Description = description.String
		t.DestinationAccountID = destination.String
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list transactions: %w", models.ErrStorage, err)
	}
	return transactions, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
