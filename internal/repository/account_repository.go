package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kestrelbank/kestrel/internal/models"
	"github.com/kestrelbank/kestrel/internal/storage"
	"github.com/kestrelbank/kestrel/internal/utils"
)

// AccountRepository is the account store. Reads go straight to PostgreSQL;
// balance mutations happen only through ApplyDelta inside a unit of work
// owned by the transfer engine.
type AccountRepository struct {
	db *storage.DB
}

func NewAccountRepository(db *storage.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, account_number, owner_id, account_type, status, balance, created_at, updated_at`

// createAttempts bounds the retry loop for account number collisions. At 10
// random digits a collision is rare but not impossible, so the unique index
// is the arbiter and a conflict just means "roll again".
const createAttempts = 5

func (r *AccountRepository) Create(ctx context.Context, ownerID string, accountType models.AccountType) (*models.Account, error) {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for attempt := 0; attempt < createAttempts; attempt++ {
		now := time.Now().UTC()
		account := &models.Account{
			ID:            utils.GenerateID("acc"),
			AccountNumber: utils.GenerateAccountNumber(),
			OwnerID:       ownerID,
			Type:          accountType,
			Status:        models.AccountStatusActive,
			Balance:       decimal.Zero,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		_, err := r.db.ExecContext(ctx, query,
			account.ID, account.AccountNumber, account.OwnerID, account.Type,
			account.Status, account.Balance, account.CreatedAt, account.UpdatedAt,
		)
		if err == nil {
			return account, nil
		}
		if storage.IsUniqueViolation(err) {
			continue
		}
		return nil, fmt.Errorf("%w: create account: %w", models.ErrStorage, err)
	}
	return nil, fmt.Errorf("%w: no unique account number after %d attempts", models.ErrStorage, createAttempts)
}

// GetByNumber looks an account up by number alone. Used for transfer
// destinations, which may belong to any user.
func (r *AccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, accountNumber))
}

// GetByOwnerAndNumber is the ownership-scoped lookup: a missing account and
// an account owned by someone else are indistinguishable to the caller.
func (r *AccountRepository) GetByOwnerAndNumber(ctx context.Context, ownerID, accountNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 AND owner_id = $2`
	return scanAccount(r.db.QueryRowContext(ctx, query, accountNumber, ownerID))
}

func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list accounts: %w", models.ErrStorage, err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list accounts: %w", models.ErrStorage, err)
	}
	return accounts, nil
}

// UpdateStatus changes the status of an owned account and returns the
// updated record.
func (r *AccountRepository) UpdateStatus(ctx context.Context, ownerID, accountNumber string, status models.AccountStatus) (*models.Account, error) {
	query := `
		UPDATE accounts SET status = $3, updated_at = NOW()
		WHERE account_number = $1 AND owner_id = $2
		RETURNING ` + accountColumns
	return scanAccount(r.db.QueryRowContext(ctx, query, accountNumber, ownerID, status))
}

// ApplyDelta adjusts a balance by a signed amount within the caller's unit
// of work. The WHERE guard re-checks the non-negative invariant at the
// moment the row lock is taken, so a racing debit that would overdraw the
// account fails here even if it passed pre-validation.
func (r *AccountRepository) ApplyDelta(ctx context.Context, uow storage.UnitOfWork, accountID string, delta decimal.Decimal) error {
	query := `
		UPDATE accounts SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2 AND balance + $1 >= 0
	`
	result, err := uow.ExecContext(ctx, query, delta, accountID)
	if err != nil {
		return fmt.Errorf("%w: apply delta: %w", models.ErrStorage, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: apply delta: %w", models.ErrStorage, err)
	}
	if rows == 0 {
		// The engine validated existence before opening the unit of work,
		// and accounts are never deleted, so zero rows means the guard hit.
		return models.ErrInsufficientFunds
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID, &account.AccountNumber, &account.OwnerID, &account.Type,
		&account.Status, &account.Balance, &account.CreatedAt, &account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan account: %w", models.ErrStorage, err)
	}
	return &account, nil
}
