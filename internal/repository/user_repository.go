package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kestrelbank/kestrel/internal/models"
	"github.com/kestrelbank/kestrel/internal/storage"
)

type UserRepository struct {
	db *storage.DB
}

func NewUserRepository(db *storage.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, phone_number, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		nullString(user.PhoneNumber), user.CreatedAt, user.UpdatedAt,
	)
	if storage.IsUniqueViolation(err) {
		return models.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("%w: create user: %w", models.ErrStorage, err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var phone sql.NullString
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&phone, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan user: %w", models.ErrStorage, err)
	}
	user.PhoneNumber = phone.String
	return &user, nil
}
