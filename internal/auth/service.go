// Package auth supplies the verified identity every ledger call trusts:
// registration, login and token refresh.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kestrelbank/kestrel/internal/cqrs"
	"github.com/kestrelbank/kestrel/internal/events"
	"github.com/kestrelbank/kestrel/internal/middleware"
	"github.com/kestrelbank/kestrel/internal/models"
	"github.com/kestrelbank/kestrel/internal/utils"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password, so login failures don't reveal which accounts exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenLifetime = 24 * time.Hour

// UserStore is the subset of the user repository this service needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

type Service struct {
	users     UserStore
	secret    []byte
	publisher EventPublisher
}

func NewService(users UserStore, secret []byte, publisher EventPublisher) *Service {
	return &Service{users: users, secret: secret, publisher: publisher}
}

func (s *Service) Register(ctx context.Context, cmd cqrs.RegisterUserCommand) (*models.User, error) {
	passwordHash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	now := time.Now().UTC()
	user := &models.User{
		ID:           utils.GenerateID("usr"),
		Name:         cmd.Name,
		Email:        cmd.Email,
		PasswordHash: passwordHash,
		PhoneNumber:  cmd.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserRegistered, events.UserRegisteredEvent{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}); err != nil {
		slog.Warn("failed to publish user.registered event", "userId", user.ID, "error", err)
	}
	return user, nil
}

// Profile returns the authenticated user's record.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) Login(ctx context.Context, cmd cqrs.LoginCommand) (string, error) {
	user, err := s.users.GetByEmail(ctx, cmd.Email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !utils.CheckPassword(cmd.Password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.generateToken(user.ID, user.Email)
}

func (s *Service) Refresh(ctx context.Context, cmd cqrs.RefreshTokenCommand) (string, error) {
	claims := &middleware.Claims{}
	token, err := jwt.ParseWithClaims(cmd.Token, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidCredentials
	}
	return s.generateToken(claims.UserID, claims.Email)
}

func (s *Service) generateToken(userID, email string) (string, error) {
	claims := middleware.Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}
