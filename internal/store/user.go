package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/microlesson-api/internal/domain"
)

// UserStore persists user accounts.
type UserStore interface {
	// Create validates user, hashes its plaintext password and inserts it.
	// Returns ErrEmailExists if the email is taken and domain validation
	// errors if the user is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns the user with id, without plaintext password.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail returns the user registered under email.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
