// internal/repository/user_repo.go
package repository

import (
	"context"

	"orbitpay-wallet/internal/domain"
)

// UserRepository defines the read-only surface this service needs from
// the user store; user lifecycle is owned by the onboarding service.
type UserRepository interface {
	// GetUserByID retrieves a user by their ID using the provided DBExecutor.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
}
