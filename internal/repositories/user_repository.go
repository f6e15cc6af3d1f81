package repositories

import (
	"context"

	"catalogue/internal/models"
)

// UserRepository defines the interface for user data access. The user
// collection is read-only: accounts are provisioned out of band.
type UserRepository interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
