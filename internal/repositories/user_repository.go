package repositories

import (
	"context"

	"cardapio/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	// Delete removes the user and its addresses. Users with orders cannot be deleted.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
