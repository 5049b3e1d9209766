package repositories

import (
	"context"
	"time"

	"cardapio/internal/models"
)

// OrderFilter narrows an order listing. Zero values mean "no restriction".
type OrderFilter struct {
	ClientID      string
	Status        models.OrderStatus
	ExcludeStatus models.OrderStatus
	Since         *time.Time
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create persists the order and all of its items atomically.
	Create(ctx context.Context, order *models.Order) error
	// GetByID returns the order with client, address and items (with item) loaded.
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// List returns matching orders, newest first, fully loaded.
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// UpdateStatus unconditionally overwrites the status.
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	// CompareAndSetStatus moves the order from one status to another only when it
	// is still in from. It reports whether the row was updated.
	CompareAndSetStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, error)
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
}
