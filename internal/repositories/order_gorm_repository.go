package repositories

import (
	"context"
	"fmt"

	"cardapio/internal/apperror"
	"cardapio/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create writes the order row and its lines in a single transaction.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = newID()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = newID()
		}
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A token can outlive its account.
		var clients int64
		if err := tx.Model(&models.User{}).Where("id = ?", order.ClientID).Count(&clients).Error; err != nil {
			return fmt.Errorf("failed to check client %s: %w", order.ClientID, err)
		}
		if clients == 0 {
			return apperror.NotFound("user with ID %s not found", order.ClientID)
		}
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return translate(err, "create", "order", order.ID)
		}
		if len(order.Items) == 0 {
			return nil
		}
		if err := tx.Omit(clause.Associations).Create(&order.Items).Error; err != nil {
			return translate(err, "create items of", "order", order.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	order.ComputeTotals()
	return nil
}

func (r *GORMOrderRepository) loaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Item").
		Preload("Client").
		Preload("Address")
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.loaded(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get", "order", id)
	}
	return &order, nil
}

func (r *GORMOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := r.loaded(ctx)
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ExcludeStatus != "" {
		query = query.Where("status <> ?", filter.ExcludeStatus)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus updates the status of an order. It never touches the order's lines.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error, "update status of", "order", id)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("order with ID %s not found for status update", id)
	}
	return nil
}

func (r *GORMOrderRepository) CompareAndSetStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, translate(res.Error, "update status of", "order", id)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMOrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	counts := make(map[models.OrderStatus]int64, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
