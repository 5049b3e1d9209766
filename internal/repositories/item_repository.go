package repositories

import (
	"context"
	"fmt"
	"strings"

	"cardapio/internal/apperror"
	"cardapio/internal/models"

	"gorm.io/gorm"
)

// ItemSort selects the ordering of a menu listing.
type ItemSort string

const (
	SortDefault   ItemSort = "DEFAULT"
	SortPriceAsc  ItemSort = "PRICE_ASC"
	SortPriceDesc ItemSort = "PRICE_DESC"
	SortNameAsc   ItemSort = "NAME_ASC"
	SortNameDesc  ItemSort = "NAME_DESC"
)

func (s ItemSort) Valid() bool {
	switch s {
	case SortDefault, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

func (s ItemSort) orderClause() string {
	switch s {
	case SortPriceAsc:
		return "unit_price ASC, description ASC"
	case SortPriceDesc:
		return "unit_price DESC, description ASC"
	case SortNameAsc:
		return "LOWER(description) ASC"
	case SortNameDesc:
		return "LOWER(description) DESC"
	default:
		return "created_at ASC, id ASC"
	}
}

// ItemFilter narrows and pages a menu listing. Limit <= 0 means no limit.
type ItemFilter struct {
	Search     string
	CategoryID string
	Sort       ItemSort
	Offset     int
	Limit      int
}

// ItemRepository defines the interface for item data access.
type ItemRepository interface {
	// List returns the page selected by filter and the total number of matches.
	List(ctx context.Context, filter ItemFilter) ([]models.Item, int64, error)
	GetByID(ctx context.Context, id string) (*models.Item, error)
	// GetByIDs returns the items that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	// Delete fails with a conflict while any order line references the item.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db *gorm.DB
}

// NewGORMItemRepository creates a new instance of GORMItemRepository.
func NewGORMItemRepository(db *gorm.DB) *GORMItemRepository {
	return &GORMItemRepository{
		db: db,
	}
}

// likeEscaper makes search text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// List retrieves the filtered items with their category.
func (r *GORMItemRepository) List(ctx context.Context, filter ItemFilter) ([]models.Item, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Item{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where(`LOWER(description) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(s))+"%")
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	query = query.Session(&gorm.Session{}) // reused by Count and Find

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	query = query.Preload("Category").Order(filter.Sort.orderClause())
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	var items []models.Item
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get all items: %w", err)
	}
	return items, total, nil
}

// GetByID retrieves a single item by its ID from the database.
func (r *GORMItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Preload("Category").First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get", "item", id)
	}
	return &item, nil
}

func (r *GORMItemRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}
	var items []models.Item
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get items by IDs: %w", err)
	}
	return items, nil
}

// Create creates a new item in the database.
func (r *GORMItemRepository) Create(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = newID()
	}
	if err := r.db.WithContext(ctx).Omit("Category").Create(item).Error; err != nil {
		return translate(err, "create", "item", item.ID)
	}
	return nil
}

// Update updates an existing item in the database.
func (r *GORMItemRepository) Update(ctx context.Context, item *models.Item) error {
	res := r.db.WithContext(ctx).Model(&models.Item{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"description": item.Description,
		"unit_price":  item.UnitPrice,
		"category_id": item.CategoryID,
	})
	if res.Error != nil {
		return translate(res.Error, "update", "item", item.ID)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("item with ID %s not found for update", item.ID)
	}
	return nil
}

// Delete deletes an item by its ID from the database.
func (r *GORMItemRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.OrderItem{}).Where("item_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to count order lines of item %s: %w", id, err)
		}
		if refs > 0 {
			return apperror.Conflict("item %s is part of %d order line(s) and cannot be deleted", id, refs)
		}
		res := tx.Delete(&models.Item{}, "id = ?", id)
		if res.Error != nil {
			return translate(res.Error, "delete", "item", id)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("item with ID %s not found for deletion", id)
		}
		return nil
	})
}

// Count returns the number of items on the menu.
func (r *GORMItemRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Item{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}
