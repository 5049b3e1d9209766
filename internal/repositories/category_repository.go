package repositories

import (
	"context"
	"fmt"

	"cardapio/internal/apperror"
	"cardapio/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	// Delete fails with a conflict while any item references the category.
	Delete(ctx context.Context, id string) error
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

func (r *GORMCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("description ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}
	return categories, nil
}

func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get", "category", id)
	}
	return &category, nil
}

func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = newID()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return translate(err, "create", "category", category.ID)
	}
	return nil
}

func (r *GORMCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", category.ID).
		Update("description", category.Description)
	if res.Error != nil {
		return translate(res.Error, "update", "category", category.ID)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("category with ID %s not found for update", category.ID)
	}
	return nil
}

func (r *GORMCategoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.Item{}).Where("category_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to count items of category %s: %w", id, err)
		}
		if refs > 0 {
			return apperror.Conflict("category %s still has %d item(s)", id, refs)
		}
		res := tx.Delete(&models.Category{}, "id = ?", id)
		if res.Error != nil {
			return translate(res.Error, "delete", "category", id)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("category with ID %s not found for deletion", id)
		}
		return nil
	})
}
