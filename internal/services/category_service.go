package services

import (
	"context"
	"log"
	"strings"

	"cardapio/internal/apperror"
	"cardapio/internal/cache"
	"cardapio/internal/models"
	"cardapio/internal/repositories"
)

const categoriesKey = "categories"

// CategoryService manages menu categories.
type CategoryService struct {
	repo  repositories.CategoryRepository
	cache cache.MenuCache
}

// NewCategoryService creates a new CategoryService. A nil menuCache disables caching.
func NewCategoryService(repo repositories.CategoryRepository, menuCache cache.MenuCache) *CategoryService {
	if menuCache == nil {
		menuCache = cache.Noop{}
	}
	return &CategoryService{repo: repo, cache: menuCache}
}

// List returns every category, from the menu cache when possible.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if hit, err := s.cache.Get(ctx, categoriesKey, &cached); err != nil {
		log.Printf("Menu cache read failed: %v", err)
	} else if hit {
		return cached, nil
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	if err := s.cache.Set(ctx, categoriesKey, categories); err != nil {
		log.Printf("Menu cache write failed: %v", err)
	}
	return categories, nil
}

// Get retrieves a single category by its ID.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds a category and invalidates the menu cache.
func (s *CategoryService) Create(ctx context.Context, category *models.Category) error {
	category.Description = strings.TrimSpace(category.Description)
	if category.Description == "" {
		return apperror.Validation("description must not be empty")
	}
	category.ID = ""
	if err := s.repo.Create(ctx, category); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Update renames a category and invalidates the menu cache.
func (s *CategoryService) Update(ctx context.Context, category *models.Category) error {
	category.Description = strings.TrimSpace(category.Description)
	if category.Description == "" {
		return apperror.Validation("description must not be empty")
	}
	if err := s.repo.Update(ctx, category); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Delete refuses while any item still belongs to the category.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("Menu cache invalidation failed: %v", err)
	}
}
