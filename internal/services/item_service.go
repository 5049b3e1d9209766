package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cardapio/internal/apperror"
	"cardapio/internal/cache"
	"cardapio/internal/models"
	"cardapio/internal/repositories"

	"github.com/shopspring/decimal"
)

// Menu paging bounds.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// ItemQuery is a menu listing request as received from the client.
type ItemQuery struct {
	Search     string
	CategoryID string
	Sort       string
	Page       int
	Limit      int
}

// ItemPage is one page of the menu.
type ItemPage struct {
	Items      []models.Item `json:"items"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
	TotalItems int64         `json:"totalItems"`
}

// ItemService handles business logic related to menu items.
type ItemService struct {
	repo         repositories.ItemRepository
	categoryRepo repositories.CategoryRepository
	cache        cache.MenuCache
}

// NewItemService creates a new ItemService. A nil menuCache disables caching.
func NewItemService(repo repositories.ItemRepository, categoryRepo repositories.CategoryRepository, menuCache cache.MenuCache) *ItemService {
	if menuCache == nil {
		menuCache = cache.Noop{}
	}
	return &ItemService{
		repo:         repo,
		categoryRepo: categoryRepo,
		cache:        menuCache,
	}
}

// List returns one page of the menu, served from the cache when possible.
func (s *ItemService) List(ctx context.Context, q ItemQuery) (*ItemPage, error) {
	sort := repositories.ItemSort(strings.ToUpper(strings.TrimSpace(q.Sort)))
	if sort == "" {
		sort = repositories.SortDefault
	}
	if !sort.Valid() {
		return nil, apperror.Validation("invalid sort %q", q.Sort)
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))

	key := fmt.Sprintf("items:%s:%s:%s:%d:%d", search, q.CategoryID, sort, page, limit)
	var cached ItemPage
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		log.Printf("Menu cache read failed: %v", err)
	} else if hit {
		return &cached, nil
	}

	items, total, err := s.repo.List(ctx, repositories.ItemFilter{
		Search:     search,
		CategoryID: q.CategoryID,
		Sort:       sort,
		Offset:     (page - 1) * limit,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}

	result := &ItemPage{
		Items:      items,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		TotalItems: total,
	}
	if err := s.cache.Set(ctx, key, result); err != nil {
		log.Printf("Menu cache write failed: %v", err)
	}
	return result, nil
}

// Get retrieves a single item by its ID.
func (s *ItemService) Get(ctx context.Context, id string) (*models.Item, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds an item to an existing category.
func (s *ItemService) Create(ctx context.Context, item *models.Item) error {
	if err := s.check(ctx, item); err != nil {
		return err
	}
	item.ID = ""
	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Update changes description, price and category. Orders keep the price they were placed with.
func (s *ItemService) Update(ctx context.Context, item *models.Item) error {
	if err := s.check(ctx, item); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Delete deletes an item that no order refers to.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ItemService) check(ctx context.Context, item *models.Item) error {
	item.Description = strings.TrimSpace(item.Description)
	if item.Description == "" {
		return apperror.Validation("description must not be empty")
	}
	if !item.UnitPrice.GreaterThan(decimal.Zero) {
		return apperror.Validation("unit price must be greater than zero")
	}
	item.UnitPrice = item.UnitPrice.Round(2)
	category, err := s.categoryRepo.GetByID(ctx, item.CategoryID)
	if err != nil {
		return err
	}
	item.Category = category
	return nil
}

func (s *ItemService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("Menu cache invalidation failed: %v", err)
	}
}
