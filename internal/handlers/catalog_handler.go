package handlers

import (
	"fmt"

	"cardapio/internal/models"
	"cardapio/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CatalogHandler handles HTTP requests for categories and items.
type CatalogHandler struct {
	categories *services.CategoryService
	items      *services.ItemService
	validate   *validator.Validate
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(categories *services.CategoryService, items *services.ItemService) *CatalogHandler {
	return &CatalogHandler{
		categories: categories,
		items:      items,
		validate:   NewValidator(),
	}
}

// RegisterRoutes registers the menu routes. Reads are public.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router, guard Guard) {
	router.Get("/categories", h.HandleListCategories)
	router.Get("/categories/:id", h.HandleGetCategory)
	router.Post("/categories", guard.then(h.HandleCreateCategory)...)
	router.Put("/categories/:id", guard.then(h.HandleUpdateCategory)...)
	router.Delete("/categories/:id", guard.then(h.HandleDeleteCategory)...)

	router.Get("/items", h.HandleListItems)
	router.Get("/items/:id", h.HandleGetItem)
	router.Post("/items", guard.then(h.HandleCreateItem)...)
	router.Put("/items/:id", guard.then(h.HandleUpdateItem)...)
	router.Delete("/items/:id", guard.then(h.HandleDeleteItem)...)
}

// CategoryRequest is the body of category writes.
type CategoryRequest struct {
	Description string `json:"description" validate:"required,max=120"`
}

// HandleListCategories retrieves all categories.
func (h *CatalogHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

// HandleGetCategory retrieves a single category by its ID.
func (h *CatalogHandler) HandleGetCategory(c *fiber.Ctx) error {
	category, err := h.categories.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(category)
}

// HandleCreateCategory creates a new category.
func (h *CatalogHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	category := models.Category{Description: req.Description}
	if err := h.categories.Create(c.UserContext(), &category); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleUpdateCategory renames a category.
func (h *CatalogHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	category := models.Category{ID: c.Params("id"), Description: req.Description}
	if err := h.categories.Update(c.UserContext(), &category); err != nil {
		return respondError(c, err)
	}
	updated, err := h.categories.Get(c.UserContext(), category.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// HandleDeleteCategory deletes a category that has no items.
func (h *CatalogHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.categories.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Category %s deleted successfully", id),
	})
}

// HandleListItems serves the menu: ?search=&category=&sort=&page=&limit=
func (h *CatalogHandler) HandleListItems(c *fiber.Ctx) error {
	page, err := h.items.List(c.UserContext(), services.ItemQuery{
		Search:     c.Query("search"),
		CategoryID: c.Query("category"),
		Sort:       c.Query("sort"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", services.DefaultPageSize),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// HandleGetItem retrieves a single item by its ID.
func (h *CatalogHandler) HandleGetItem(c *fiber.Ctx) error {
	item, err := h.items.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// ItemRequest is the body of item writes. unitPrice accepts a number or a decimal string.
type ItemRequest struct {
	Description string          `json:"description" validate:"required,max=255"`
	UnitPrice   decimal.Decimal `json:"unitPrice" validate:"required,gt=0"`
	CategoryID  string          `json:"categoryId" validate:"required"`
}

func (r ItemRequest) model(id string) models.Item {
	return models.Item{ID: id, Description: r.Description, UnitPrice: r.UnitPrice, CategoryID: r.CategoryID}
}

// HandleCreateItem creates a new menu item.
func (h *CatalogHandler) HandleCreateItem(c *fiber.Ctx) error {
	var req ItemRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	item := req.model("")
	if err := h.items.Create(c.UserContext(), &item); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateItem updates an item. Placed orders keep their prices.
func (h *CatalogHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req ItemRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	item := req.model(c.Params("id"))
	if err := h.items.Update(c.UserContext(), &item); err != nil {
		return respondError(c, err)
	}
	updated, err := h.items.Get(c.UserContext(), item.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// HandleDeleteItem deletes an item that no order refers to.
func (h *CatalogHandler) HandleDeleteItem(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.items.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Item %s deleted successfully", id),
	})
}
