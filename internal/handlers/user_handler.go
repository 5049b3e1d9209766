package handlers

import (
	"fmt"

	"cardapio/internal/models"
	"cardapio/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves account management.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service, validate: NewValidator()}
}

// RegisterRoutes registers the user routes behind guard.
func (h *UserHandler) RegisterRoutes(router fiber.Router, guard Guard) {
	router.Get("/users", guard.then(h.HandleList)...)
	router.Get("/users/:id", guard.then(h.HandleGet)...)
	router.Put("/users/:id", guard.then(h.HandleUpdate)...)
	router.Delete("/users/:id", guard.then(h.HandleDelete)...)
}

// HandleList retrieves all users.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	users, err := h.service.List(c.UserContext(), a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// HandleGet retrieves a single user by its ID.
func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.service.Get(c.UserContext(), a, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateUserRequest carries optional profile changes.
type UpdateUserRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=120"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	BirthDate *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Role      *string `json:"role" validate:"omitempty,oneof=CLIENT ADMIN"`
	Password  *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// HandleUpdate applies a partial update to a user.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateUserRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return respondError(c, err)
	}

	patch := services.UserUpdate{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		BirthDate: birthDate,
		Password:  req.Password,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		patch.Role = &role
	}

	user, err := h.service.Update(c.UserContext(), a, c.Params("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleDelete deletes a user. Users with orders are kept.
func (h *UserHandler) HandleDelete(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id := c.Params("id")
	if err := h.service.Delete(c.UserContext(), a, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("User %s deleted successfully", id),
	})
}
