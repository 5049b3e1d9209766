package handlers

import (
	"fmt"

	"cardapio/internal/models"
	"cardapio/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddressHandler serves the delivery addresses of a user.
type AddressHandler struct {
	service  *services.AddressService
	validate *validator.Validate
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{service: service, validate: NewValidator()}
}

// RegisterRoutes registers the address routes behind guard.
func (h *AddressHandler) RegisterRoutes(router fiber.Router, guard Guard) {
	router.Get("/address/:userId", guard.then(h.HandleList)...)
	router.Post("/address/:userId", guard.then(h.HandleCreate)...)
	router.Get("/address/:userId/:id", guard.then(h.HandleGet)...)
	router.Put("/address/:userId/:id", guard.then(h.HandleUpdate)...)
	router.Delete("/address/:userId/:id", guard.then(h.HandleDelete)...)
}

// AddressRequest is the body of address writes.
type AddressRequest struct {
	Street   string `json:"street" validate:"required,max=255"`
	Number   string `json:"number" validate:"required,max=20"`
	District string `json:"district" validate:"required,max=120"`
	City     string `json:"city" validate:"required,max=120"`
	State    string `json:"state" validate:"required,len=2"`
	ZipCode  string `json:"zipCode" validate:"required,max=12"`
}

func (r AddressRequest) model() models.Address {
	return models.Address{
		Street:   r.Street,
		Number:   r.Number,
		District: r.District,
		City:     r.City,
		State:    r.State,
		ZipCode:  r.ZipCode,
	}
}

// HandleList returns every address of the user in the path.
func (h *AddressHandler) HandleList(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	addresses, err := h.service.List(c.UserContext(), a, c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(addresses)
}

// HandleCreate adds an address to the user in the path.
func (h *AddressHandler) HandleCreate(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req AddressRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	address := req.model()
	if err := h.service.Create(c.UserContext(), a, c.Params("userId"), &address); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

// HandleGet retrieves one address of the user.
func (h *AddressHandler) HandleGet(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	address, err := h.service.Get(c.UserContext(), a, c.Params("userId"), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(address)
}

// HandleUpdate replaces the fields of an address.
func (h *AddressHandler) HandleUpdate(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req AddressRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	address, err := h.service.Update(c.UserContext(), a, c.Params("userId"), c.Params("id"), req.model())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(address)
}

// HandleDelete removes an address no order refers to.
func (h *AddressHandler) HandleDelete(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id := c.Params("id")
	if err := h.service.Delete(c.UserContext(), a, c.Params("userId"), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Address %s deleted successfully", id),
	})
}
