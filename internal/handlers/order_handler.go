package handlers

import (
	"log"

	"cardapio/internal/models"
	"cardapio/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: NewValidator(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, guard Guard) {
	router.Get("/orders", guard.then(h.HandleGetOrders)...)
	router.Post("/orders", guard.then(h.HandleCreateOrder)...)
	router.Post("/orders/quote", guard.then(h.HandleQuote)...)
	router.Get("/orders/:id", guard.then(h.HandleGetOrderByID)...)
	router.Patch("/orders/status/:id", guard.then(h.HandleUpdateOrderStatus)...)
}

// OrderLineRequest is one cart line of a checkout or quote.
type OrderLineRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest is the checkout payload. Omit addressId for pickup.
// An empty items list is left to the service, which reports "empty cart".
type CreateOrderRequest struct {
	PaymentMethod string             `json:"paymentMethod" validate:"required,oneof=PIX CREDIT DEBIT CASH"`
	AddressID     *string            `json:"addressId"`
	Items         []OrderLineRequest `json:"items" validate:"dive"`
}

// QuoteRequest prices a cart without placing it.
type QuoteRequest struct {
	Items []OrderLineRequest `json:"items" validate:"dive"`
}

// UpdateStatusRequest is the body of a status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PROCESSING DELIVERED CANCELED"`
}

func toLines(in []OrderLineRequest) []services.LineInput {
	out := make([]services.LineInput, len(in))
	for i, l := range in {
		out[i] = services.LineInput{ItemID: l.ItemID, Quantity: l.Quantity}
	}
	return out
}

// HandleGetOrders lists orders visible to the caller: ?status=&period=
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	orders, err := h.service.List(c.UserContext(), a, services.OrderQuery{
		Status: c.Query("status"),
		Period: c.Query("period"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	order, err := h.service.Get(c.UserContext(), a, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleCreateOrder places a new order for the caller.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CreateOrderRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	order, err := h.service.PlaceOrder(c.UserContext(), a, services.PlaceOrderInput{
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		AddressID:     req.AddressID,
		Lines:         toLines(req.Items),
	})
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return respondError(c, err)
	}

	// Return the created order with its new ID and a 201 Created status
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleQuote prices the cart at current menu prices without placing an order.
func (h *OrderHandler) HandleQuote(c *fiber.Ctx) error {
	var req QuoteRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	quote, err := h.service.Quote(c.UserContext(), toLines(req.Items))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(quote)
}

// HandleUpdateOrderStatus moves an order along the caller's transition table.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	orderID := c.Params("id")
	var req UpdateStatusRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	order, err := h.service.TransitionStatus(c.UserContext(), a, orderID, models.OrderStatus(req.Status))
	if err != nil {
		log.Printf("Error updating order status for order %s: %v", orderID, err)
		return respondError(c, err)
	}
	return c.JSON(order)
}
