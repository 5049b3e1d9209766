package handlers

import (
	"cardapio/internal/services"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the admin overview counters.
type DashboardHandler struct {
	service *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// RegisterRoutes registers the dashboard routes behind guard.
func (h *DashboardHandler) RegisterRoutes(router fiber.Router, guard Guard) {
	router.Get("/dashboard/stats", guard.then(h.HandleStats)...)
}

// HandleStats returns revenue and order, user and item counts.
func (h *DashboardHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
