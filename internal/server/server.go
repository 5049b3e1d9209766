// Package server assembles the Fiber application from its services.
package server

import (
	"time"

	"cardapio/internal/authz"
	"cardapio/internal/handlers"
	"cardapio/internal/middleware"
	"cardapio/internal/realtime"
	"cardapio/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIPrefix is the mount point of every API route.
const APIPrefix = "/api/v1"

// Deps are the collaborators the routes are served by.
type Deps struct {
	Auth       *services.AuthService
	Users      *services.UserService
	Addresses  *services.AddressService
	Categories *services.CategoryService
	Items      *services.ItemService
	Orders     *services.OrderService
	Dashboard  *services.DashboardService
	Enforcer   *authz.Enforcer
	Hub        *realtime.Hub // nil disables the live order feed

	// Health reports extra components on /health, e.g. the broker.
	Health func() fiber.Map
	// Quiet drops the request logger, for tests.
	Quiet bool
}

// New builds the application with every route registered.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "cardapio",
		ErrorHandler: handlers.ErrorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	if !d.Quiet {
		app.Use(logger.New()) // Request logger
	}
	app.Use(cors.New())

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if d.Health != nil {
			for k, v := range d.Health() {
				body[k] = v
			}
		}
		return c.Status(fiber.StatusOK).JSON(body)
	})

	// --- API Routes ---
	api := app.Group(APIPrefix)
	guard := handlers.Guard{
		middleware.AuthRequired(d.Auth),
		middleware.Authorize(d.Enforcer),
	}

	handlers.NewAuthHandler(d.Auth).RegisterRoutes(api)
	handlers.NewUserHandler(d.Users).RegisterRoutes(api, guard)
	handlers.NewAddressHandler(d.Addresses).RegisterRoutes(api, guard)
	handlers.NewCatalogHandler(d.Categories, d.Items).RegisterRoutes(api, guard)
	handlers.NewOrderHandler(d.Orders).RegisterRoutes(api, guard)
	handlers.NewDashboardHandler(d.Dashboard).RegisterRoutes(api, guard)

	if d.Hub != nil {
		api.Get("/ws/orders",
			middleware.AuthRequiredQuery(d.Auth),
			middleware.Authorize(d.Enforcer),
			realtime.Upgrade,
			d.Hub.Handler(),
		)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Route " + c.Method() + " " + c.Path() + " not found",
		})
	})
	return app
}
