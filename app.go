package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/streadway/amqp"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cardapio/internal/authz"
	"cardapio/internal/cache"
	"cardapio/internal/config"
	"cardapio/internal/database"
	"cardapio/internal/realtime"
	"cardapio/internal/repositories"
	"cardapio/internal/seed"
	"cardapio/internal/server"
	"cardapio/internal/services"
	"cardapio/pkg/rabbitmq"
)

// realtimeBuffer is how many events a slow admin socket may lag behind.
const realtimeBuffer = 32

// App is the fully wired service.
type App struct {
	Fiber *fiber.App
	DB    *gorm.DB
	Auth  *services.AuthService
	Hub   *realtime.Hub
	MQ    *rabbitmq.Client // nil without RABBITMQ_URL
	Redis *cache.Redis     // nil without REDIS_URL
}

// NewApp opens the database, seeds it and wires every component described by cfg.
// The broker and the cache are optional: when they cannot be reached the app runs without them.
func NewApp(ctx context.Context, cfg config.Config, opts database.Options) (*App, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, opts)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	addressRepo := repositories.NewGORMAddressRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	itemRepo := repositories.NewGORMItemRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	seeder := seed.New(userRepo, categoryRepo, itemRepo)
	if err := seeder.EnsureAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return nil, fmt.Errorf("failed to seed admin: %w", err)
	}
	if cfg.SeedDemoMenu {
		if err := seeder.DemoMenu(ctx); err != nil {
			return nil, fmt.Errorf("failed to seed demo menu: %w", err)
		}
	}

	a := &App{DB: db, Hub: realtime.NewHub(realtimeBuffer)}

	var menuCache cache.MenuCache = cache.Noop{}
	if cfg.RedisURL != "" {
		r, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.MenuCacheTTL)
		if err != nil {
			log.Printf("Menu cache disabled: %v", err)
		} else {
			a.Redis = r
			menuCache = r
		}
	}

	publisher := services.MultiPublisher{a.Hub}
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
		if err != nil {
			log.Printf("Order events will not reach RabbitMQ: %v", err)
		} else {
			a.MQ = mq
			publisher = append(publisher, mq)
		}
	}

	// --- Initialize Services ---
	a.Auth = services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	deps := server.Deps{
		Auth:       a.Auth,
		Users:      services.NewUserService(userRepo),
		Addresses:  services.NewAddressService(addressRepo, userRepo),
		Categories: services.NewCategoryService(categoryRepo, menuCache),
		Items:      services.NewItemService(itemRepo, categoryRepo, menuCache),
		Orders:     services.NewOrderService(orderRepo, itemRepo, addressRepo, publisher, cfg.RabbitMQExchange),
		Dashboard:  services.NewDashboardService(orderRepo, userRepo, itemRepo),
		Hub:        a.Hub,
		Health:     a.health,
		Quiet:      opts.LogLevel == logger.Silent,
	}

	deps.Enforcer, err = authz.New(authz.DefaultRules(server.APIPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to build authorization policy: %w", err)
	}

	a.Fiber = server.New(deps)
	return a, nil
}

func (a *App) health() fiber.Map {
	status := func(on bool) string {
		if on {
			return "connected"
		}
		return "disabled"
	}
	return fiber.Map{
		"rabbitMQ":     status(a.MQ != nil),
		"cache":        status(a.Redis != nil),
		"realtimeSubs": a.Hub.Len(),
	}
}

// StartConsumer logs every order event that comes back from the broker.
func (a *App) StartConsumer() error {
	if a.MQ == nil {
		return nil
	}
	log.Println("Starting RabbitMQ consumer for orders...")
	return a.MQ.ConsumeOrderEvents(handleOrderEvent)
}

func handleOrderEvent(msg amqp.Delivery) error {
	ev, err := services.DecodeOrderEvent(msg.Body)
	if err != nil {
		return err
	}
	log.Printf("Received %s event (Tag: %d): order %s is %s, total %s",
		ev.Type, msg.DeliveryTag, ev.OrderID, ev.Status, ev.Total.StringFixed(2))
	return nil
}

// Close releases the broker, the cache and the database pool.
func (a *App) Close() {
	if a.MQ != nil {
		if err := a.MQ.Close(); err != nil {
			log.Printf("Error closing RabbitMQ client: %v", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
