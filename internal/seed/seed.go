// Package seed populates a fresh database with an administrator and an optional demo menu.
package seed

import (
	"context"
	"fmt"
	"log"

	"cardapio/internal/apperror"
	"cardapio/internal/models"
	"cardapio/internal/repositories"
	"cardapio/internal/services"

	"github.com/shopspring/decimal"
)

// Seeder writes the startup data through the repositories.
type Seeder struct {
	users      repositories.UserRepository
	categories repositories.CategoryRepository
	items      repositories.ItemRepository
}

func New(users repositories.UserRepository, categories repositories.CategoryRepository, items repositories.ItemRepository) *Seeder {
	return &Seeder{users: users, categories: categories, items: items}
}

// EnsureAdmin creates the administrator account unless the email is taken.
// An empty password disables it.
func (s *Seeder) EnsureAdmin(ctx context.Context, email, password string) error {
	if password == "" {
		log.Println("No admin password configured, skipping admin seed")
		return nil
	}
	if err := services.CheckPassword(password); err != nil {
		return fmt.Errorf("invalid SEED_ADMIN_PASSWORD: %w", err)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		log.Printf("Admin %s already exists (ID: %s), skipping", existing.Email, existing.ID)
		return nil
	}
	if apperror.KindOf(err) != apperror.KindNotFound {
		return fmt.Errorf("failed to check admin %s: %w", email, err)
	}

	hash, err := services.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Name:         "Administrator",
		Email:        email,
		Role:         models.RoleAdmin,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin %s: %w", email, err)
	}
	log.Printf("Seeded admin: %s (ID: %s)", admin.Email, admin.ID)
	return nil
}

type demoCategory struct {
	description string
	items       map[string]string
}

var demoMenu = []demoCategory{
	{"Pizzas", map[string]string{
		"Pizza Margherita": "42.90",
		"Pizza Calabresa":  "39.90",
		"Pizza Portuguesa": "45.50",
	}},
	{"Burgers", map[string]string{
		"X-Burger": "24.00",
		"X-Salada": "26.50",
		"X-Bacon":  "29.90",
	}},
	{"Drinks", map[string]string{
		"Cola 350ml":          "6.00",
		"Orange juice 500ml":  "9.50",
		"Mineral water 500ml": "4.00",
	}},
}

// DemoMenu fills an empty menu with sample categories and items.
func (s *Seeder) DemoMenu(ctx context.Context) error {
	existing, err := s.categories.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing categories: %w", err)
	}
	if len(existing) > 0 {
		log.Println("Menu already has categories, skipping demo menu")
		return nil
	}

	for _, dc := range demoMenu {
		category := &models.Category{Description: dc.description}
		if err := s.categories.Create(ctx, category); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", dc.description, err)
		}
		for description, price := range dc.items {
			item := &models.Item{
				Description: description,
				UnitPrice:   decimal.RequireFromString(price),
				CategoryID:  category.ID,
			}
			if err := s.items.Create(ctx, item); err != nil {
				log.Printf("Error seeding item %s: %v", description, err)
				continue
			}
			log.Printf("Seeded item: %s (ID: %s)", item.Description, item.ID)
		}
	}
	return nil
}
