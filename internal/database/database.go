package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"cardapio/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options tune how the connection is opened.
type Options struct {
	LogLevel logger.LogLevel
}

// Open connects to the database selected by driver ("postgres" or "sqlite").
func Open(driver, dsn string, opts Options) (*gorm.DB, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	gormConfig := &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  opts.LogLevel,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
		// Surface duplicate keys and FK violations as gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if driver == "sqlite" {
		// SQLite allows a single writer; one connection serializes transactions
		// instead of failing them with "database is locked".
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
		}
		return db, nil
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// OpenMemory opens a private in-memory SQLite database, used by tests and demos.
func OpenMemory(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	return Open("sqlite", dsn, Options{LogLevel: logger.Silent})
}

// Migrate creates or updates every table, parents before children.
func Migrate(db *gorm.DB) error {
	steps := []struct {
		name  string
		model interface{}
	}{
		{"users", &models.User{}},
		{"addresses", &models.Address{}},
		{"categories", &models.Category{}},
		{"items", &models.Item{}},
		{"orders", &models.Order{}},
		{"order_items", &models.OrderItem{}},
	}
	for _, s := range steps {
		if err := db.AutoMigrate(s.model); err != nil {
			return fmt.Errorf("failed to migrate %s table: %w", s.name, err)
		}
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_orders_client_created
		ON orders(client_id, created_at)
	`).Error; err != nil {
		return fmt.Errorf("failed to create orders index: %w", err)
	}
	return nil
}
