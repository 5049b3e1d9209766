package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups items on the menu.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Description string    `json:"description" gorm:"type:varchar(120);not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Item is a sellable product.
type Item struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Description string          `json:"description" gorm:"type:varchar(255);not null"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2);not null"`
	CategoryID  string          `json:"categoryId" gorm:"type:varchar(36);not null;index"`
	Category    *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
