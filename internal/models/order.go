package models

import (
	"time"

	"cardapio/internal/pricing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem represents a single line within an order.
type OrderItem struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string          `json:"orderId" gorm:"type:varchar(36);not null;index"`
	ItemID    string          `json:"itemId" gorm:"type:varchar(36);not null;index"`
	Item      *Item           `json:"item,omitempty" gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT"`
	Position  int             `json:"-" gorm:"not null;default:0"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2);not null"` // Price at the time of order
}

func (oi OrderItem) LineUnitPrice() decimal.Decimal { return oi.UnitPrice }
func (oi OrderItem) LineQuantity() int              { return oi.Quantity }

// Order represents a placed purchase. A nil AddressID means pickup.
type Order struct {
	ID            string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ClientID      string        `json:"clientId" gorm:"type:varchar(36);not null;index"`
	Client        *User         `json:"client,omitempty" gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT"`
	AddressID     *string       `json:"addressId" gorm:"type:varchar(36);index"`
	Address       *Address      `json:"address,omitempty" gorm:"foreignKey:AddressID;constraint:OnDelete:RESTRICT"`
	PaymentMethod PaymentMethod `json:"paymentMethod" gorm:"type:varchar(10);not null"`
	Status        OrderStatus   `json:"status" gorm:"type:varchar(12);not null;index"`
	Items         []OrderItem   `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time     `json:"updatedAt"`

	// Computed on read, never stored.
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"-"`
	DeliveryFee decimal.Decimal `json:"deliveryFee" gorm:"-"`
	Total       decimal.Decimal `json:"total" gorm:"-"`
}

// Pickup reports whether the order has no delivery address.
func (o *Order) Pickup() bool { return o.AddressID == nil }

// ComputeTotals fills the derived price fields from the order's lines.
func (o *Order) ComputeTotals() {
	b := pricing.Price(o.Items)
	o.Subtotal = b.Subtotal
	o.DeliveryFee = b.DeliveryFee
	o.Total = b.Total
}

// AfterFind runs once preloads are done, so Items are populated when present.
func (o *Order) AfterFind(tx *gorm.DB) error {
	o.ComputeTotals()
	return nil
}
