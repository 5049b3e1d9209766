// Package cart holds candidate order lines before an order exists.
//
// A Cart is a plain value owned by whoever created it; it is not safe for
// concurrent use and nothing in it is persisted.
package cart

import (
	"cardapio/internal/pricing"

	"github.com/shopspring/decimal"
)

// Line is one candidate purchase.
type Line struct {
	ItemID      string          `json:"itemId"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

func (l Line) LineUnitPrice() decimal.Decimal { return l.UnitPrice }
func (l Line) LineQuantity() int              { return l.Quantity }

// Cart accumulates lines in insertion order.
type Cart struct {
	lines []Line
	index map[string]int
}

func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// AddItem increments the line for item by one, inserting it with quantity 1
// when absent.
func (c *Cart) AddItem(item Line) {
	c.AddQuantity(item, 1)
}

// AddQuantity adds n units of item. Non-positive n is ignored.
func (c *Cart) AddQuantity(item Line, n int) {
	if n < 1 {
		return
	}
	if i, ok := c.index[item.ItemID]; ok {
		c.lines[i].Quantity += n
		return
	}
	item.Quantity = n
	c.index[item.ItemID] = len(c.lines)
	c.lines = append(c.lines, item)
}

// UpdateQuantity sets the quantity of an existing line, clamped to at least 1.
// Unknown ids are ignored.
func (c *Cart) UpdateQuantity(itemID string, quantity int) {
	i, ok := c.index[itemID]
	if !ok {
		return
	}
	if quantity < 1 {
		quantity = 1
	}
	c.lines[i].Quantity = quantity
}

// RemoveItem deletes the line entirely.
func (c *Cart) RemoveItem(itemID string) {
	i, ok := c.index[itemID]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, itemID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ItemID] = j
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[string]int)
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// Subtotal is Σ unit price × quantity over the lines.
func (c *Cart) Subtotal() decimal.Decimal { return pricing.Subtotal(c.lines) }

// Total is the subtotal plus the delivery fee.
func (c *Cart) Total() decimal.Decimal { return pricing.Total(c.lines) }
