package cart_test

import (
	"testing"

	"cardapio/internal/cart"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, price string) cart.Line {
	return cart.Line{ItemID: id, Description: "item " + id, UnitPrice: decimal.RequireFromString(price)}
}

func TestCart_AddItemIncrements(t *testing.T) {
	c := cart.New()
	c.AddItem(item("a", "10.00"))
	c.AddItem(item("a", "10.00"))
	c.AddItem(item("b", "5.50"))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].ItemID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "b", lines[1].ItemID)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.Equal(t, "30.50", c.Total().StringFixed(2))
}

func TestCart_UpdateQuantityClampsAtOne(t *testing.T) {
	c := cart.New()
	c.AddItem(item("a", "3.00"))

	c.UpdateQuantity("a", 0)
	assert.Equal(t, 1, c.Lines()[0].Quantity)

	c.UpdateQuantity("a", -4)
	assert.Equal(t, 1, c.Lines()[0].Quantity)
	assert.Equal(t, 1, c.Len(), "decrementing must never remove the line")

	c.UpdateQuantity("a", 7)
	assert.Equal(t, 7, c.Lines()[0].Quantity)
	assert.Equal(t, "21.00", c.Subtotal().StringFixed(2))

	c.UpdateQuantity("missing", 3)
	assert.Equal(t, 1, c.Len())
}

func TestCart_RemoveItem(t *testing.T) {
	c := cart.New()
	c.AddItem(item("a", "1.00"))
	c.AddItem(item("b", "2.00"))
	c.AddItem(item("c", "3.00"))

	c.RemoveItem("b")
	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].ItemID)
	assert.Equal(t, "c", lines[1].ItemID)

	// Index must follow the shifted lines.
	c.AddItem(item("c", "3.00"))
	assert.Equal(t, 2, c.Lines()[1].Quantity)
	assert.Equal(t, "7.00", c.Subtotal().StringFixed(2))
}

func TestCart_Clear(t *testing.T) {
	c := cart.New()
	c.AddItem(item("a", "1.00"))
	c.Clear()

	assert.True(t, c.Empty())
	assert.True(t, c.Subtotal().IsZero())

	c.AddItem(item("a", "1.00"))
	assert.Equal(t, 1, c.Lines()[0].Quantity)
}

func TestCart_AddQuantityIgnoresNonPositive(t *testing.T) {
	c := cart.New()
	c.AddQuantity(item("a", "1.00"), 0)
	assert.True(t, c.Empty())

	c.AddQuantity(item("a", "1.00"), 3)
	c.AddQuantity(item("a", "1.00"), 2)
	assert.Equal(t, 5, c.Lines()[0].Quantity)
}
