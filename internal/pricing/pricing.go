// Package pricing owns the one total computation shared by the cart, order
// reads, quotes and the dashboard.
package pricing

import "github.com/shopspring/decimal"

// DeliveryFee is the fixed charge added to every order at checkout.
var DeliveryFee = decimal.RequireFromString("5.00")

// Line is anything priced as unit price times quantity.
type Line interface {
	LineUnitPrice() decimal.Decimal
	LineQuantity() int
}

// LineTotal returns unit price × quantity for a single line.
func LineTotal(l Line) decimal.Decimal {
	return l.LineUnitPrice().Mul(decimal.NewFromInt(int64(l.LineQuantity())))
}

// Subtotal sums the line totals.
func Subtotal[L Line](lines []L) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTotal(l))
	}
	return sum
}

// Total is the subtotal plus the delivery fee.
func Total[L Line](lines []L) decimal.Decimal {
	return Subtotal(lines).Add(DeliveryFee)
}

// Breakdown is the priced view of a set of lines.
type Breakdown struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

// Price computes the breakdown for lines.
func Price[L Line](lines []L) Breakdown {
	sub := Subtotal(lines)
	return Breakdown{
		Subtotal:    sub,
		DeliveryFee: DeliveryFee,
		Total:       sub.Add(DeliveryFee),
	}
}
