package models

import "github.com/shopspring/decimal"

// CartLine is a product snapshot plus the quantity selected.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price × quantity; malformed lines contribute zero.
func (l CartLine) Subtotal() decimal.Decimal {
	if l.Quantity <= 0 || !l.Product.Price.IsPositive() {
		return decimal.Zero
	}
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the read view of a session's cart.
type Cart struct {
	Items    []CartLine      `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	IsOpen   bool            `json:"is_open"`
}
