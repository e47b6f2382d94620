package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem represents a dish on a restaurant's menu.
type MenuItem struct {
	ID           string          `json:"id" db:"id"`
	RestaurantID uuid.UUID       `json:"restaurantId" db:"restaurant_id"`
	Name         string          `json:"name" db:"name"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Category     string          `json:"category" db:"category"`
	Variants     []Variant       `json:"variants,omitempty" db:"variants"`
	Toppings     []ToppingOption `json:"toppings,omitempty" db:"toppings"`
	Upsell       bool            `json:"upsell" db:"upsell"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// Variant replaces the base price of a menu item (e.g. a size).
type Variant struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ToppingOption is an add-on priced on top of the item.
type ToppingOption struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// UnitPrice computes the price of one unit with the given variant and toppings.
// Unknown variant or topping ids yield ErrInvalidCartItem.
func (m *MenuItem) UnitPrice(variantID *string, toppingIDs []string) (decimal.Decimal, error) {
	price := m.Price
	if variantID != nil && *variantID != "" {
		found := false
		for _, v := range m.Variants {
			if v.ID == *variantID {
				price = v.Price
				found = true
				break
			}
		}
		if !found {
			return decimal.Zero, ErrInvalidCartItem
		}
	}
	for _, id := range toppingIDs {
		found := false
		for _, t := range m.Toppings {
			if t.ID == id {
				price = price.Add(t.Price)
				found = true
				break
			}
		}
		if !found {
			return decimal.Zero, ErrInvalidCartItem
		}
	}
	return price, nil
}
