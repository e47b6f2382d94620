package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line in the customer's cart.
type CartItem struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name,omitempty"`
	VariantID  *string         `json:"variantId,omitempty"`
	ToppingIDs []string        `json:"toppingIds,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

// LineTotal returns unit price times quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// QuoteRequest asks the server to price a cart with authoritative data.
type QuoteRequest struct {
	OrderType    OrderType  `json:"orderType"`
	Items        []CartItem `json:"items"`
	DiscountCode *string    `json:"discountCode,omitempty"`
	PostalCode   string     `json:"postalCode,omitempty"`
	City         string     `json:"city,omitempty"`
	ZoneID       *uuid.UUID `json:"zoneId,omitempty"`
}

// ZoneResolveRequest is the payload for resolving a delivery zone.
type ZoneResolveRequest struct {
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
}
