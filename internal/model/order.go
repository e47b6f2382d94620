package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// Valid reports whether p is a known payment method.
func (p PaymentMethod) Valid() bool {
	return p == PaymentCash || p == PaymentCard
}

// Contact holds the customer's contact fields.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Address holds the delivery address fields.
type Address struct {
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	Notes       string `json:"notes,omitempty"`
}

// Complete reports whether every required address field is present.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.HouseNumber) != "" &&
		strings.TrimSpace(a.PostalCode) != "" &&
		strings.TrimSpace(a.City) != ""
}

// Compose renders the address as a single line.
func (a Address) Compose() string {
	line := strings.TrimSpace(a.Street) + " " + strings.TrimSpace(a.HouseNumber) + ", " +
		strings.TrimSpace(a.PostalCode) + " " + strings.TrimSpace(a.City)
	if notes := strings.TrimSpace(a.Notes); notes != "" {
		line += " (" + notes + ")"
	}
	return line
}

// Order represents a committed customer order.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	RestaurantID    uuid.UUID       `json:"restaurantId" db:"restaurant_id"`
	OrderNumber     int64           `json:"orderNumber" db:"order_number"`
	DraftID         uuid.UUID       `json:"draftId" db:"draft_id"`
	OrderType       OrderType       `json:"orderType" db:"order_type"`
	CustomerName    string          `json:"customerName" db:"customer_name"`
	CustomerPhone   string          `json:"customerPhone" db:"customer_phone"`
	CustomerEmail   string          `json:"customerEmail,omitempty" db:"customer_email"`
	DeliveryAddress *string         `json:"deliveryAddress,omitempty" db:"delivery_address"`
	ZoneID          *uuid.UUID      `json:"zoneId,omitempty" db:"zone_id"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	DiscountCode    *string         `json:"discountCode,omitempty" db:"discount_code"`
	DiscountAmount  decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee" db:"delivery_fee"`
	Total           decimal.Decimal `json:"total" db:"total"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	FulfillmentAt   time.Time       `json:"fulfillmentAt" db:"fulfillment_at"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID         uuid.UUID       `json:"-" db:"id"`
	OrderID    uuid.UUID       `json:"-" db:"order_id"`
	MenuItemID string          `json:"menuItemId" db:"menu_item_id"`
	VariantID  *string         `json:"variantId,omitempty" db:"variant_id"`
	ToppingIDs []string        `json:"toppingIds,omitempty" db:"topping_ids"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice" db:"unit_price"`
}

// OrderRequest is the draft snapshot submitted to create an order.
type OrderRequest struct {
	DraftID        uuid.UUID       `json:"draftId"`
	RestaurantID   uuid.UUID       `json:"restaurantId"`
	OrderType      OrderType       `json:"orderType"`
	Contact        Contact         `json:"contact"`
	Address        *string         `json:"address,omitempty"`
	PostalCode     string          `json:"postalCode,omitempty"`
	ZoneID         *uuid.UUID      `json:"zoneId,omitempty"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	DiscountCode   *string         `json:"discountCode,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Items          []CartItem      `json:"items"`
	FulfillmentAt  time.Time       `json:"fulfillmentAt"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
}

// OrderResult is the outcome of an order-creation call.
type OrderResult struct {
	Success     bool       `json:"success"`
	OrderID     *uuid.UUID `json:"orderId,omitempty"`
	OrderNumber *int64     `json:"orderNumber,omitempty"`
	Error       string     `json:"error,omitempty"`
	Code        string     `json:"code,omitempty"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
