package service

import (
	"context"

	"orderdesk/internal/model"
	"orderdesk/internal/pricing"
	"orderdesk/internal/schedule"
	"orderdesk/internal/zone"

	"github.com/google/uuid"
)

// MenuService defines read operations on restaurant menus.
type MenuService interface {
	// GetByRestaurant retrieves a restaurant's menu with pagination.
	GetByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit, offset int) ([]model.MenuItem, error)

	// GetByID retrieves a single menu item by ID.
	GetByID(ctx context.Context, id string) (*model.MenuItem, error)
}

// CheckoutService answers the lookups a checkout performs before ordering.
type CheckoutService interface {
	// Restaurant retrieves a restaurant's settings.
	Restaurant(ctx context.Context, restaurantID uuid.UUID) (*model.Restaurant, error)

	// Zones retrieves a restaurant's delivery zones.
	Zones(ctx context.Context, restaurantID uuid.UUID) ([]model.DeliveryZone, error)

	// TimingProfile reports preparation time and opening state for an order type and zone.
	TimingProfile(ctx context.Context, restaurantID uuid.UUID, orderType model.OrderType, zoneID *uuid.UUID) (*model.TimingProfile, error)

	// Slots lists the fulfilment times currently offered.
	Slots(ctx context.Context, restaurantID uuid.UUID, orderType model.OrderType, zoneID *uuid.UUID) ([]schedule.Slot, error)

	// ResolveZone maps a postal code and city to a delivery zone.
	ResolveZone(ctx context.Context, restaurantID uuid.UUID, postalCode, city string) (*zone.Resolution, error)

	// ValidateDiscount checks a discount code for a restaurant.
	ValidateDiscount(ctx context.Context, restaurantID uuid.UUID, code string) (*model.DiscountValidation, error)

	// Quote prices a cart with menu prices from the database.
	Quote(ctx context.Context, restaurantID uuid.UUID, req *model.QuoteRequest) (*pricing.Quote, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder re-validates a checkout draft and commits it. Submitting the
	// same draft again returns the order created the first time.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResult, error)

	// GetByID retrieves an order by its ID with all items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}
