package repository

import (
	"context"
	"errors"

	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrDraftConflict is returned when an order for the same draft already exists.
var ErrDraftConflict = errors.New("an order for this draft already exists")

// RestaurantRepository defines data access for restaurants and their delivery zones.
type RestaurantRepository interface {
	// GetByID retrieves a restaurant. It returns nil without error when none exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error)

	// ListZones retrieves the restaurant's delivery zones ordered by name.
	ListZones(ctx context.Context, restaurantID uuid.UUID) ([]model.DeliveryZone, error)

	// Create inserts a restaurant.
	Create(ctx context.Context, r *model.Restaurant) error

	// CreateZone inserts a delivery zone.
	CreateZone(ctx context.Context, z *model.DeliveryZone) error
}

// MenuRepository defines data access for menu items.
type MenuRepository interface {
	// GetByRestaurant retrieves a restaurant's menu with pagination support.
	GetByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit, offset int) ([]model.MenuItem, error)

	// GetByID retrieves a single menu item by its ID.
	GetByID(ctx context.Context, id string) (*model.MenuItem, error)

	// GetByIDs retrieves the restaurant's menu items with the given IDs.
	// Items of other restaurants are not returned.
	GetByIDs(ctx context.Context, restaurantID uuid.UUID, ids []string) ([]model.MenuItem, error)

	// Create inserts a menu item.
	Create(ctx context.Context, item *model.MenuItem) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// NextOrderNumber reserves the restaurant's next sequential order number
	// within the transaction.
	NextOrderNumber(ctx context.Context, tx pgx.Tx, restaurantID uuid.UUID) (int64, error)

	// CreateOrder inserts a new order within the provided transaction.
	// It returns ErrDraftConflict when the draft was already ordered.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetByDraftID retrieves the order created from a checkout draft, or nil.
	GetByDraftID(ctx context.Context, draftID uuid.UUID) (*model.Order, error)
}
