package repository

import (
	"context"
	"errors"
	"fmt"

	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	uniqueViolation = "23505"
	draftConstraint = "orders_draft_id_key"
)

const orderColumns = `id, restaurant_id, order_number, draft_id, order_type, customer_name, customer_phone,
		customer_email, delivery_address, zone_id, subtotal, discount_code, discount_amount, delivery_fee,
		total, payment_method, fulfillment_at, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// NextOrderNumber increments the restaurant's counter. The row lock it takes
// serialises concurrent orders of the same restaurant until tx ends.
func (r *orderRepository) NextOrderNumber(ctx context.Context, tx pgx.Tx, restaurantID uuid.UUID) (int64, error) {
	query := `
		UPDATE restaurants
		SET next_order_number = next_order_number + 1
		WHERE id = $1
		RETURNING next_order_number - 1
	`

	var number int64
	if err := tx.QueryRow(ctx, query, restaurantID).Scan(&number); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrRestaurantNotFound
		}
		r.logger.Error().Err(err).Str("restaurant_id", restaurantID.String()).Msg("failed to reserve order number")
		return 0, fmt.Errorf("failed to reserve order number: %w", err)
	}
	return number, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.RestaurantID,
		order.OrderNumber,
		order.DraftID,
		order.OrderType,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerEmail,
		order.DeliveryAddress,
		order.ZoneID,
		order.Subtotal,
		order.DiscountCode,
		order.DiscountAmount,
		order.DeliveryFee,
		order.Total,
		order.PaymentMethod,
		order.FulfillmentAt,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == draftConstraint {
			r.logger.Info().Str("draft_id", order.DraftID.String()).Msg("order for draft already exists")
			return ErrDraftConflict
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Int64("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, menu_item_id, variant_id, topping_ids, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		toppings := item.ToppingIDs
		if toppings == nil {
			toppings = []string{}
		}
		batch.Queue(query, item.ID, item.OrderID, item.MenuItemID, item.VariantID, toppings, item.Quantity, item.UnitPrice)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("menu_item_id", items[i].MenuItemID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.RestaurantID,
		&o.OrderNumber,
		&o.DraftID,
		&o.OrderType,
		&o.CustomerName,
		&o.CustomerPhone,
		&o.CustomerEmail,
		&o.DeliveryAddress,
		&o.ZoneID,
		&o.Subtotal,
		&o.DiscountCode,
		&o.DiscountAmount,
		&o.DeliveryFee,
		&o.Total,
		&o.PaymentMethod,
		&o.FulfillmentAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	orderQuery := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, orderQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, menu_item_id, variant_id, topping_ids, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Msg("failed to query order items")
		return nil, nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.VariantID, &item.ToppingIDs, &item.Quantity, &item.UnitPrice)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, items, nil
}

// GetByDraftID retrieves the order created from a checkout draft, or nil.
func (r *orderRepository) GetByDraftID(ctx context.Context, draftID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE draft_id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, draftID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("draft_id", draftID.String()).Msg("failed to query order by draft")
		return nil, fmt.Errorf("failed to query order by draft: %w", err)
	}
	return order, nil
}
