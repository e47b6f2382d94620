package repository

import (
	"context"
	"errors"
	"fmt"

	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const menuItemColumns = `id, restaurant_id, name, price, category, variants, toppings, upsell, created_at`

// menuRepository implements the MenuRepository interface using PostgreSQL.
type menuRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMenuRepository creates a new PostgreSQL-backed menu repository.
func NewMenuRepository(pool *pgxpool.Pool, logger zerolog.Logger) MenuRepository {
	return &menuRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "menu").Logger(),
	}
}

func scanMenuItem(row pgx.Row) (model.MenuItem, error) {
	var m model.MenuItem
	err := row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Price, &m.Category, &m.Variants, &m.Toppings, &m.Upsell, &m.CreatedAt)
	return m, err
}

// GetByRestaurant retrieves a restaurant's menu with pagination support.
func (r *menuRepository) GetByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit, offset int) ([]model.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE restaurant_id = $1
		ORDER BY category, name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, restaurantID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Str("restaurant_id", restaurantID.String()).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query menu items")
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// GetByID retrieves a single menu item by its ID.
func (r *menuRepository) GetByID(ctx context.Context, id string) (*model.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE id = $1
	`

	m, err := scanMenuItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("menu_item_id", id).Msg("menu item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("menu_item_id", id).Msg("failed to query menu item")
		return nil, fmt.Errorf("failed to query menu item: %w", err)
	}

	return &m, nil
}

// GetByIDs retrieves the restaurant's menu items with the given IDs.
func (r *menuRepository) GetByIDs(ctx context.Context, restaurantID uuid.UUID, ids []string) ([]model.MenuItem, error) {
	if len(ids) == 0 {
		return []model.MenuItem{}, nil
	}

	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE restaurant_id = $1 AND id = ANY($2)
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, restaurantID, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query menu items by IDs")
		return nil, fmt.Errorf("failed to query menu items by IDs: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Create inserts a menu item.
func (r *menuRepository) Create(ctx context.Context, item *model.MenuItem) error {
	query := `
		INSERT INTO menu_items (id, restaurant_id, name, price, category, variants, toppings, upsell)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	variants := item.Variants
	if variants == nil {
		variants = []model.Variant{}
	}
	toppings := item.Toppings
	if toppings == nil {
		toppings = []model.ToppingOption{}
	}

	err := r.pool.QueryRow(ctx, query,
		item.ID, item.RestaurantID, item.Name, item.Price, item.Category, variants, toppings, item.Upsell,
	).Scan(&item.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("menu_item_id", item.ID).Msg("failed to create menu item")
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

func (r *menuRepository) collect(rows pgx.Rows) ([]model.MenuItem, error) {
	items := []model.MenuItem{}
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan menu item row")
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating menu item rows")
		return nil, fmt.Errorf("error iterating menu items: %w", err)
	}

	return items, nil
}
