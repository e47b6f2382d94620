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

// restaurantRepository implements RestaurantRepository using PostgreSQL.
type restaurantRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRestaurantRepository creates a new PostgreSQL-backed restaurant repository.
func NewRestaurantRepository(pool *pgxpool.Pool, logger zerolog.Logger) RestaurantRepository {
	return &restaurantRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "restaurant").Logger(),
	}
}

func (r *restaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	query := `
		SELECT id, name, timezone, opening_hours, manually_closed, accepts_pre_orders,
		       pickup_preparation_minutes, created_at
		FROM restaurants
		WHERE id = $1
	`

	var rest model.Restaurant
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rest.ID,
		&rest.Name,
		&rest.Timezone,
		&rest.OpeningHours,
		&rest.ManuallyClosed,
		&rest.AcceptsPreOrders,
		&rest.PickupPreparationMinutes,
		&rest.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("restaurant_id", id.String()).Msg("restaurant not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("restaurant_id", id.String()).Msg("failed to query restaurant")
		return nil, fmt.Errorf("failed to query restaurant: %w", err)
	}

	return &rest, nil
}

func (r *restaurantRepository) ListZones(ctx context.Context, restaurantID uuid.UUID) ([]model.DeliveryZone, error) {
	query := `
		SELECT id, restaurant_id, name, postal_codes, price, minimum_order_value, area, preparation_minutes
		FROM delivery_zones
		WHERE restaurant_id = $1
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		r.logger.Error().Err(err).Str("restaurant_id", restaurantID.String()).Msg("failed to query delivery zones")
		return nil, fmt.Errorf("failed to query delivery zones: %w", err)
	}
	defer rows.Close()

	zones := []model.DeliveryZone{}
	for rows.Next() {
		var z model.DeliveryZone
		err := rows.Scan(&z.ID, &z.RestaurantID, &z.Name, &z.PostalCodes, &z.Price, &z.MinimumOrderValue, &z.Area, &z.PreparationMinutes)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan delivery zone row")
			return nil, fmt.Errorf("failed to scan delivery zone: %w", err)
		}
		zones = append(zones, z)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating delivery zone rows")
		return nil, fmt.Errorf("error iterating delivery zones: %w", err)
	}

	return zones, nil
}

func (r *restaurantRepository) Create(ctx context.Context, rest *model.Restaurant) error {
	query := `
		INSERT INTO restaurants (id, name, timezone, opening_hours, manually_closed, accepts_pre_orders, pickup_preparation_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	hours := rest.OpeningHours
	if hours == nil {
		hours = model.OpeningHours{}
	}

	err := r.pool.QueryRow(ctx, query,
		rest.ID, rest.Name, rest.Timezone, hours, rest.ManuallyClosed, rest.AcceptsPreOrders, rest.PickupPreparationMinutes,
	).Scan(&rest.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("restaurant_id", rest.ID.String()).Msg("failed to create restaurant")
		return fmt.Errorf("failed to create restaurant: %w", err)
	}
	return nil
}

func (r *restaurantRepository) CreateZone(ctx context.Context, z *model.DeliveryZone) error {
	query := `
		INSERT INTO delivery_zones (id, restaurant_id, name, postal_codes, price, minimum_order_value, area, preparation_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	codes := z.PostalCodes
	if codes == nil {
		codes = []string{}
	}

	_, err := r.pool.Exec(ctx, query, z.ID, z.RestaurantID, z.Name, codes, z.Price, z.MinimumOrderValue, z.Area, z.PreparationMinutes)
	if err != nil {
		r.logger.Error().Err(err).Str("zone_id", z.ID.String()).Msg("failed to create delivery zone")
		return fmt.Errorf("failed to create delivery zone: %w", err)
	}
	return nil
}
