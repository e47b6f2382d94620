package repository

import (
	"context"
	"testing"
	"time"

	"orderdesk/internal/database"
	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the application schema.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping database test")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Create connection pool
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	// Cleanup function
	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func weekHours() model.OpeningHours {
	return model.OpeningHours{
		"mon": {Open: "11:00", Close: "22:00"},
		"tue": {Open: "11:00", Close: "22:00"},
		"fri": {Open: "17:00", Close: "02:00"},
	}
}

// seedRestaurant inserts a restaurant and returns it.
func seedRestaurant(t *testing.T, pool *pgxpool.Pool, name string) *model.Restaurant {
	t.Helper()
	rest := &model.Restaurant{
		ID:               uuid.New(),
		Name:             name,
		Timezone:         "Europe/Berlin",
		OpeningHours:     weekHours(),
		AcceptsPreOrders: true,
	}
	require.NoError(t, NewRestaurantRepository(pool, zerolog.Nop()).Create(context.Background(), rest))
	return rest
}

// seedMenuItems inserts menu items for a restaurant.
func seedMenuItems(t *testing.T, pool *pgxpool.Pool, restaurantID uuid.UUID, items ...model.MenuItem) {
	t.Helper()
	repo := NewMenuRepository(pool, zerolog.Nop())
	for i := range items {
		items[i].RestaurantID = restaurantID
		require.NoError(t, repo.Create(context.Background(), &items[i]))
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
