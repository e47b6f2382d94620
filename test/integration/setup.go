package integration

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/model"
	"orderdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Fixture is the restaurant seeded by SeedRestaurant.
type Fixture struct {
	Restaurant model.Restaurant
	Mitte      model.DeliveryZone
	Wedding    model.DeliveryZone
	WeddingN   model.DeliveryZone
	Menu       []model.MenuItem
}

// SeedRestaurant inserts a Berlin restaurant open 11:00 to 22:00 every day,
// three delivery zones (13349 is served by two of them) and a small menu.
func SeedRestaurant(t *testing.T, pool *pgxpool.Pool) Fixture {
	t.Helper()

	ctx := context.Background()
	logger := zerolog.Nop()
	restaurants := repository.NewRestaurantRepository(pool, logger)
	menu := repository.NewMenuRepository(pool, logger)

	hours := model.OpeningHours{}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		hours[day] = &model.DayHours{Open: "11:00", Close: "22:00"}
	}
	pickup := 20
	f := Fixture{
		Restaurant: model.Restaurant{
			ID:                       uuid.New(),
			Name:                     "Trattoria Integration",
			Timezone:                 "Europe/Berlin",
			OpeningHours:             hours,
			AcceptsPreOrders:         true,
			PickupPreparationMinutes: &pickup,
		},
	}
	if err := restaurants.Create(ctx, &f.Restaurant); err != nil {
		t.Fatalf("failed to seed restaurant: %v", err)
	}

	prep := 40
	f.Mitte = model.DeliveryZone{
		ID: uuid.New(), RestaurantID: f.Restaurant.ID, Name: "Mitte",
		PostalCodes: []string{"10115", "10117"},
		Price:       decimal.RequireFromString("2.50"), MinimumOrderValue: decimal.NewFromInt(15),
		PreparationMinutes: &prep,
	}
	f.Wedding = model.DeliveryZone{
		ID: uuid.New(), RestaurantID: f.Restaurant.ID, Name: "Wedding",
		PostalCodes: []string{"13347", "13349"},
		Price:       decimal.RequireFromString("3.50"), MinimumOrderValue: decimal.NewFromInt(20),
	}
	f.WeddingN = model.DeliveryZone{
		ID: uuid.New(), RestaurantID: f.Restaurant.ID, Name: "Wedding Nord",
		PostalCodes: []string{"13349"},
		Price:       decimal.RequireFromString("4.00"), MinimumOrderValue: decimal.NewFromInt(25),
	}
	for _, z := range []*model.DeliveryZone{&f.Mitte, &f.Wedding, &f.WeddingN} {
		if err := restaurants.CreateZone(ctx, z); err != nil {
			t.Fatalf("failed to seed zone %s: %v", z.Name, err)
		}
	}

	prefix := f.Restaurant.ID.String()[:8] + "-"
	f.Menu = []model.MenuItem{
		{
			ID: prefix + "margherita", RestaurantID: f.Restaurant.ID, Name: "Pizza Margherita", Category: "Pizza",
			Price:    decimal.RequireFromString("9.50"),
			Variants: []model.Variant{{ID: "large", Name: "32 cm", Price: decimal.RequireFromString("12.00")}},
			Toppings: []model.ToppingOption{{ID: "olives", Name: "Oliven", Price: decimal.RequireFromString("1.00")}},
		},
		{
			ID: prefix + "tiramisu", RestaurantID: f.Restaurant.ID, Name: "Tiramisu", Category: "Dessert",
			Price: decimal.RequireFromString("5.50"), Upsell: true,
		},
	}
	for i := range f.Menu {
		if err := menu.Create(ctx, &f.Menu[i]); err != nil {
			t.Fatalf("failed to seed menu item %s: %v", f.Menu[i].ID, err)
		}
	}

	return f
}

// WriteDiscountFile writes a gzipped discount catalogue into a temp dir and
// returns its path.
func WriteDiscountFile(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "discounts.gz")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create discount file: %v", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	for _, line := range lines {
		if _, err := fmt.Fprintln(gz, line); err != nil {
			t.Fatalf("failed to write discount: %v", err)
		}
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close discount file: %v", err)
	}
	return path
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "menu_items", "delivery_zones", "restaurants"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
