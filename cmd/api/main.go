package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderdesk/internal/cache"
	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/discount"
	"orderdesk/internal/handler"
	"orderdesk/internal/repository"
	"orderdesk/internal/router"
	"orderdesk/internal/service"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting orderdesk API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize repositories
	restaurantRepo := repository.NewRestaurantRepository(pool, logger)
	menuRepo := repository.NewMenuRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	validator, err := newDiscountValidator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize discount validator: %w", err)
	}
	defer validator.Close()

	// Submission locks live in Redis when configured so that every API
	// instance sees them; a single instance can do with the in-process locker.
	var locker cache.Locker
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer client.Close()
		locker = cache.NewRedisLocker(client)
	} else {
		logger.Info().Msg("redis disabled, using in-process submission locks")
		locker = cache.NewLocalLocker()
	}

	// Initialize services
	menuService := service.NewMenuService(menuRepo, logger)
	checkoutService := service.NewCheckoutService(restaurantRepo, menuRepo, validator, cfg.Checkout.SlotConfig(), nil, logger)
	orderService := service.NewOrderService(orderRepo, restaurantRepo, menuRepo, validator, locker, service.OrderConfig{
		Slots:   cfg.Checkout.SlotConfig(),
		LockTTL: time.Duration(cfg.Redis.LockTTL) * time.Second,
	}, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Menu:     handler.NewMenuHandler(menuService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
	}, func(ctx context.Context) error { return pool.Ping(ctx) }, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the servers
	serverErrors := make(chan error, 2)

	var (
		grpcServer   *grpc.Server
		healthServer *health.Server
	)
	if cfg.Health.Enabled {
		lis, err := net.Listen("tcp", cfg.Health.Address())
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Health.Address(), err)
		}
		grpcServer = grpc.NewServer()
		healthServer = health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

		go func() {
			logger.Info().
				Str("address", cfg.Health.Address()).
				Msg("gRPC health server started")
			if err := grpcServer.Serve(lis); err != nil {
				serverErrors <- fmt.Errorf("grpc health server: %w", err)
			}
		}()
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		if healthServer != nil {
			healthServer.Shutdown()
		}

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		if grpcServer != nil {
			grpcServer.GracefulStop()
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newDiscountValidator loads the discount catalogue, preferring S3 when enabled.
func newDiscountValidator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (discount.Validator, error) {
	fileLoader := discount.NewFileLoader(logger)

	var s3Loader discount.Loader
	if cfg.S3.Enabled {
		l, err := discount.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = l
		}
	} else {
		logger.Info().Msg("using local file system for discount files (S3 disabled)")
	}

	loader := discount.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)

	return discount.NewValidator(ctx, &discount.ValidatorConfig{
		FilePaths: cfg.Discount.FilePaths,
	}, loader, logger)
}
