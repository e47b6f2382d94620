package discount

import (
	"context"
	"fmt"
	"sync"
	"time"

	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxCodeLength bounds the accepted length of a discount code.
const maxCodeLength = 32

// validator implements Validator over catalogues merged at start-up.
type validator struct {
	catalog *mapCatalog
	now     func() time.Time
	logger  zerolog.Logger
}

// ValidatorConfig holds configuration for the discount validator.
type ValidatorConfig struct {
	// FilePaths is the list of catalogue files to load. Later files override
	// earlier ones for the same restaurant and code.
	FilePaths []string

	// Clock returns the current time used for expiry checks. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultValidatorConfig returns the default validator configuration.
func DefaultValidatorConfig() *ValidatorConfig {
	return &ValidatorConfig{
		FilePaths: []string{
			"data/discounts/discounts.gz",
		},
	}
}

// NewValidator creates a new discount validator.
// It loads all catalogue files at initialization time.
func NewValidator(ctx context.Context, config *ValidatorConfig, loader Loader, logger zerolog.Logger) (Validator, error) {
	if config == nil {
		config = DefaultValidatorConfig()
	}

	logger = logger.With().Str("component", "discount-validator").Logger()

	logger.Info().
		Int("file_count", len(config.FilePaths)).
		Msg("initialising discount validator")

	now := config.Clock
	if now == nil {
		now = time.Now
	}

	v := &validator{
		catalog: newMapCatalog(1024),
		now:     now,
		logger:  logger,
	}

	// Load all catalogue files concurrently
	type loadResult struct {
		index   int
		catalog Catalog
		err     error
	}

	resultChan := make(chan loadResult, len(config.FilePaths))
	var wg sync.WaitGroup

	for i, filePath := range config.FilePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			catalog, err := loader.Load(ctx, path)
			resultChan <- loadResult{
				index:   index,
				catalog: catalog,
				err:     err,
			}
		}(i, filePath)
	}

	wg.Wait()
	close(resultChan)

	// Collect results in order so overrides are deterministic
	results := make([]loadResult, len(config.FilePaths))
	for result := range resultChan {
		results[result.index] = result
	}

	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", config.FilePaths[i]).
				Msg("failed to load discount file")
			return nil, fmt.Errorf("failed to load discount file %s: %w", config.FilePaths[i], result.err)
		}
		mc, ok := result.catalog.(*mapCatalog)
		if !ok {
			return nil, fmt.Errorf("unsupported catalog type %T from %s", result.catalog, config.FilePaths[i])
		}
		v.catalog.merge(mc)
		logger.Info().
			Str("file", config.FilePaths[i]).
			Int("size", mc.Size()).
			Msg("discount file loaded")
	}

	logger.Info().
		Int("total_discounts", v.catalog.Size()).
		Msg("discount validator initialised successfully")

	return v, nil
}

// Validate checks a code for a restaurant. Codes are case-insensitive.
func (v *validator) Validate(ctx context.Context, restaurantID uuid.UUID, code string) (*model.DiscountCode, error) {
	normalized := model.NormalizeDiscountCode(code)
	if normalized == "" || len(normalized) > maxCodeLength {
		v.logger.Debug().
			Int("length", len(normalized)).
			Msg("discount code length invalid")
		return nil, model.ErrInvalidDiscountCode
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry, ok := v.catalog.Lookup(restaurantID, normalized)
	if !ok {
		v.logger.Debug().
			Str("restaurant_id", restaurantID.String()).
			Str("discount_code", normalized).
			Msg("discount code not found")
		return nil, model.ErrInvalidDiscountCode
	}

	if entry.Expired(v.now()) {
		v.logger.Debug().
			Str("restaurant_id", restaurantID.String()).
			Str("discount_code", normalized).
			Time("valid_until", *entry.ValidUntil).
			Msg("discount code expired")
		return nil, model.ErrInvalidDiscountCode
	}

	v.logger.Debug().
		Str("restaurant_id", restaurantID.String()).
		Str("discount_code", normalized).
		Msg("discount code validated successfully")

	discount := entry.Discount
	return &discount, nil
}

// Close releases resources held by the validator.
func (v *validator) Close() error {
	v.catalog = newMapCatalog(0)

	v.logger.Info().Msg("discount validator closed")

	return nil
}
