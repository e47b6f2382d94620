package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderdesk/internal/discount"
	"orderdesk/internal/model"
	"orderdesk/internal/pricing"
	"orderdesk/internal/repository"
	"orderdesk/internal/schedule"
	"orderdesk/internal/zone"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	restaurantRepo repository.RestaurantRepository
	menuRepo       repository.MenuRepository
	validator      discount.Validator
	slots          *schedule.Generator
	now            func() time.Time
	logger         zerolog.Logger
}

// NewCheckoutService creates a new checkout service. A nil clock uses time.Now.
func NewCheckoutService(
	restaurantRepo repository.RestaurantRepository,
	menuRepo repository.MenuRepository,
	validator discount.Validator,
	slots schedule.Config,
	clock func() time.Time,
	logger zerolog.Logger,
) CheckoutService {
	if clock == nil {
		clock = time.Now
	}
	return &checkoutService{
		restaurantRepo: restaurantRepo,
		menuRepo:       menuRepo,
		validator:      validator,
		slots:          schedule.NewGenerator(slots),
		now:            clock,
		logger:         logger.With().Str("service", "checkout").Logger(),
	}
}

// Restaurant retrieves a restaurant's settings.
func (s *checkoutService) Restaurant(ctx context.Context, restaurantID uuid.UUID) (*model.Restaurant, error) {
	r, err := s.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		s.logger.Error().Err(err).Str("restaurant_id", restaurantID.String()).Msg("failed to get restaurant")
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	if r == nil {
		return nil, model.ErrRestaurantNotFound
	}
	return r, nil
}

// Zones retrieves a restaurant's delivery zones.
func (s *checkoutService) Zones(ctx context.Context, restaurantID uuid.UUID) ([]model.DeliveryZone, error) {
	if _, err := s.Restaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	zones, err := s.restaurantRepo.ListZones(ctx, restaurantID)
	if err != nil {
		s.logger.Error().Err(err).Str("restaurant_id", restaurantID.String()).Msg("failed to list zones")
		return nil, fmt.Errorf("failed to list delivery zones: %w", err)
	}
	return zones, nil
}

// TimingProfile reports preparation time and opening state for an order type and zone.
func (s *checkoutService) TimingProfile(ctx context.Context, restaurantID uuid.UUID, orderType model.OrderType, zoneID *uuid.UUID) (*model.TimingProfile, error) {
	r, zones, err := s.load(ctx, restaurantID, orderType)
	if err != nil {
		return nil, err
	}
	timing := timingFor(r, zones, orderType, zoneID, s.now())
	return &timing, nil
}

// Slots lists the fulfilment times currently offered. A manually closed
// restaurant offers none.
func (s *checkoutService) Slots(ctx context.Context, restaurantID uuid.UUID, orderType model.OrderType, zoneID *uuid.UUID) ([]schedule.Slot, error) {
	r, zones, err := s.load(ctx, restaurantID, orderType)
	if err != nil {
		return nil, err
	}
	if r.ManuallyClosed {
		return []schedule.Slot{}, nil
	}
	now := s.now()
	timing := timingFor(r, zones, orderType, zoneID, now)
	return s.slots.Collect(slotRequest(r, timing, now)), nil
}

// ResolveZone maps a postal code and city to a delivery zone. An unknown
// postal code yields a not-found resolution, not an error.
func (s *checkoutService) ResolveZone(ctx context.Context, restaurantID uuid.UUID, postalCode, city string) (*zone.Resolution, error) {
	zones, err := s.Zones(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	res, err := zone.Resolve(postalCode, city, zones)
	if err != nil {
		var domainErr *model.DomainError
		if !errors.As(err, &domainErr) {
			return nil, err
		}
	}

	s.logger.Debug().
		Str("restaurant_id", restaurantID.String()).
		Str("postal_code", res.PostalCode).
		Str("status", string(res.Status)).
		Int("candidates", len(res.Candidates)).
		Msg("zone resolved")

	return &res, nil
}

// ValidateDiscount checks a discount code. An unknown or expired code is a
// negative validation, not an error.
func (s *checkoutService) ValidateDiscount(ctx context.Context, restaurantID uuid.UUID, code string) (*model.DiscountValidation, error) {
	if _, err := s.Restaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	d, err := s.validator.Validate(ctx, restaurantID, code)
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == model.ErrCodeInvalidDiscountCode {
			return &model.DiscountValidation{Valid: false, Error: domainErr.Message}, nil
		}
		s.logger.Error().Err(err).Str("restaurant_id", restaurantID.String()).Msg("failed to validate discount code")
		return nil, fmt.Errorf("failed to validate discount code: %w", err)
	}

	value := d.Value
	minimum := d.MinimumOrderValue
	return &model.DiscountValidation{
		Valid:             true,
		Code:              d.Code,
		DiscountType:      d.Type,
		DiscountValue:     &value,
		MinimumOrderValue: &minimum,
	}, nil
}

// Quote prices a cart with menu prices from the database. A delivery quote
// without a postal code is returned with ZonePending set.
func (s *checkoutService) Quote(ctx context.Context, restaurantID uuid.UUID, req *model.QuoteRequest) (*pricing.Quote, error) {
	if req == nil {
		return nil, model.ErrEmptyCart
	}
	orderType := req.OrderType
	if orderType == "" {
		orderType = model.OrderTypePickup
	}
	if !orderType.Valid() {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Order type must be pickup or delivery")
	}

	r, zones, err := s.load(ctx, restaurantID, orderType)
	if err != nil {
		return nil, err
	}

	items, err := priceItems(ctx, s.menuRepo, r.ID, req.Items)
	if err != nil {
		return nil, err
	}

	in := pricing.Input{OrderType: orderType, Items: items}

	if orderType == model.OrderTypeDelivery && req.PostalCode != "" {
		z, err := selectZone(zones, req.PostalCode, req.City, req.ZoneID)
		if err != nil {
			return nil, err
		}
		in.Zone = z
	}

	if req.DiscountCode != nil && *req.DiscountCode != "" {
		d, err := s.validator.Validate(ctx, r.ID, *req.DiscountCode)
		if err != nil {
			return nil, err
		}
		in.Discount = d
	}

	q := pricing.Calculate(in).Rounded()
	return &q, nil
}

// load fetches the restaurant and, for delivery, its zones.
func (s *checkoutService) load(ctx context.Context, restaurantID uuid.UUID, orderType model.OrderType) (*model.Restaurant, []model.DeliveryZone, error) {
	r, err := s.Restaurant(ctx, restaurantID)
	if err != nil {
		return nil, nil, err
	}
	if orderType != model.OrderTypeDelivery {
		return r, nil, nil
	}
	zones, err := s.restaurantRepo.ListZones(ctx, restaurantID)
	if err != nil {
		s.logger.Error().Err(err).Str("restaurant_id", restaurantID.String()).Msg("failed to list zones")
		return nil, nil, fmt.Errorf("failed to list delivery zones: %w", err)
	}
	return r, zones, nil
}
