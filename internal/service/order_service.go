package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"orderdesk/internal/cache"
	"orderdesk/internal/discount"
	"orderdesk/internal/model"
	"orderdesk/internal/pricing"
	"orderdesk/internal/repository"
	"orderdesk/internal/schedule"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultLockTTL  = 30 * time.Second
	draftLockPrefix = "order:draft:"
)

// OrderConfig tunes order validation.
type OrderConfig struct {
	// Slots must match the configuration the slot endpoint uses.
	Slots schedule.Config
	// LockTTL bounds how long a draft stays locked while being submitted.
	LockTTL time.Duration
	// SlotGrace is how far the clock may have moved since the customer saw
	// the slot list. It defaults to, and is capped at, the slot rounding unit.
	SlotGrace time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// orderService implements OrderService.
type orderService struct {
	orderRepo      repository.OrderRepository
	restaurantRepo repository.RestaurantRepository
	menuRepo       repository.MenuRepository
	validator      discount.Validator
	locker         cache.Locker
	slots          *schedule.Generator
	lockTTL        time.Duration
	slotGrace      time.Duration
	now            func() time.Time
	logger         zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	restaurantRepo repository.RestaurantRepository,
	menuRepo repository.MenuRepository,
	validator discount.Validator,
	locker cache.Locker,
	cfg OrderConfig,
	logger zerolog.Logger,
) OrderService {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	slots := schedule.NewGenerator(cfg.Slots)
	rounding := slots.Config().Rounding
	if cfg.SlotGrace < 0 {
		cfg.SlotGrace = 0
	} else if cfg.SlotGrace == 0 || cfg.SlotGrace > rounding {
		cfg.SlotGrace = rounding
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &orderService{
		orderRepo:      orderRepo,
		restaurantRepo: restaurantRepo,
		menuRepo:       menuRepo,
		validator:      validator,
		locker:         locker,
		slots:          slots,
		lockTTL:        cfg.LockTTL,
		slotGrace:      cfg.SlotGrace,
		now:            cfg.Clock,
		logger:         logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder re-validates the draft against authoritative data and commits it.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResult, error) {
	// Validate request
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	log := s.logger.With().
		Str("draft_id", req.DraftID.String()).
		Str("restaurant_id", req.RestaurantID.String()).
		Logger()

	if res, err := s.replay(ctx, req.DraftID); res != nil || err != nil {
		return res, err
	}

	lockKey := draftLockPrefix + req.DraftID.String()
	acquired, err := s.locker.Acquire(ctx, lockKey, s.lockTTL)
	if err != nil {
		// The unique draft constraint still rejects a concurrent duplicate.
		log.Warn().Err(err).Msg("draft lock unavailable, relying on database constraint")
	} else if !acquired {
		log.Warn().Msg("draft is already being submitted")
		return nil, model.ErrDuplicateOrder
	} else {
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				log.Warn().Err(err).Msg("failed to release draft lock")
			}
		}()
	}

	order, items, err := s.buildOrder(ctx, req)
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			log.Info().Str("code", domainErr.Code).Msg("order rejected")
		}
		return nil, err
	}

	// Start transaction
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order.OrderNumber, err = s.orderRepo.NextOrderNumber(ctx, tx, order.RestaurantID)
	if err != nil {
		log.Error().Err(err).Msg("failed to reserve order number")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		if errors.Is(err, repository.ErrDraftConflict) {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
			err = nil
			if res, replayErr := s.replay(ctx, req.DraftID); res != nil || replayErr != nil {
				return res, replayErr
			}
			return nil, model.ErrDuplicateOrder
		}
		log.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		log.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	// Commit transaction
	if err = tx.Commit(ctx); err != nil {
		log.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	log.Info().
		Str("order_id", order.ID.String()).
		Int64("order_number", order.OrderNumber).
		Str("total", order.Total.StringFixed(2)).
		Int("item_count", len(items)).
		Msg("order created successfully")

	return successResult(order), nil
}

// GetByID retrieves an order by its ID with all items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, nil
	}

	return &model.OrderResponse{
		Order: *order,
		Items: items,
	}, nil
}

// replay returns the result of an order already created from the draft, or nil.
func (s *orderService) replay(ctx context.Context, draftID uuid.UUID) (*model.OrderResult, error) {
	existing, err := s.orderRepo.GetByDraftID(ctx, draftID)
	if err != nil {
		s.logger.Error().Err(err).Str("draft_id", draftID.String()).Msg("failed to look up draft")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if existing == nil {
		return nil, nil
	}
	s.logger.Info().
		Str("draft_id", draftID.String()).
		Str("order_id", existing.ID.String()).
		Msg("draft already ordered, returning existing order")
	return successResult(existing), nil
}

// buildOrder recomputes the order from the database and rejects any gate the
// draft no longer passes.
func (s *orderService) buildOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, []model.OrderItem, error) {
	r, err := s.restaurantRepo.GetByID(ctx, req.RestaurantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	if r == nil {
		return nil, nil, model.ErrRestaurantNotFound
	}
	if r.ManuallyClosed {
		return nil, nil, model.ErrManuallyClosed
	}

	now := s.now()
	var zones []model.DeliveryZone
	if req.OrderType == model.OrderTypeDelivery {
		if zones, err = s.restaurantRepo.ListZones(ctx, r.ID); err != nil {
			return nil, nil, fmt.Errorf("failed to list delivery zones: %w", err)
		}
	}

	cart, err := priceItems(ctx, s.menuRepo, r.ID, req.Items)
	if err != nil {
		return nil, nil, err
	}

	in := pricing.Input{OrderType: req.OrderType, Items: cart}

	var zoneID *uuid.UUID
	if req.OrderType == model.OrderTypeDelivery {
		z, err := selectZone(zones, req.PostalCode, "", req.ZoneID)
		if err != nil {
			return nil, nil, err
		}
		in.Zone = z
		zoneID = &z.ID
	}

	timing := timingFor(r, zones, req.OrderType, zoneID, now)
	if !timing.IsOpen && !timing.AcceptsPreOrders {
		return nil, nil, model.ErrRestaurantClosed
	}

	if req.DiscountCode != nil && strings.TrimSpace(*req.DiscountCode) != "" {
		d, err := s.validator.Validate(ctx, r.ID, *req.DiscountCode)
		if err != nil {
			return nil, nil, err
		}
		in.Discount = d
	}

	quote := pricing.Calculate(in)
	if err := quote.Err(); err != nil {
		return nil, nil, err
	}
	rounded := quote.Rounded()
	if !req.DeliveryFee.Round(2).Equal(rounded.DeliveryFee) {
		return nil, nil, model.NewPriceMismatchError("delivery fee", rounded.DeliveryFee)
	}
	if !req.DiscountAmount.Round(2).Equal(rounded.DiscountAmount) {
		return nil, nil, model.NewPriceMismatchError("discount", rounded.DiscountAmount)
	}

	slotReq := slotRequest(r, timing, now.Add(-s.slotGrace))
	if !s.slots.Accepts(slotReq, req.FulfillmentAt) || req.FulfillmentAt.Before(now) {
		return nil, nil, model.ErrInvalidSlot
	}

	created := now.UTC()
	order := &model.Order{
		ID:             uuid.New(),
		RestaurantID:   r.ID,
		DraftID:        req.DraftID,
		OrderType:      req.OrderType,
		CustomerName:   strings.TrimSpace(req.Contact.Name),
		CustomerPhone:  strings.TrimSpace(req.Contact.Phone),
		CustomerEmail:  strings.TrimSpace(req.Contact.Email),
		ZoneID:         zoneID,
		Subtotal:       rounded.Subtotal,
		DiscountAmount: rounded.DiscountAmount,
		DeliveryFee:    rounded.DeliveryFee,
		Total:          rounded.Total,
		PaymentMethod:  req.PaymentMethod,
		FulfillmentAt:  req.FulfillmentAt.Truncate(time.Minute).UTC(),
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	if req.OrderType == model.OrderTypeDelivery {
		addr := strings.TrimSpace(*req.Address)
		order.DeliveryAddress = &addr
	}
	if in.Discount != nil && quote.DiscountEligible {
		code := in.Discount.Code
		order.DiscountCode = &code
	}

	items := make([]model.OrderItem, len(cart))
	for i, item := range cart {
		items[i] = model.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			MenuItemID: item.MenuItemID,
			VariantID:  item.VariantID,
			ToppingIDs: item.ToppingIDs,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.Round(2),
		}
	}

	return order, items, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeMissingField, "Order request is empty")
	}
	if req.DraftID == uuid.Nil {
		return model.NewDomainError(model.ErrCodeMissingField, "Draft ID is required")
	}
	if req.RestaurantID == uuid.Nil {
		return model.NewDomainError(model.ErrCodeMissingField, "Restaurant ID is required")
	}
	if !req.OrderType.Valid() {
		return model.NewDomainError(model.ErrCodeMissingField, "Order type must be pickup or delivery")
	}
	if !req.PaymentMethod.Valid() {
		return model.NewDomainError(model.ErrCodeMissingField, "Payment method must be cash or card")
	}
	if strings.TrimSpace(req.Contact.Name) == "" {
		return model.ErrMissingName
	}
	if strings.TrimSpace(req.Contact.Phone) == "" {
		return model.ErrMissingPhone
	}
	if req.OrderType == model.OrderTypeDelivery {
		if req.Address == nil || strings.TrimSpace(*req.Address) == "" || strings.TrimSpace(req.PostalCode) == "" {
			return model.ErrMissingAddress
		}
	}
	if req.FulfillmentAt.IsZero() {
		return model.ErrInvalidSlot
	}
	if len(req.Items) == 0 {
		return model.ErrEmptyCart
	}

	// Validate each item
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("menu_item_id", item.MenuItemID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}

func successResult(o *model.Order) *model.OrderResult {
	id := o.ID
	number := o.OrderNumber
	return &model.OrderResult{Success: true, OrderID: &id, OrderNumber: &number}
}
