package service

import (
	"context"
	"fmt"
	"time"

	"orderdesk/internal/model"
	"orderdesk/internal/repository"
	"orderdesk/internal/schedule"
	"orderdesk/internal/zone"

	"github.com/google/uuid"
)

// priceItems replaces client-supplied unit prices and names with the
// restaurant's menu data.
func priceItems(ctx context.Context, menuRepo repository.MenuRepository, restaurantID uuid.UUID, items []model.CartItem) ([]model.CartItem, error) {
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.MenuItemID == "" {
			return nil, model.ErrMenuItemNotFound
		}
		if item.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		if !seen[item.MenuItemID] {
			seen[item.MenuItemID] = true
			ids = append(ids, item.MenuItemID)
		}
	}

	menu, err := menuRepo.GetByIDs(ctx, restaurantID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	byID := make(map[string]*model.MenuItem, len(menu))
	for i := range menu {
		byID[menu[i].ID] = &menu[i]
	}

	priced := make([]model.CartItem, len(items))
	for i, item := range items {
		m, ok := byID[item.MenuItemID]
		if !ok {
			return nil, model.ErrMenuItemNotFound
		}
		unit, err := m.UnitPrice(item.VariantID, item.ToppingIDs)
		if err != nil {
			return nil, err
		}
		item.Name = m.Name
		item.UnitPrice = unit
		priced[i] = item
	}
	return priced, nil
}

// selectZone determines the delivery zone for postalCode. A zoneID picked
// by the customer must be one of the zones serving the postal code.
func selectZone(zones []model.DeliveryZone, postalCode, city string, zoneID *uuid.UUID) (*model.DeliveryZone, error) {
	res, err := zone.Resolve(postalCode, city, zones)
	if err != nil {
		return nil, err
	}
	if zoneID != nil {
		selected, err := res.Select(*zoneID)
		if err != nil {
			return nil, err
		}
		return selected.Zone, nil
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Zone, nil
}

// timingFor evaluates the restaurant's state at now for an order type and zone.
func timingFor(r *model.Restaurant, zones []model.DeliveryZone, orderType model.OrderType, zoneID *uuid.UUID, now time.Time) model.TimingProfile {
	profile := model.NewPreparationProfile(r, zones)
	return model.TimingProfile{
		PreparationMinutes: profile.Minutes(orderType, zoneID),
		IsOpen:             schedule.IsOpenAt(now.In(r.Location()), r.OpeningHours),
		ManuallyClosed:     r.ManuallyClosed,
		AcceptsPreOrders:   r.AcceptsPreOrders,
	}
}

// slotRequest builds the slot generator input for a restaurant and timing profile.
func slotRequest(r *model.Restaurant, timing model.TimingProfile, now time.Time) schedule.Request {
	return schedule.Request{
		Now:                now.In(r.Location()),
		PreparationMinutes: timing.PreparationMinutes,
		IsOpen:             timing.IsOpen,
		AcceptsPreOrders:   timing.AcceptsPreOrders,
		Hours:              r.OpeningHours,
	}
}
