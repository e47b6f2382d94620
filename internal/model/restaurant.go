package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderType is the fulfilment mode of an order.
type OrderType string

const (
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDelivery OrderType = "delivery"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == OrderTypePickup || t == OrderTypeDelivery
}

// Default preparation lead times applied when a restaurant has no explicit value.
const (
	DefaultPickupPreparationMinutes   = 15
	DefaultDeliveryPreparationMinutes = 30
)

// DayHours is a single day's opening window as wall-clock "HH:MM" strings.
// A Close earlier than Open means the window runs past midnight.
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// OpeningHours maps weekday keys (mon..sun) to that day's window.
// A missing key or an empty window means closed.
type OpeningHours map[string]*DayHours

// Restaurant holds the settings the checkout engine reads.
type Restaurant struct {
	ID                       uuid.UUID    `json:"id" db:"id"`
	Name                     string       `json:"name" db:"name"`
	Timezone                 string       `json:"timezone" db:"timezone"`
	OpeningHours             OpeningHours `json:"openingHours" db:"opening_hours"`
	ManuallyClosed           bool         `json:"manuallyClosed" db:"manually_closed"`
	AcceptsPreOrders         bool         `json:"acceptsPreOrders" db:"accepts_pre_orders"`
	PickupPreparationMinutes *int         `json:"pickupPreparationMinutes,omitempty" db:"pickup_preparation_minutes"`
	CreatedAt                time.Time    `json:"createdAt" db:"created_at"`
}

// Location returns the restaurant's time zone, falling back to UTC when unset or unknown.
func (r *Restaurant) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DeliveryZone is a delivery catchment area matched by postal code.
type DeliveryZone struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	RestaurantID       uuid.UUID       `json:"restaurantId" db:"restaurant_id"`
	Name               string          `json:"name" db:"name"`
	PostalCodes        []string        `json:"postalCodes" db:"postal_codes"`
	Price              decimal.Decimal `json:"price" db:"price"`
	MinimumOrderValue  decimal.Decimal `json:"minimumOrderValue" db:"minimum_order_value"`
	Area               string          `json:"area,omitempty" db:"area"`
	PreparationMinutes *int            `json:"preparationMinutes,omitempty" db:"preparation_minutes"`
}

// PreparationProfile carries the explicit lead times configured for a restaurant.
type PreparationProfile struct {
	PickupMinutes *int
	ZoneMinutes   map[uuid.UUID]int
}

// NewPreparationProfile builds a profile from a restaurant and its zones.
func NewPreparationProfile(r *Restaurant, zones []DeliveryZone) PreparationProfile {
	p := PreparationProfile{ZoneMinutes: make(map[uuid.UUID]int)}
	if r != nil {
		p.PickupMinutes = r.PickupPreparationMinutes
	}
	for _, z := range zones {
		if z.PreparationMinutes != nil {
			p.ZoneMinutes[z.ID] = *z.PreparationMinutes
		}
	}
	return p
}

// Minutes returns the preparation lead time for the order type and zone.
func (p PreparationProfile) Minutes(orderType OrderType, zoneID *uuid.UUID) int {
	if orderType == OrderTypeDelivery {
		if zoneID != nil {
			if m, ok := p.ZoneMinutes[*zoneID]; ok && m > 0 {
				return m
			}
		}
		return DefaultDeliveryPreparationMinutes
	}
	if p.PickupMinutes != nil && *p.PickupMinutes > 0 {
		return *p.PickupMinutes
	}
	return DefaultPickupPreparationMinutes
}

// TimingProfile is the response of the delivery timing lookup.
type TimingProfile struct {
	PreparationMinutes int  `json:"preparationMinutes"`
	IsOpen             bool `json:"isOpen"`
	ManuallyClosed     bool `json:"manuallyClosed"`
	AcceptsPreOrders   bool `json:"acceptsPreOrders"`
}
