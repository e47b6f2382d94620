// Package checkout drives the customer checkout: upsell, details, optional
// card payment and order submission. It holds no UI; a front end observes
// the Machine through Subscribe and calls its operations.
package checkout

import (
	"context"
	"errors"
	"time"

	"orderdesk/internal/model"
	"orderdesk/internal/schedule"
	"orderdesk/internal/zone"

	"github.com/google/uuid"
)

// State is a checkout step.
type State string

const (
	StateClosed     State = "closed"
	StateUpsell     State = "upsell"
	StateDetails    State = "details"
	StatePayment    State = "payment"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
)

var (
	// ErrNotOpen is returned when an operation needs an open checkout.
	ErrNotOpen = errors.New("checkout is not open")
	// ErrBusy is returned while a payment confirmation or submission is in flight.
	ErrBusy = errors.New("checkout is waiting for a pending request")
	// ErrAlreadySubmitted is returned once the draft produced an order.
	ErrAlreadySubmitted = errors.New("order has already been submitted")
	// ErrSuperseded marks a response that arrived after newer input or after
	// the draft was discarded. Its result has not been applied.
	ErrSuperseded = errors.New("result superseded by newer input")
	// ErrInvalidTransition is returned for steps not reachable from the current state.
	ErrInvalidTransition = errors.New("transition not allowed from current state")

	errSchedulePending = model.NewDomainError(model.ErrCodeNoSlotAvailable, "Pickup and delivery times are still loading")
)

// Backend is the server side of the checkout.
type Backend interface {
	// FetchZones returns the restaurant's delivery zones.
	FetchZones(ctx context.Context, restaurantID uuid.UUID) ([]model.DeliveryZone, error)

	// FetchTimingProfile returns the preparation time and opening state.
	FetchTimingProfile(ctx context.Context, restaurantID uuid.UUID, orderType model.OrderType, zoneID *uuid.UUID) (*model.TimingProfile, error)

	// ValidateDiscountCode checks a discount code for the restaurant.
	ValidateDiscountCode(ctx context.Context, restaurantID uuid.UUID, code string) (*model.DiscountValidation, error)

	// CreateOrder commits the order. It is the only source of truth for
	// whether an order exists.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResult, error)
}

// Prefill is the locally remembered contact and address of the last order.
type Prefill struct {
	Contact model.Contact `json:"contact"`
	Address model.Address `json:"address"`
}

// PrefillStore remembers contact details per restaurant. It is a convenience
// cache only and never replaces server validation.
type PrefillStore interface {
	Load(ctx context.Context, restaurantID uuid.UUID) (*Prefill, error)
	Save(ctx context.Context, restaurantID uuid.UUID, p Prefill) error
}

// Draft is the in-progress checkout. It is discarded on Close and after success.
type Draft struct {
	ID            uuid.UUID
	OrderType     model.OrderType
	Contact       model.Contact
	Address       model.Address
	PaymentMethod model.PaymentMethod

	// Resolution is nil until a postal code was resolved for a delivery.
	Resolution *zone.Resolution
	// Timing is nil until the timing profile was loaded.
	Timing        *model.TimingProfile
	Slots         []schedule.Slot
	FulfillmentAt *time.Time

	// Discount caches the last successful validation for this draft.
	Discount      *model.DiscountCode
	DiscountError string

	manualZoneID *uuid.UUID
}

// Zone returns the resolved delivery zone, or nil.
func (d *Draft) Zone() *model.DeliveryZone {
	if d.Resolution == nil || !d.Resolution.Resolved() {
		return nil
	}
	return d.Resolution.Zone
}

func (d *Draft) clone() Draft {
	c := *d
	if d.Slots != nil {
		c.Slots = append([]schedule.Slot(nil), d.Slots...)
	}
	if d.Resolution != nil {
		r := *d.Resolution
		c.Resolution = &r
	}
	return c
}
