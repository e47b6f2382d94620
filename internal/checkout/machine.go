package checkout

import (
	"context"
	"strings"
	"sync"
	"time"

	"orderdesk/internal/model"
	"orderdesk/internal/payment"
	"orderdesk/internal/pricing"
	"orderdesk/internal/schedule"
	"orderdesk/internal/zone"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Config describes the restaurant a checkout runs against.
type Config struct {
	Restaurant  model.Restaurant
	UpsellItems []model.MenuItem
	Currency    string
	Slots       schedule.Config
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Dependencies are the collaborators of a Machine. Payments and Prefill are optional.
type Dependencies struct {
	Backend  Backend
	Payments payment.Confirmer
	Prefill  PrefillStore
	Cart     *Cart
}

// Machine is the checkout state machine. All methods are safe for concurrent
// use; backend calls run without holding the lock, and their results are
// applied only if no newer input or draft replaced them in the meantime.
type Machine struct {
	cfg      Config
	backend  Backend
	payments payment.Confirmer
	prefill  PrefillStore
	cart     *Cart
	slots    *schedule.Generator
	clock    func() time.Time
	logger   zerolog.Logger

	mu          sync.Mutex
	state       State
	draft       *Draft
	draftGen    uint64
	refreshGen  uint64
	discountGen uint64
	inFlight    bool
	paidAmount  *decimal.Decimal
	lastErr     error
	result      *model.OrderResult
	listeners   []func(State)
	pending     []State
}

// NewMachine creates a closed checkout.
func NewMachine(cfg Config, deps Dependencies, logger zerolog.Logger) *Machine {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	cart := deps.Cart
	if cart == nil {
		cart = NewCart()
	}
	return &Machine{
		cfg:      cfg,
		backend:  deps.Backend,
		payments: deps.Payments,
		prefill:  deps.Prefill,
		cart:     cart,
		slots:    schedule.NewGenerator(cfg.Slots),
		clock:    clock,
		logger: logger.With().
			Str("component", "checkout").
			Str("restaurant_id", cfg.Restaurant.ID.String()).
			Logger(),
		state: StateClosed,
	}
}

// Subscribe registers fn to be called after every state change. fn runs
// outside the machine's lock and may call back into it.
func (m *Machine) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// transition must be called with the lock held.
func (m *Machine) transition(to State) {
	if m.state == to {
		return
	}
	m.logger.Debug().Str("from", string(m.state)).Str("to", string(to)).Msg("checkout state changed")
	m.state = to
	m.pending = append(m.pending, to)
}

// unlock releases the lock and delivers queued state notifications.
func (m *Machine) unlock() {
	pending := m.pending
	m.pending = nil
	listeners := m.listeners
	m.mu.Unlock()

	for _, s := range pending {
		for _, fn := range listeners {
			fn(s)
		}
	}
}

// State returns the current step.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Draft returns a copy of the current draft.
func (m *Machine) Draft() (Draft, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil {
		return Draft{}, false
	}
	return m.draft.clone(), true
}

// Err returns the reason the last transition was refused or failed.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Result returns the outcome of the successful submission, if any.
func (m *Machine) Result() *model.OrderResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// PaymentAvailable reports whether card payments go through the external provider.
func (m *Machine) PaymentAvailable() bool {
	return m.payments != nil
}

// Quote prices the current cart and draft.
func (m *Machine) Quote() pricing.Quote {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quoteLocked()
}

func (m *Machine) quoteLocked() pricing.Quote {
	in := pricing.Input{Items: m.cart.Items(), OrderType: model.OrderTypePickup}
	if m.draft != nil {
		in.OrderType = m.draft.OrderType
		in.Discount = m.draft.Discount
		in.Zone = m.draft.Zone()
	}
	return pricing.Calculate(in)
}

// Open starts a fresh draft at Upsell, or at Details when there is nothing
// to upsell, prefilled from the PrefillStore, and loads delivery times.
func (m *Machine) Open(ctx context.Context) error {
	m.mu.Lock()
	m.draftGen++
	gen := m.draftGen
	m.draft = &Draft{
		ID:            uuid.New(),
		OrderType:     model.OrderTypePickup,
		PaymentMethod: model.PaymentCash,
	}
	m.inFlight = false
	m.paidAmount = nil
	m.lastErr = nil
	m.result = nil
	m.state = StateClosed
	if len(m.cfg.UpsellItems) > 0 {
		m.transition(StateUpsell)
	} else {
		m.transition(StateDetails)
	}
	m.unlock()

	m.logger.Info().Msg("checkout opened")

	if m.prefill != nil {
		p, err := m.prefill.Load(ctx, m.cfg.Restaurant.ID)
		if err != nil {
			m.logger.Warn().Err(err).Msg("failed to load prefill")
		} else if p != nil {
			m.mu.Lock()
			if m.draftGen == gen && m.draft != nil {
				m.draft.Contact = p.Contact
				m.draft.Address = p.Address
			}
			m.mu.Unlock()
		}
	}

	return m.Refresh(ctx)
}

// Close discards the draft. The cart is kept. Responses still in flight
// are dropped when they arrive.
func (m *Machine) Close() {
	m.mu.Lock()
	m.draftGen++
	m.draft = nil
	m.inFlight = false
	m.paidAmount = nil
	m.lastErr = nil
	m.transition(StateClosed)
	m.unlock()

	m.logger.Info().Msg("checkout closed")
}

// editableLocked reports whether the draft accepts input.
func (m *Machine) editableLocked() error {
	switch {
	case m.state == StateSuccess:
		return ErrAlreadySubmitted
	case m.draft == nil:
		return ErrNotOpen
	case m.inFlight:
		return ErrBusy
	case m.state != StateUpsell && m.state != StateDetails:
		return ErrInvalidTransition
	}
	return nil
}

// acceptsResultsLocked reports whether background lookups may still write
// to the draft. Once the draft leaves Upsell and Details it is frozen.
func (m *Machine) acceptsResultsLocked() bool {
	return m.draft != nil && !m.inFlight && (m.state == StateUpsell || m.state == StateDetails)
}

// freezeLocked invalidates refreshes and discount validations still in flight.
func (m *Machine) freezeLocked() {
	m.refreshGen++
	m.discountGen++
}

// SetContact updates the contact fields.
func (m *Machine) SetContact(c model.Contact) error {
	m.mu.Lock()
	defer m.unlock()
	if err := m.editableLocked(); err != nil {
		return err
	}
	m.draft.Contact = c
	return nil
}

// SetPaymentMethod selects cash or card.
func (m *Machine) SetPaymentMethod(p model.PaymentMethod) error {
	if !p.Valid() {
		return model.NewDomainError(model.ErrCodeMissingField, "Please choose cash or card payment")
	}
	m.mu.Lock()
	defer m.unlock()
	if err := m.editableLocked(); err != nil {
		return err
	}
	m.draft.PaymentMethod = p
	return nil
}

// SetOrderType switches between pickup and delivery and reloads times.
func (m *Machine) SetOrderType(ctx context.Context, t model.OrderType) error {
	if !t.Valid() {
		return model.NewDomainError(model.ErrCodeMissingField, "Please choose pickup or delivery")
	}
	m.mu.Lock()
	if err := m.editableLocked(); err != nil {
		m.unlock()
		return err
	}
	m.draft.OrderType = t
	m.unlock()
	return m.Refresh(ctx)
}

// SetAddress updates the delivery address. A changed postal code or city
// drops the current zone and any manual zone choice before re-resolving.
func (m *Machine) SetAddress(ctx context.Context, a model.Address) error {
	m.mu.Lock()
	if err := m.editableLocked(); err != nil {
		m.unlock()
		return err
	}
	prev := m.draft.Address
	m.draft.Address = a
	same := normalizedEqual(prev.PostalCode, a.PostalCode) && normalizedEqual(prev.City, a.City)
	if !same {
		m.draft.Resolution = nil
		m.draft.manualZoneID = nil
	}
	m.unlock()
	if same && m.hasTiming() {
		return nil
	}
	return m.Refresh(ctx)
}

func (m *Machine) hasTiming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft != nil && m.draft.Timing != nil
}

// SelectZone resolves an ambiguous postal code by explicit choice.
func (m *Machine) SelectZone(ctx context.Context, zoneID uuid.UUID) error {
	m.mu.Lock()
	if err := m.editableLocked(); err != nil {
		m.unlock()
		return err
	}
	if m.draft.Resolution == nil {
		m.unlock()
		return model.ErrZonePending
	}
	selected, err := m.draft.Resolution.Select(zoneID)
	if err != nil {
		m.unlock()
		return err
	}
	m.draft.Resolution = &selected
	id := zoneID
	m.draft.manualZoneID = &id
	m.unlock()
	return m.Refresh(ctx)
}

// SetFulfillmentTime picks one of the offered slots.
func (m *Machine) SetFulfillmentTime(at time.Time) error {
	m.mu.Lock()
	defer m.unlock()
	if err := m.editableLocked(); err != nil {
		return err
	}
	for _, s := range m.draft.Slots {
		if s.At.Equal(at) {
			t := s.At
			m.draft.FulfillmentAt = &t
			return nil
		}
	}
	return model.ErrInvalidSlot
}

// ApplyDiscount validates code with the backend. The last successful
// validation stays cached on the draft; a failed one clears it.
func (m *Machine) ApplyDiscount(ctx context.Context, code string) error {
	normalized := model.NormalizeDiscountCode(code)
	if normalized == "" {
		return model.ErrInvalidDiscountCode
	}

	m.mu.Lock()
	if err := m.editableLocked(); err != nil {
		m.unlock()
		return err
	}
	m.discountGen++
	gen, draftGen := m.discountGen, m.draftGen
	m.unlock()

	validation, err := m.backend.ValidateDiscountCode(ctx, m.cfg.Restaurant.ID, normalized)

	m.mu.Lock()
	defer m.unlock()
	if gen != m.discountGen || draftGen != m.draftGen || !m.acceptsResultsLocked() {
		return ErrSuperseded
	}
	if err != nil {
		m.logger.Warn().Err(err).Str("discount_code", normalized).Msg("discount validation failed")
		return err
	}
	if discount := validation.Discount(); discount != nil {
		if discount.Code == "" {
			discount.Code = normalized
		}
		m.draft.Discount = discount
		m.draft.DiscountError = ""
		return nil
	}

	m.draft.Discount = nil
	m.draft.DiscountError = ""
	if validation != nil {
		m.draft.DiscountError = validation.Error
	}
	if m.draft.DiscountError == "" {
		m.draft.DiscountError = model.ErrInvalidDiscountCode.Message
	}
	return model.NewDomainError(model.ErrCodeInvalidDiscountCode, m.draft.DiscountError)
}

// RemoveDiscount drops the applied discount.
func (m *Machine) RemoveDiscount() error {
	m.mu.Lock()
	defer m.unlock()
	if err := m.editableLocked(); err != nil {
		return err
	}
	m.discountGen++
	m.draft.Discount = nil
	m.draft.DiscountError = ""
	return nil
}

// Refresh reloads zones and the timing profile for the current input and
// recomputes the offered slots. Only the latest call applies its result;
// earlier ones return ErrSuperseded.
func (m *Machine) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.draft == nil {
		m.unlock()
		return ErrNotOpen
	}
	if m.inFlight {
		m.unlock()
		return ErrBusy
	}
	m.refreshGen++
	gen, draftGen := m.refreshGen, m.draftGen
	orderType := m.draft.OrderType
	address := m.draft.Address
	var manual *uuid.UUID
	if m.draft.manualZoneID != nil {
		id := *m.draft.manualZoneID
		manual = &id
	}
	m.unlock()

	restaurantID := m.cfg.Restaurant.ID
	var resolution *zone.Resolution
	if orderType == model.OrderTypeDelivery && strings.TrimSpace(address.PostalCode) != "" {
		zones, err := m.backend.FetchZones(ctx, restaurantID)
		if err != nil {
			m.logger.Error().Err(err).Msg("failed to fetch delivery zones")
			return err
		}
		res, _ := zone.Resolve(address.PostalCode, address.City, zones)
		if manual != nil && res.Status == zone.StatusAmbiguous {
			if selected, err := res.Select(*manual); err == nil {
				res = selected
			}
		}
		resolution = &res
	}

	var zoneID *uuid.UUID
	if resolution != nil && resolution.Resolved() {
		zoneID = &resolution.Zone.ID
	}

	profile, err := m.backend.FetchTimingProfile(ctx, restaurantID, orderType, zoneID)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to fetch timing profile")
		return err
	}

	m.mu.Lock()
	defer m.unlock()
	if gen != m.refreshGen || draftGen != m.draftGen || !m.acceptsResultsLocked() {
		m.logger.Debug().Uint64("generation", gen).Msg("discarding superseded refresh")
		return ErrSuperseded
	}

	m.draft.Resolution = resolution
	m.draft.Timing = profile
	m.draft.Slots = m.slots.Collect(schedule.Request{
		Now:                m.clock().In(m.cfg.Restaurant.Location()),
		PreparationMinutes: profile.PreparationMinutes,
		IsOpen:             profile.IsOpen,
		AcceptsPreOrders:   profile.AcceptsPreOrders,
		Hours:              m.cfg.Restaurant.OpeningHours,
	})
	m.draft.FulfillmentAt = keepOrFirstSlot(m.draft.FulfillmentAt, m.draft.Slots)
	return nil
}

// Blockers lists every unmet condition that keeps Details from advancing.
func (m *Machine) Blockers() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil {
		return []error{ErrNotOpen}
	}
	return m.blockersLocked()
}

func (m *Machine) blockersLocked() []error {
	var out []error
	d := m.draft

	if m.cart.Len() == 0 {
		out = append(out, model.ErrEmptyCart)
	}
	if strings.TrimSpace(d.Contact.Name) == "" {
		out = append(out, model.ErrMissingName)
	}
	if strings.TrimSpace(d.Contact.Phone) == "" {
		out = append(out, model.ErrMissingPhone)
	}

	if d.OrderType == model.OrderTypeDelivery {
		switch {
		case !d.Address.Complete():
			out = append(out, model.ErrMissingAddress)
		case d.Resolution == nil:
			out = append(out, model.ErrZonePending)
		default:
			if err := d.Resolution.Err(); err != nil {
				out = append(out, err)
			}
		}
	}

	if err := m.quoteLocked().Err(); err != nil {
		out = append(out, err)
	}

	switch {
	case d.Timing == nil:
		out = append(out, errSchedulePending)
	case d.Timing.ManuallyClosed:
		out = append(out, model.ErrManuallyClosed)
	case !d.Timing.IsOpen && !d.Timing.AcceptsPreOrders:
		out = append(out, model.ErrRestaurantClosed)
	case len(d.Slots) == 0 || d.FulfillmentAt == nil:
		out = append(out, model.ErrNoSlotAvailable)
	}

	return out
}

// CanAdvance reports whether Advance would move forward from the current step.
func (m *Machine) CanAdvance() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil || m.inFlight {
		return false
	}
	switch m.state {
	case StateUpsell, StatePayment:
		return true
	case StateDetails:
		return len(m.blockersLocked()) == 0
	default:
		return false
	}
}

// Advance moves to the next step. From Details it goes to Payment for card
// payments with a provider, otherwise it submits the order directly. From
// Payment it confirms the payment and then submits.
func (m *Machine) Advance(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateSuccess {
		m.unlock()
		return ErrAlreadySubmitted
	}
	if m.draft == nil {
		m.unlock()
		return ErrNotOpen
	}
	if m.inFlight {
		m.unlock()
		return ErrBusy
	}

	switch m.state {
	case StateUpsell:
		m.transition(StateDetails)
		m.unlock()
		return nil

	case StateDetails:
		if blockers := m.blockersLocked(); len(blockers) > 0 {
			m.lastErr = blockers[0]
			m.unlock()
			return blockers[0]
		}
		m.lastErr = nil
		if m.requiresPaymentLocked() {
			m.freezeLocked()
			m.transition(StatePayment)
			m.unlock()
			return nil
		}
		return m.submitLocked(ctx)

	case StatePayment:
		if blockers := m.blockersLocked(); len(blockers) > 0 {
			m.lastErr = blockers[0]
			m.transition(StateDetails)
			m.unlock()
			return blockers[0]
		}
		return m.confirmPaymentLocked(ctx)
	}

	m.unlock()
	return ErrInvalidTransition
}

// Retreat goes back one step: Payment to Details, Details to Upsell.
func (m *Machine) Retreat() error {
	m.mu.Lock()
	defer m.unlock()
	if m.draft == nil {
		return ErrNotOpen
	}
	if m.inFlight {
		return ErrBusy
	}
	switch {
	case m.state == StatePayment:
		m.transition(StateDetails)
		return nil
	case m.state == StateDetails && len(m.cfg.UpsellItems) > 0:
		m.transition(StateUpsell)
		return nil
	}
	return ErrInvalidTransition
}

// requiresPaymentLocked reports whether the payment step must run. A card
// payment already confirmed for the same total on this draft is not repeated.
func (m *Machine) requiresPaymentLocked() bool {
	if m.draft.PaymentMethod != model.PaymentCard || m.payments == nil {
		return false
	}
	if m.paidAmount != nil && m.paidAmount.Equal(m.quoteLocked().Total.Round(2)) {
		return false
	}
	return true
}

// confirmPaymentLocked is called with the lock held and releases it.
func (m *Machine) confirmPaymentLocked(ctx context.Context) error {
	amount := m.quoteLocked().Total.Round(2)
	req := payment.Request{
		Amount:        amount,
		Currency:      m.cfg.Currency,
		CustomerEmail: m.draft.Contact.Email,
	}
	m.inFlight = true
	gen := m.draftGen
	m.unlock()

	err := m.payments.Confirm(ctx, req)

	m.mu.Lock()
	if gen != m.draftGen {
		m.unlock()
		m.logger.Info().Msg("payment result arrived after checkout was closed")
		return ErrSuperseded
	}
	m.inFlight = false
	if err != nil {
		m.lastErr = &PaymentError{Message: payment.Message(err)}
		m.unlock()
		m.logger.Warn().Err(err).Msg("payment confirmation failed")
		return m.Err()
	}
	m.paidAmount = &amount
	m.lastErr = nil
	return m.submitLocked(ctx)
}

// PaymentError is a failed payment confirmation. Message is the provider's text.
type PaymentError struct {
	Message string
}

func (e *PaymentError) Error() string {
	return e.Message
}

func keepOrFirstSlot(current *time.Time, slots []schedule.Slot) *time.Time {
	if current != nil {
		for _, s := range slots {
			if s.At.Equal(*current) {
				return current
			}
		}
	}
	if len(slots) == 0 {
		return nil
	}
	t := slots[0].At
	return &t
}

func normalizedEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
