package checkout

import (
	"context"
	"errors"
	"strings"

	"orderdesk/internal/model"
	"orderdesk/internal/pricing"

	"github.com/google/uuid"
)

// BuildOrderRequest snapshots a draft and cart into the payload sent to the
// server. Amounts are the client's view; the server recomputes them.
func BuildOrderRequest(restaurantID uuid.UUID, d *Draft, items []model.CartItem, q pricing.Quote) *model.OrderRequest {
	req := &model.OrderRequest{
		DraftID:        d.ID,
		RestaurantID:   restaurantID,
		OrderType:      d.OrderType,
		Contact:        trimContact(d.Contact),
		DeliveryFee:    q.DeliveryFee.Round(2),
		DiscountAmount: q.DiscountAmount.Round(2),
		Items:          items,
		PaymentMethod:  d.PaymentMethod,
	}
	if d.FulfillmentAt != nil {
		req.FulfillmentAt = *d.FulfillmentAt
	}
	if d.Discount != nil && q.DiscountEligible {
		code := d.Discount.Code
		req.DiscountCode = &code
	}
	if d.OrderType == model.OrderTypeDelivery {
		address := d.Address.Compose()
		req.Address = &address
		req.PostalCode = strings.TrimSpace(d.Address.PostalCode)
		if z := d.Zone(); z != nil {
			id := z.ID
			req.ZoneID = &id
		}
	}
	return req
}

func trimContact(c model.Contact) model.Contact {
	return model.Contact{
		Name:  strings.TrimSpace(c.Name),
		Phone: strings.TrimSpace(c.Phone),
		Email: strings.TrimSpace(c.Email),
	}
}

// submitLocked is called with the lock held and releases it. On failure the
// machine returns to Details with the cart untouched; on success the cart
// is cleared and the draft discarded.
func (m *Machine) submitLocked(ctx context.Context) error {
	items := m.cart.Items()
	req := BuildOrderRequest(m.cfg.Restaurant.ID, m.draft, items, m.quoteLocked())
	m.inFlight = true
	m.freezeLocked()
	m.transition(StateSubmitting)
	gen := m.draftGen
	m.unlock()

	log := m.logger.With().Str("draft_id", req.DraftID.String()).Logger()
	log.Info().Int("items", len(items)).Msg("submitting order")

	res, err := m.backend.CreateOrder(ctx, req)
	if err == nil {
		err = resultError(res)
	}

	m.mu.Lock()
	if gen != m.draftGen {
		m.unlock()
		log.Warn().Err(err).Msg("order result arrived after checkout was closed")
		return ErrSuperseded
	}
	m.inFlight = false
	if err != nil {
		m.lastErr = err
		m.transition(StateDetails)
		m.unlock()
		log.Warn().Err(err).Msg("order submission failed")
		return err
	}

	prefill := Prefill{Contact: req.Contact, Address: m.draft.Address}
	m.result = res
	m.draftGen++
	m.draft = nil
	m.paidAmount = nil
	m.lastErr = nil
	m.cart.Clear()
	m.transition(StateSuccess)
	m.unlock()

	evt := log.Info()
	if res.OrderNumber != nil {
		evt = evt.Int64("order_number", *res.OrderNumber)
	}
	evt.Msg("order submitted")

	if m.prefill != nil {
		if err := m.prefill.Save(ctx, m.cfg.Restaurant.ID, prefill); err != nil {
			log.Warn().Err(err).Msg("failed to save prefill")
		}
	}
	return nil
}

// resultError turns an unsuccessful result into an error carrying the
// server's message and code.
func resultError(res *model.OrderResult) error {
	if res == nil {
		return errors.New("order submission returned no result")
	}
	if res.Success {
		return nil
	}
	msg := res.Error
	if msg == "" {
		msg = "Order could not be submitted"
	}
	if res.Code != "" {
		return model.NewDomainError(res.Code, msg)
	}
	return errors.New(msg)
}
