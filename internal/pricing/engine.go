// Package pricing computes checkout totals.
package pricing

import (
	"orderdesk/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Input is everything a quote depends on.
type Input struct {
	OrderType model.OrderType
	Items     []model.CartItem
	Discount  *model.DiscountCode
	Zone      *model.DeliveryZone
}

// Quote is the price breakdown of a checkout. Amounts are exact; round
// only when displaying.
type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	Total          decimal.Decimal `json:"total"`

	// DiscountCode is set when a discount was supplied, eligible or not.
	DiscountCode string `json:"discountCode,omitempty"`
	// DiscountEligible is false when the subtotal is below the discount's own minimum.
	DiscountEligible bool `json:"discountEligible"`

	// ZonePending marks a delivery quote computed without a resolved zone.
	ZonePending bool `json:"zonePending"`
	// ZoneMinimum is the resolved zone's minimum order value, zero if none.
	ZoneMinimum decimal.Decimal `json:"zoneMinimum"`
	// Shortfall is how much is missing to reach ZoneMinimum.
	Shortfall decimal.Decimal `json:"shortfall"`
}

// Subtotal sums line totals.
func Subtotal(items []model.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// DiscountAmount returns the discount applicable to subtotal and whether
// the discount's minimum order value is met.
func DiscountAmount(subtotal decimal.Decimal, d *model.DiscountCode) (decimal.Decimal, bool) {
	if d == nil {
		return decimal.Zero, true
	}
	if subtotal.LessThan(d.MinimumOrderValue) {
		return decimal.Zero, false
	}
	switch d.Type {
	case model.DiscountPercentage:
		return subtotal.Mul(d.Value).Div(hundred), true
	case model.DiscountFixed:
		return decimal.Min(d.Value, subtotal), true
	default:
		return decimal.Zero, true
	}
}

// Calculate computes the quote for in.
func Calculate(in Input) Quote {
	q := Quote{
		Subtotal:         Subtotal(in.Items),
		DiscountAmount:   decimal.Zero,
		DeliveryFee:      decimal.Zero,
		ZoneMinimum:      decimal.Zero,
		Shortfall:        decimal.Zero,
		DiscountEligible: true,
	}

	if in.Discount != nil {
		q.DiscountCode = in.Discount.Code
		q.DiscountAmount, q.DiscountEligible = DiscountAmount(q.Subtotal, in.Discount)
	}

	if in.OrderType == model.OrderTypeDelivery {
		if in.Zone == nil {
			q.ZonePending = true
		} else {
			q.DeliveryFee = in.Zone.Price
			q.ZoneMinimum = in.Zone.MinimumOrderValue
			if q.ZoneMinimum.IsPositive() && q.Subtotal.LessThan(q.ZoneMinimum) {
				q.Shortfall = q.ZoneMinimum.Sub(q.Subtotal)
			}
		}
	}

	q.Total = q.Subtotal.Sub(q.DiscountAmount).Add(q.DeliveryFee)
	if q.Total.IsNegative() {
		q.Total = decimal.Zero
	}
	return q
}

// MeetsZoneMinimum reports whether the subtotal reaches the zone's minimum order value.
func (q Quote) MeetsZoneMinimum() bool {
	return !q.Shortfall.IsPositive()
}

// Err returns the business-rule violation that blocks submission, or nil.
// A pending zone is reported by zone resolution, not here.
func (q Quote) Err() error {
	if !q.MeetsZoneMinimum() {
		return model.NewBelowMinimumOrderError(q.ZoneMinimum, q.Shortfall)
	}
	return nil
}

// Rounded returns a copy with every amount rounded to cents for display.
func (q Quote) Rounded() Quote {
	q.Subtotal = q.Subtotal.Round(2)
	q.DiscountAmount = q.DiscountAmount.Round(2)
	q.DeliveryFee = q.DeliveryFee.Round(2)
	q.Total = q.Total.Round(2)
	q.ZoneMinimum = q.ZoneMinimum.Round(2)
	q.Shortfall = q.Shortfall.Round(2)
	return q
}
