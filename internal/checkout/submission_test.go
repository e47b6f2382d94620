package checkout

import (
	"testing"
	"time"

	"orderdesk/internal/model"
	"orderdesk/internal/pricing"
	"orderdesk/internal/zone"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrderRequest_Delivery(t *testing.T) {
	mitte := testZone("Mitte", "10115", "2.50", "15")
	at := time.Date(2026, 10, 19, 18, 30, 0, 0, time.UTC)
	discount := &model.DiscountCode{Code: "SOMMER20", Type: model.DiscountPercentage, Value: dec("20")}
	draft := &Draft{
		ID:            uuid.New(),
		OrderType:     model.OrderTypeDelivery,
		Contact:       model.Contact{Name: " Anna Schmidt ", Phone: "0301234567 "},
		Address:       model.Address{Street: "Torstraße", HouseNumber: "12", PostalCode: " 10115", City: "Berlin", Notes: "2. OG"},
		PaymentMethod: model.PaymentCard,
		Resolution:    &zone.Resolution{Status: zone.StatusResolved, PostalCode: "10115", Zone: &mitte},
		FulfillmentAt: &at,
		Discount:      discount,
	}
	items := []model.CartItem{pizza(2, "12.50")}
	q := pricing.Calculate(pricing.Input{OrderType: draft.OrderType, Items: items, Discount: discount, Zone: &mitte})

	req := BuildOrderRequest(restaurantID, draft, items, q)

	assert.Equal(t, draft.ID, req.DraftID)
	assert.Equal(t, "Anna Schmidt", req.Contact.Name)
	assert.Equal(t, "0301234567", req.Contact.Phone)
	require.NotNil(t, req.Address)
	assert.Equal(t, "Torstraße 12, 10115 Berlin (2. OG)", *req.Address)
	assert.Equal(t, "10115", req.PostalCode)
	require.NotNil(t, req.ZoneID)
	assert.Equal(t, mitte.ID, *req.ZoneID)
	require.NotNil(t, req.DiscountCode)
	assert.Equal(t, "SOMMER20", *req.DiscountCode)
	assert.True(t, req.DiscountAmount.Equal(dec("5.00")))
	assert.True(t, req.DeliveryFee.Equal(dec("2.50")))
	assert.Equal(t, at, req.FulfillmentAt)
	assert.Equal(t, model.PaymentCard, req.PaymentMethod)
}

func TestBuildOrderRequest_PickupOmitsAddressAndIneligibleDiscount(t *testing.T) {
	discount := &model.DiscountCode{Code: "BIG50", Type: model.DiscountFixed, Value: dec("10"), MinimumOrderValue: dec("50")}
	draft := &Draft{
		ID:        uuid.New(),
		OrderType: model.OrderTypePickup,
		Address:   berlinAddress("10115"),
		Discount:  discount,
	}
	items := []model.CartItem{pizza(1, "12.50")}
	q := pricing.Calculate(pricing.Input{OrderType: draft.OrderType, Items: items, Discount: discount})

	req := BuildOrderRequest(restaurantID, draft, items, q)

	assert.Nil(t, req.Address)
	assert.Empty(t, req.PostalCode)
	assert.Nil(t, req.ZoneID)
	assert.Nil(t, req.DiscountCode)
	assert.True(t, req.DiscountAmount.IsZero())
	assert.True(t, req.DeliveryFee.IsZero())
}

func TestResultError(t *testing.T) {
	assert.NoError(t, resultError(&model.OrderResult{Success: true}))
	assert.EqualError(t, resultError(nil), "order submission returned no result")
	assert.EqualError(t, resultError(&model.OrderResult{}), "Order could not be submitted")

	err := resultError(&model.OrderResult{Error: "Restaurant not found", Code: model.ErrCodeRestaurantNotFound})
	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeRestaurantNotFound, domainErr.Code)
}
