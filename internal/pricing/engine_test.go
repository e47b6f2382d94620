package pricing

import (
	"errors"
	"testing"

	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func cart(lines ...string) []model.CartItem {
	items := make([]model.CartItem, 0, len(lines))
	for i, price := range lines {
		items = append(items, model.CartItem{MenuItemID: "M" + string(rune('A'+i)), Quantity: 1, UnitPrice: d(price)})
	}
	return items
}

func TestSubtotal(t *testing.T) {
	items := []model.CartItem{
		{MenuItemID: "pizza", Quantity: 2, UnitPrice: d("9.90")},
		{MenuItemID: "cola", Quantity: 3, UnitPrice: d("0.10")},
	}

	assert.Equal(t, "20.10", Subtotal(items).StringFixed(2))
	assert.True(t, Subtotal(nil).IsZero())
}

func TestSubtotal_NoFloatingError(t *testing.T) {
	items := make([]model.CartItem, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, model.CartItem{Quantity: 1, UnitPrice: d("0.10")})
	}

	assert.True(t, Subtotal(items).Equal(d("1")))
}

func TestDiscountAmount(t *testing.T) {
	tests := []struct {
		name             string
		subtotal         string
		discount         *model.DiscountCode
		expectedAmount   string
		expectedEligible bool
	}{
		{"No discount", "50.00", nil, "0.00", true},
		{"Ten percent", "50.00", &model.DiscountCode{Type: model.DiscountPercentage, Value: d("10")}, "5.00", true},
		{"Fixed capped at subtotal", "15.00", &model.DiscountCode{Type: model.DiscountFixed, Value: d("20")}, "15.00", true},
		{"Fixed below subtotal", "30.00", &model.DiscountCode{Type: model.DiscountFixed, Value: d("5")}, "5.00", true},
		{"Below discount minimum", "9.99", &model.DiscountCode{Type: model.DiscountPercentage, Value: d("20"), MinimumOrderValue: d("10")}, "0.00", false},
		{"Exactly discount minimum", "10.00", &model.DiscountCode{Type: model.DiscountPercentage, Value: d("20"), MinimumOrderValue: d("10")}, "2.00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, eligible := DiscountAmount(d(tt.subtotal), tt.discount)
			assert.Equal(t, tt.expectedAmount, amount.StringFixed(2))
			assert.Equal(t, tt.expectedEligible, eligible)
		})
	}
}

func TestCalculate_FixedDiscountNeverNegative(t *testing.T) {
	q := Calculate(Input{
		OrderType: model.OrderTypePickup,
		Items:     cart("15.00"),
		Discount:  &model.DiscountCode{Code: "FLAT20", Type: model.DiscountFixed, Value: d("20")},
	})

	assert.Equal(t, "15.00", q.DiscountAmount.StringFixed(2))
	assert.Equal(t, "0.00", q.Total.StringFixed(2))
	assert.Equal(t, "FLAT20", q.DiscountCode)
}

func TestCalculate_PickupIgnoresZone(t *testing.T) {
	zone := &model.DeliveryZone{ID: uuid.New(), Price: d("3.50"), MinimumOrderValue: d("40")}

	q := Calculate(Input{OrderType: model.OrderTypePickup, Items: cart("32.00"), Zone: zone})

	assert.True(t, q.DeliveryFee.IsZero())
	assert.True(t, q.MeetsZoneMinimum())
	assert.NoError(t, q.Err())
	assert.Equal(t, "32.00", q.Total.StringFixed(2))
}

func TestCalculate_DeliveryWithoutZoneIsPending(t *testing.T) {
	q := Calculate(Input{OrderType: model.OrderTypeDelivery, Items: cart("32.00")})

	assert.True(t, q.ZonePending)
	assert.True(t, q.DeliveryFee.IsZero())
}

func TestCalculate_DeliveryWithinMinimum(t *testing.T) {
	zone := &model.DeliveryZone{ID: uuid.New(), Price: d("3.50"), MinimumOrderValue: d("20.00")}

	q := Calculate(Input{OrderType: model.OrderTypeDelivery, Items: cart("20.00", "12.00"), Zone: zone})

	assert.Equal(t, "32.00", q.Subtotal.StringFixed(2))
	assert.Equal(t, "3.50", q.DeliveryFee.StringFixed(2))
	assert.Equal(t, "35.50", q.Total.StringFixed(2))
	assert.False(t, q.ZonePending)
	assert.NoError(t, q.Err())
}

func TestCalculate_BelowZoneMinimum(t *testing.T) {
	zone := &model.DeliveryZone{ID: uuid.New(), Price: d("3.50"), MinimumOrderValue: d("40.00")}

	q := Calculate(Input{OrderType: model.OrderTypeDelivery, Items: cart("32.00"), Zone: zone})

	assert.False(t, q.MeetsZoneMinimum())
	assert.Equal(t, "8.00", q.Shortfall.StringFixed(2))

	err := q.Err()
	require.Error(t, err)
	var domainErr *model.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, model.ErrCodeBelowMinimumOrder, domainErr.Code)
	assert.Contains(t, domainErr.Message, "8.00 €")
}

func TestCalculate_ZoneMinimumIgnoresValidDiscount(t *testing.T) {
	zone := &model.DeliveryZone{ID: uuid.New(), Price: d("2.00"), MinimumOrderValue: d("30.00")}
	discount := &model.DiscountCode{Code: "WELCOME", Type: model.DiscountFixed, Value: d("5"), MinimumOrderValue: d("10")}

	q := Calculate(Input{OrderType: model.OrderTypeDelivery, Items: cart("25.00"), Zone: zone, Discount: discount})

	assert.True(t, q.DiscountEligible)
	assert.Equal(t, "5.00", q.DiscountAmount.StringFixed(2))
	assert.Error(t, q.Err())
	assert.Equal(t, "5.00", q.Shortfall.StringFixed(2))
}

func TestCalculate_PercentageDiscount(t *testing.T) {
	discount := &model.DiscountCode{Code: "SOMMER20", Type: model.DiscountPercentage, Value: d("20"), MinimumOrderValue: d("10.00")}

	q := Calculate(Input{OrderType: model.OrderTypePickup, Items: cart("25.00"), Discount: discount})

	assert.Equal(t, "5.00", q.DiscountAmount.StringFixed(2))
	assert.Equal(t, "20.00", q.Total.StringFixed(2))
}

func TestQuote_Rounded(t *testing.T) {
	discount := &model.DiscountCode{Type: model.DiscountPercentage, Value: d("15")}

	q := Calculate(Input{OrderType: model.OrderTypePickup, Items: cart("9.99"), Discount: discount})

	assert.Equal(t, "1.4985", q.DiscountAmount.String())
	r := q.Rounded()
	assert.Equal(t, "1.5", r.DiscountAmount.String())
	assert.Equal(t, "8.49", r.Total.StringFixed(2))
}
