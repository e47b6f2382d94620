package service

import (
	"time"

	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	restaurantID = uuid.MustParse("5b0c1e0e-7a4c-4a53-9d6a-8f3b8d2a1c01")
	mitteID      = uuid.MustParse("5b0c1e0e-7a4c-4a53-9d6a-8f3b8d2a1c02")
	weddingID    = uuid.MustParse("5b0c1e0e-7a4c-4a53-9d6a-8f3b8d2a1c03")
	// mondayNoon is a Monday, inside opening hours.
	mondayNoon = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func everyDay(open, close string) model.OpeningHours {
	hours := model.OpeningHours{}
	for _, day := range []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"} {
		hours[day] = &model.DayHours{Open: open, Close: close}
	}
	return hours
}

func testRestaurant() *model.Restaurant {
	return &model.Restaurant{
		ID:               restaurantID,
		Name:             "Trattoria Roma",
		Timezone:         "UTC",
		OpeningHours:     everyDay("11:00", "22:00"),
		AcceptsPreOrders: true,
	}
}

func testZones() []model.DeliveryZone {
	prep := 40
	return []model.DeliveryZone{
		{ID: mitteID, RestaurantID: restaurantID, Name: "Mitte", PostalCodes: []string{"10115"}, Price: dec("2.50"), MinimumOrderValue: dec("15"), PreparationMinutes: &prep},
		{ID: weddingID, RestaurantID: restaurantID, Name: "Wedding", PostalCodes: []string{"13347"}, Price: dec("3.50"), MinimumOrderValue: dec("20")},
	}
}

func testMenu() []model.MenuItem {
	return []model.MenuItem{
		{
			ID: "pizza", RestaurantID: restaurantID, Name: "Pizza Margherita", Price: dec("10.00"), Category: "Pizza",
			Variants: []model.Variant{{ID: "large", Name: "Large", Price: dec("12.50")}},
			Toppings: []model.ToppingOption{{ID: "cheese", Name: "Extra cheese", Price: dec("1.50")}},
		},
	}
}

func sommer20() *model.DiscountCode {
	return &model.DiscountCode{Code: "SOMMER20", Type: model.DiscountPercentage, Value: dec("20"), MinimumOrderValue: dec("15")}
}
