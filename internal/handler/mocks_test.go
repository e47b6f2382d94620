package handler

import (
	"context"
	"net/http"
	"net/http/httptest"

	"orderdesk/internal/model"
	"orderdesk/internal/pricing"
	"orderdesk/internal/schedule"
	"orderdesk/internal/zone"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResult), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

// MockMenuService is a mock implementation of MenuService.
type MockMenuService struct {
	mock.Mock
}

func (m *MockMenuService) GetByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit, offset int) ([]model.MenuItem, error) {
	args := m.Called(ctx, restaurantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuService) GetByID(ctx context.Context, id string) (*model.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Restaurant(ctx context.Context, restaurantID uuid.UUID) (*model.Restaurant, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Restaurant), args.Error(1)
}

func (m *MockCheckoutService) Zones(ctx context.Context, restaurantID uuid.UUID) ([]model.DeliveryZone, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeliveryZone), args.Error(1)
}

func (m *MockCheckoutService) TimingProfile(ctx context.Context, restaurantID uuid.UUID, orderType model.OrderType, zoneID *uuid.UUID) (*model.TimingProfile, error) {
	args := m.Called(ctx, restaurantID, orderType, zoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TimingProfile), args.Error(1)
}

func (m *MockCheckoutService) Slots(ctx context.Context, restaurantID uuid.UUID, orderType model.OrderType, zoneID *uuid.UUID) ([]schedule.Slot, error) {
	args := m.Called(ctx, restaurantID, orderType, zoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schedule.Slot), args.Error(1)
}

func (m *MockCheckoutService) ResolveZone(ctx context.Context, restaurantID uuid.UUID, postalCode, city string) (*zone.Resolution, error) {
	args := m.Called(ctx, restaurantID, postalCode, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*zone.Resolution), args.Error(1)
}

func (m *MockCheckoutService) ValidateDiscount(ctx context.Context, restaurantID uuid.UUID, code string) (*model.DiscountValidation, error) {
	args := m.Called(ctx, restaurantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiscountValidation), args.Error(1)
}

func (m *MockCheckoutService) Quote(ctx context.Context, restaurantID uuid.UUID, req *model.QuoteRequest) (*pricing.Quote, error) {
	args := m.Called(ctx, restaurantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Quote), args.Error(1)
}

// serve routes req through a mux with a single pattern so path values resolve.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}
