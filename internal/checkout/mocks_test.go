package checkout

import (
	"context"

	"orderdesk/internal/model"
	"orderdesk/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) FetchZones(ctx context.Context, restaurantID uuid.UUID) ([]model.DeliveryZone, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeliveryZone), args.Error(1)
}

func (m *mockBackend) FetchTimingProfile(ctx context.Context, restaurantID uuid.UUID, orderType model.OrderType, zoneID *uuid.UUID) (*model.TimingProfile, error) {
	args := m.Called(ctx, restaurantID, orderType, zoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TimingProfile), args.Error(1)
}

func (m *mockBackend) ValidateDiscountCode(ctx context.Context, restaurantID uuid.UUID, code string) (*model.DiscountValidation, error) {
	args := m.Called(ctx, restaurantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiscountValidation), args.Error(1)
}

func (m *mockBackend) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResult), args.Error(1)
}

type mockConfirmer struct {
	mock.Mock
}

func (m *mockConfirmer) Confirm(ctx context.Context, req payment.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type mockPrefillStore struct {
	mock.Mock
}

func (m *mockPrefillStore) Load(ctx context.Context, restaurantID uuid.UUID) (*Prefill, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Prefill), args.Error(1)
}

func (m *mockPrefillStore) Save(ctx context.Context, restaurantID uuid.UUID, p Prefill) error {
	args := m.Called(ctx, restaurantID, p)
	return args.Error(0)
}
