package mocks

import (
	"context"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockCouponRepo struct {
	mock.Mock
	domain.CouponRepository
}

func (m *MockCouponRepo) GetByID(ctx context.Context, id int) (*domain.Coupon, error) {
	args := m.Called(ctx, id)
	coupon, _ := args.Get(0).(*domain.Coupon)
	return coupon, args.Error(1)
}

func (m *MockCouponRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Coupon, error) {
	args := m.Called(ctx, transactionID)
	coupon, _ := args.Get(0).(*domain.Coupon)
	return coupon, args.Error(1)
}

func (m *MockCouponRepo) Validate(ctx context.Context, id int, code string, seats int) (*domain.Coupon, error) {
	args := m.Called(ctx, id, code, seats)
	coupon, _ := args.Get(0).(*domain.Coupon)
	return coupon, args.Error(1)
}

func (m *MockCouponRepo) ListActiveByEmail(ctx context.Context, email string) ([]domain.Coupon, error) {
	args := m.Called(ctx, email)
	coupons, _ := args.Get(0).([]domain.Coupon)
	return coupons, args.Error(1)
}

func (m *MockCouponRepo) Create(ctx context.Context, coupon *domain.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCouponRepo) Debit(ctx context.Context, id, uses int) error {
	args := m.Called(ctx, id, uses)
	return args.Error(0)
}

func (m *MockCouponRepo) Credit(ctx context.Context, id, uses int) error {
	args := m.Called(ctx, id, uses)
	return args.Error(0)
}
