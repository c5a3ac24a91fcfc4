package mocks

import (
	"context"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepo struct {
	mock.Mock
	domain.BookingRepository
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Booking, error) {
	args := m.Called(ctx, transactionID)
	booking, _ := args.Get(0).(*domain.Booking)
	return booking, args.Error(1)
}

func (m *MockBookingRepo) GetByUUID(ctx context.Context, uuid string) (*domain.BookingDetail, error) {
	args := m.Called(ctx, uuid)
	detail, _ := args.Get(0).(*domain.BookingDetail)
	return detail, args.Error(1)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id int) (*domain.BookingDetail, error) {
	args := m.Called(ctx, id)
	detail, _ := args.Get(0).(*domain.BookingDetail)
	return detail, args.Error(1)
}

func (m *MockBookingRepo) MarkCancelled(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
