package mocks

import (
	"context"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSlotRepo struct {
	mock.Mock
	domain.SlotRepository
}

func (m *MockSlotRepo) GetByID(ctx context.Context, id int) (*domain.Slot, error) {
	args := m.Called(ctx, id)
	slot, _ := args.Get(0).(*domain.Slot)
	return slot, args.Error(1)
}

func (m *MockSlotRepo) ListUpcoming(ctx context.Context) ([]domain.Slot, error) {
	args := m.Called(ctx)
	slots, _ := args.Get(0).([]domain.Slot)
	return slots, args.Error(1)
}

func (m *MockSlotRepo) ReserveSeats(ctx context.Context, slotID, seats int) error {
	args := m.Called(ctx, slotID, seats)
	return args.Error(0)
}

func (m *MockSlotRepo) ReleaseSeats(ctx context.Context, slotID, seats int) error {
	args := m.Called(ctx, slotID, seats)
	return args.Error(0)
}
