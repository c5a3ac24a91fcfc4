package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSlotLocker hands out no-op releases and records acquisitions.
type MockSlotLocker struct {
	mock.Mock
}

func (m *MockSlotLocker) AcquireSlot(ctx context.Context, slotID int) (func(), error) {
	args := m.Called(ctx, slotID)
	release, _ := args.Get(0).(func())
	if release == nil {
		release = func() {}
	}
	return release, args.Error(1)
}

type MockIdempotencyGuard struct {
	mock.Mock
}

func (m *MockIdempotencyGuard) Claim(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyGuard) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
