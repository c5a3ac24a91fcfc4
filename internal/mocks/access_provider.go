package mocks

import (
	"context"
	"time"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockAccessProvider struct {
	mock.Mock
	domain.AccessCodeProvider
}

func (m *MockAccessProvider) CreateCode(ctx context.Context, name string, startsAt, endsAt time.Time) (string, error) {
	args := m.Called(ctx, name, startsAt, endsAt)
	return args.String(0), args.Error(1)
}
