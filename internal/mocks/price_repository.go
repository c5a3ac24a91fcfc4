package mocks

import (
	"context"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPriceRepo struct {
	mock.Mock
	domain.PriceRepository
}

func (m *MockPriceRepo) Get(ctx context.Context) (*domain.PriceList, error) {
	args := m.Called(ctx)
	prices, _ := args.Get(0).(*domain.PriceList)
	return prices, args.Error(1)
}
