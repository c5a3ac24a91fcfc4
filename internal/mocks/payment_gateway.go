package mocks

import (
	"context"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockPaymentGateway struct {
	mock.Mock
	domain.PaymentGateway
}

func (m *MockPaymentGateway) CreatePaymentRequest(ctx context.Context, amount decimal.Decimal, message string) (*domain.PaymentRequest, error) {
	args := m.Called(ctx, amount, message)
	request, _ := args.Get(0).(*domain.PaymentRequest)
	return request, args.Error(1)
}

func (m *MockPaymentGateway) CreateRefund(ctx context.Context, originalPaymentReference string, amount decimal.Decimal) (*domain.Refund, error) {
	args := m.Called(ctx, originalPaymentReference, amount)
	refund, _ := args.Get(0).(*domain.Refund)
	return refund, args.Error(1)
}
