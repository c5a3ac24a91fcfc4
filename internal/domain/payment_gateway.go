package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentRequest is the gateway's handle for an initiated payment: the
// instruction id, the redirect token and a base64 PNG of the scannable code.
type PaymentRequest struct {
	ID     string
	Token  string
	QRCode string
}

type Refund struct {
	InstructionID string
	Location      string
}

type PaymentGateway interface {
	CreatePaymentRequest(ctx context.Context, amount decimal.Decimal, message string) (*PaymentRequest, error)
	CreateRefund(ctx context.Context, originalPaymentReference string, amount decimal.Decimal) (*Refund, error)
}
