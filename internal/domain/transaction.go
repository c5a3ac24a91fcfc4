package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusPaid      TransactionStatus = "PAID"
	TransactionStatusDeclined  TransactionStatus = "DECLINED"
	TransactionStatusError     TransactionStatus = "ERROR"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// Terminal reports whether the gateway will never move the transaction to
// another status again.
func (s TransactionStatus) Terminal() bool {
	switch s {
	case TransactionStatusPaid, TransactionStatusDeclined, TransactionStatusError, TransactionStatusCancelled:
		return true
	}
	return false
}

// Transaction records a payment request made to the gateway. Its ID equals the
// gateway's payment instruction id, which is what makes finalization
// idempotent: at most one booking can reference it.
type Transaction struct {
	ID               string
	Order            Order
	Status           TransactionStatus
	Amount           decimal.Decimal
	Message          string
	PaymentReference string
	DatePaid         *time.Time
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	// GetByID returns ErrRecordNotFound when the record does not exist yet.
	// The gateway may confirm a payment before the local write completes, so
	// callers treat that as a pending state rather than a failure.
	GetByID(ctx context.Context, id string) (*Transaction, error)
}
