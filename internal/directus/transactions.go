package directus

import (
	"context"
	"net/http"
	"time"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionRepository struct {
	client *Client
}

func NewTransactionRepository(client *Client) *TransactionRepository {
	return &TransactionRepository{client: client}
}

type transactionRecord struct {
	ID               string                   `json:"id"`
	Order            domain.Order             `json:"order"`
	Status           domain.TransactionStatus `json:"status"`
	Amount           decimal.Decimal          `json:"amount"`
	Message          string                   `json:"message"`
	PaymentReference string                   `json:"paymentReference"`
	DatePaid         *time.Time               `json:"datePaid"`
}

func (r *transactionRecord) toDomain() *domain.Transaction {
	return &domain.Transaction{
		ID:               r.ID,
		Order:            r.Order,
		Status:           r.Status,
		Amount:           r.Amount,
		Message:          r.Message,
		PaymentReference: r.PaymentReference,
		DatePaid:         r.DatePaid,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	body := map[string]any{
		"id":     tx.ID,
		"order":  tx.Order,
		"status": tx.Status,
		"amount": tx.Amount,
	}

	return r.client.post(ctx, "/items/transactions", body, nil)
}

// GetByID maps a forbidden/missing response to ErrRecordNotFound. The gateway
// callback can land before our own transaction write finishes, so a record
// that is not there yet is an expected state.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var record transactionRecord

	err := r.client.get(ctx, "/items/transactions/"+id, nil, &record)
	if err != nil {
		if IsStatus(err, http.StatusForbidden, http.StatusNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return record.toDomain(), nil
}
