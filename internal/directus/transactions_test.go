package directus

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_Create(t *testing.T) {
	var body map[string]any

	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/items/transactions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":null}`))
	})

	tx := &domain.Transaction{
		ID:     "0A1B2C3D4E5F60718293A4B5C6D7E8F9",
		Order:  domain.Order{SlotID: 42, Seats: 2, Email: "bather@example.com"},
		Status: domain.TransactionStatusPending,
		Amount: decimal.RequireFromString("360"),
	}

	err := NewTransactionRepository(store).Create(context.Background(), tx)
	require.NoError(t, err)

	assert.Equal(t, tx.ID, body["id"])
	assert.Equal(t, "PENDING", body["status"])

	// The order snapshot travels with the transaction so finalization does not
	// depend on the client resending it.
	order := body["order"].(map[string]any)
	assert.Equal(t, float64(42), order["slotId"])
	assert.Equal(t, float64(2), order["selectedSeats"])
}

func TestTransactionRepository_GetByID(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/transactions/TX1", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"id":               "TX1",
			"status":           "PAID",
			"amount":           "360",
			"paymentReference": "REF123",
			"order":            map[string]any{"slotId": 42, "selectedSeats": 2, "email": "bather@example.com"},
		}})
	})

	tx, err := NewTransactionRepository(store).GetByID(context.Background(), "TX1")
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionStatusPaid, tx.Status)
	assert.Equal(t, "REF123", tx.PaymentReference)
	assert.Equal(t, 42, tx.Order.SlotID)
	assert.True(t, tx.Status.Terminal())
}

func TestTransactionRepository_GetByID_MissingRecord(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound} {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := NewTransactionRepository(store).GetByID(context.Background(), "TX1")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	}
}
