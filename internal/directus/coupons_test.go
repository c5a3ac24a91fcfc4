package directus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func couponStore(t *testing.T, record map[string]any) *CouponRepository {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": record})
	})

	return NewCouponRepository(store)
}

func TestCouponRepository_Validate(t *testing.T) {
	now := time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC)

	record := map[string]any{
		"id":             5,
		"type":           "Klippkort",
		"code":           "1234",
		"start_date":     "2026-01-01T00:00:00Z",
		"expiry_date":    "2026-12-31T00:00:00Z",
		"remaining_uses": 3,
		"total_uses":     10,
	}

	tests := []struct {
		name    string
		code    string
		seats   int
		expiry  string
		wantErr error
	}{
		{name: "valid redemption", code: "1234", seats: 2},
		{name: "wrong code", code: "0000", seats: 1, wantErr: domain.ErrInvalidCouponCode},
		{name: "expired", code: "1234", seats: 1, expiry: "2026-02-01T00:00:00Z", wantErr: domain.ErrCouponExpired},
		{name: "not enough uses left", code: "1234", seats: 4, wantErr: domain.ErrInsufficientUses},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := make(map[string]any, len(record))
			for k, v := range record {
				rec[k] = v
			}
			if tt.expiry != "" {
				rec["expiry_date"] = tt.expiry
			}

			repo := couponStore(t, rec)
			repo.now = func() time.Time { return now }

			coupon, err := repo.Validate(context.Background(), 5, tt.code, tt.seats)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 5, coupon.ID)
			assert.Equal(t, domain.CouponTypePunchCard, coupon.Type)
		})
	}
}

func TestCouponRepository_ListActiveByEmail(t *testing.T) {
	var filter map[string]any

	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("filter")), &filter))

		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"id": 5, "type": "Klippkort", "remaining_uses": 3, "total_uses": 10},
		}})
	})

	coupons, err := NewCouponRepository(store).ListActiveByEmail(context.Background(), "bather@example.com")
	require.NoError(t, err)
	require.Len(t, coupons, 1)

	// The store applies the activity window; assert the conditions travel in
	// the filter rather than being applied client-side.
	conditions := filter["_and"].([]any)
	require.Len(t, conditions, 4)
	assert.Contains(t, conditions, map[string]any{"expiry_date": map[string]any{"_gte": "$NOW"}})
	assert.Contains(t, conditions, map[string]any{"remaining_uses": map[string]any{"_gt": float64(0)}})
	assert.Contains(t, conditions, map[string]any{"user": map[string]any{"email": map[string]any{"_eq": "bather@example.com"}}})
}

func TestCouponRepository_GetByTransactionID(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		var filter map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("filter")), &filter))
		assert.Equal(t, map[string]any{"transaction": map[string]any{"_eq": "TX1"}}, filter)

		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"id": 5, "transaction": "TX1"},
		}})
	})

	coupon, err := NewCouponRepository(store).GetByTransactionID(context.Background(), "TX1")
	require.NoError(t, err)
	assert.Equal(t, "TX1", coupon.TransactionID)
}

func TestCouponRepository_GetByTransactionID_NoMatch(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := NewCouponRepository(store).GetByTransactionID(context.Background(), "TX1")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestCouponRepository_DebitAndCredit(t *testing.T) {
	tests := []struct {
		name          string
		remaining     int
		adjust        func(*CouponRepository) error
		wantRemaining int
		wantErr       error
	}{
		{
			name:      "debit two uses",
			remaining: 3,
			adjust: func(r *CouponRepository) error {
				return r.Debit(context.Background(), 5, 2)
			},
			wantRemaining: 1,
		},
		{
			name:      "debit below zero refused",
			remaining: 1,
			adjust: func(r *CouponRepository) error {
				return r.Debit(context.Background(), 5, 2)
			},
			wantErr: domain.ErrInsufficientUses,
		},
		{
			name:      "credit restores uses",
			remaining: 1,
			adjust: func(r *CouponRepository) error {
				return r.Credit(context.Background(), 5, 2)
			},
			wantRemaining: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var patched map[string]any

			store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
				switch r.Method {
				case http.MethodGet:
					json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
						"id": 5, "remaining_uses": tt.remaining, "total_uses": 10,
					}})
				case http.MethodPatch:
					assert.Equal(t, "/items/coupons/5", r.URL.Path)
					json.NewDecoder(r.Body).Decode(&patched)
					w.Write([]byte(`{"data":null}`))
				}
			})

			err := tt.adjust(NewCouponRepository(store))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, patched)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, map[string]any{"remaining_uses": float64(tt.wantRemaining)}, patched)
		})
	}
}

func TestCouponRepository_CreateAssignsID(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Klippkort", body["type"])
		assert.Equal(t, float64(10), body["remaining_uses"])

		fmt.Fprint(w, `{"data":{"id":77}}`)
	})

	coupon := &domain.Coupon{Type: domain.CouponTypePunchCard, Code: "1234", RemainingUses: 10, TotalUses: 10}

	err := NewCouponRepository(store).Create(context.Background(), coupon)
	require.NoError(t, err)
	assert.Equal(t, 77, coupon.ID)
}
