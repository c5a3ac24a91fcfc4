package directus

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kallbadhuset/bastubokning/internal/domain"
)

type CouponRepository struct {
	client *Client
	now    func() time.Time
}

func NewCouponRepository(client *Client) *CouponRepository {
	return &CouponRepository{client: client, now: time.Now}
}

type couponRecord struct {
	ID            int        `json:"id"`
	User          string     `json:"user"`
	Type          string     `json:"type"`
	Code          string     `json:"code"`
	StartDate     time.Time  `json:"start_date"`
	ExpiryDate    time.Time  `json:"expiry_date"`
	RemainingUses int        `json:"remaining_uses"`
	TotalUses     int        `json:"total_uses"`
	Transaction   string     `json:"transaction,omitempty"`
}

func (r *couponRecord) toDomain() *domain.Coupon {
	return &domain.Coupon{
		ID:            r.ID,
		UserID:        r.User,
		Type:          domain.CouponType(r.Type),
		Code:          r.Code,
		StartDate:     r.StartDate,
		ExpiryDate:    r.ExpiryDate,
		RemainingUses: r.RemainingUses,
		TotalUses:     r.TotalUses,
		TransactionID: r.Transaction,
	}
}

func (r *CouponRepository) GetByID(ctx context.Context, id int) (*domain.Coupon, error) {
	var record couponRecord

	err := r.client.get(ctx, fmt.Sprintf("/items/coupons/%d", id), nil, &record)
	if err != nil {
		if IsStatus(err, http.StatusForbidden, http.StatusNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return record.toDomain(), nil
}

func (r *CouponRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Coupon, error) {
	query := filterParam(eqFilter("transaction", transactionID))

	var records []couponRecord
	if err := r.client.get(ctx, "/items/coupons", query, &records); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, domain.ErrRecordNotFound
	}

	return records[0].toDomain(), nil
}

func (r *CouponRepository) Validate(ctx context.Context, id int, code string, seats int) (*domain.Coupon, error) {
	coupon, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := coupon.ValidateRedemption(code, seats, r.now()); err != nil {
		return nil, err
	}

	return coupon, nil
}

func (r *CouponRepository) ListActiveByEmail(ctx context.Context, email string) ([]domain.Coupon, error) {
	query := filterParam(map[string]any{
		"_and": []map[string]any{
			{"expiry_date": map[string]any{"_gte": "$NOW"}},
			{"start_date": map[string]any{"_lte": "$NOW"}},
			{"remaining_uses": map[string]any{"_gt": 0}},
			{"user": map[string]any{"email": map[string]any{"_eq": email}}},
		},
	})

	var records []couponRecord
	if err := r.client.get(ctx, "/items/coupons", query, &records); err != nil {
		return nil, err
	}

	coupons := make([]domain.Coupon, len(records))
	for i, record := range records {
		coupons[i] = *record.toDomain()
	}

	return coupons, nil
}

func (r *CouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	body := map[string]any{
		"user":           coupon.UserID,
		"type":           coupon.Type,
		"code":           coupon.Code,
		"start_date":     coupon.StartDate,
		"expiry_date":    coupon.ExpiryDate,
		"remaining_uses": coupon.RemainingUses,
		"total_uses":     coupon.TotalUses,
	}
	if coupon.TransactionID != "" {
		body["transaction"] = coupon.TransactionID
	}

	var created couponRecord
	if err := r.client.post(ctx, "/items/coupons", body, &created); err != nil {
		return err
	}

	coupon.ID = created.ID

	return nil
}

func (r *CouponRepository) Debit(ctx context.Context, id, uses int) error {
	return r.adjustRemainingUses(ctx, id, -uses)
}

func (r *CouponRepository) Credit(ctx context.Context, id, uses int) error {
	return r.adjustRemainingUses(ctx, id, uses)
}

func (r *CouponRepository) adjustRemainingUses(ctx context.Context, id, delta int) error {
	coupon, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	remaining := coupon.RemainingUses + delta
	if remaining < 0 {
		return domain.ErrInsufficientUses
	}

	body := map[string]any{"remaining_uses": remaining}

	return r.client.patch(ctx, fmt.Sprintf("/items/coupons/%d", id), body, nil)
}
