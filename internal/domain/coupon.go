package domain

import (
	"context"
	"errors"
	"time"
)

type CouponType string

const (
	// CouponTypePunchCard is a prepaid card with a fixed number of uses.
	CouponTypePunchCard CouponType = "Klippkort"
	// CouponTypeSeasonPass covers a date interval with an effectively
	// unlimited use count.
	CouponTypeSeasonPass CouponType = "Periodkort"
)

type Coupon struct {
	ID            int
	UserID        string
	Type          CouponType
	Code          string
	StartDate     time.Time
	ExpiryDate    time.Time
	RemainingUses int
	TotalUses     int
	TransactionID string
}

// ValidateRedemption checks that the coupon can cover a redemption of seats at
// the given time, using the short code the holder typed in.
func (c *Coupon) ValidateRedemption(code string, seats int, now time.Time) error {
	if c.Code != code {
		return ErrInvalidCouponCode
	}
	if now.After(c.ExpiryDate) {
		return ErrCouponExpired
	}
	if c.RemainingUses < seats {
		return ErrInsufficientUses
	}
	return nil
}

// Consumable reports whether redemption should debit the remaining-uses
// counter. Season passes are date-bounded, not use-bounded.
func (c *Coupon) Consumable() bool {
	return c.Type == CouponTypePunchCard
}

type CouponRepository interface {
	GetByID(ctx context.Context, id int) (*Coupon, error)
	// GetByTransactionID returns ErrRecordNotFound when no coupon was bought
	// with the transaction. The purchase flow's idempotency anchor.
	GetByTransactionID(ctx context.Context, transactionID string) (*Coupon, error)
	// Validate fetches the coupon and checks code, expiry and balance.
	Validate(ctx context.Context, id int, code string, seats int) (*Coupon, error)
	// ListActiveByEmail returns the holder's coupons that are started, not
	// expired and have uses left.
	ListActiveByEmail(ctx context.Context, email string) ([]Coupon, error)
	Create(ctx context.Context, coupon *Coupon) error
	Debit(ctx context.Context, id, uses int) error
	Credit(ctx context.Context, id, uses int) error
}

// IsCouponRejection reports whether err is one of the expected, user-actionable
// coupon validation outcomes rather than an infrastructure failure.
func IsCouponRejection(err error) bool {
	return errors.Is(err, ErrInvalidCouponCode) ||
		errors.Is(err, ErrCouponExpired) ||
		errors.Is(err, ErrInsufficientUses) ||
		errors.Is(err, ErrRecordNotFound)
}
