package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type PaymentKind string

const (
	PaymentKindSwish  PaymentKind = "swish"
	PaymentKindCoupon PaymentKind = "coupon"
	PaymentKindNone   PaymentKind = "none"
)

// PaymentMethod is a tagged variant: exactly the fields belonging to Kind are set.
type PaymentMethod struct {
	Kind          PaymentKind
	TransactionID string
	CouponID      int
	CouponCode    string
}

func SwishPayment(transactionID string) PaymentMethod {
	return PaymentMethod{Kind: PaymentKindSwish, TransactionID: transactionID}
}

func CouponPayment(couponID int, code string) PaymentMethod {
	return PaymentMethod{Kind: PaymentKindCoupon, CouponID: couponID, CouponCode: code}
}

// Order is the client-constructed purchase intent. It is never persisted on its
// own; a snapshot of it travels with the transaction record until a booking is
// committed.
type Order struct {
	SlotID     int             `json:"slotId"`
	Seats      int             `json:"selectedSeats"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	IsMember   bool            `json:"isMember"`
	Payment    PaymentMethod   `json:"-"`
	TotalPrice decimal.Decimal `json:"totalPrice"`

	// IdempotencyKey guards the coupon path, which has no payment reference
	// to anchor idempotent finalization on.
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// Normalize lowercases contact fields so user lookups are case-insensitive.
func (o *Order) Normalize() {
	o.Email = strings.ToLower(strings.TrimSpace(o.Email))
	o.Phone = strings.TrimSpace(o.Phone)
}
