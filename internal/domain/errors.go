package domain

import "errors"

var (
	ErrRecordNotFound           = errors.New("record not found")
	ErrNotEnoughSeats           = errors.New("not enough seats available")
	ErrPaymentNotConfirmed      = errors.New("payment is not confirmed")
	ErrInvalidCouponCode        = errors.New("coupon code is incorrect")
	ErrCouponExpired            = errors.New("coupon has passed its expiry date")
	ErrInsufficientUses         = errors.New("coupon does not have enough remaining uses")
	ErrCancellationWindowClosed = errors.New("cancellation is not allowed less than 24 hours before start time")
	ErrDuplicateSubmission      = errors.New("booking was already submitted")
)
