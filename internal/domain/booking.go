package domain

import (
	"context"
	"time"
)

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a committed reservation against a slot. At most one booking exists
// per transaction id.
type Booking struct {
	ID            int
	UUID          string
	UserID        string
	SlotID        int
	BookedSeats   int
	TransactionID string
	CouponID      int
	DoorCode      string
	Status        BookingStatus
	CreatedAt     time.Time
}

// BookingDetail is a booking with its related records expanded, as needed by
// the public detail page and the cancellation flow.
type BookingDetail struct {
	Booking
	Slot        *Slot
	Transaction *Transaction
	Coupon      *Coupon
	User        *User
}

type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	// GetByTransactionID returns ErrRecordNotFound when no booking references
	// the transaction. This lookup is the finalizer's idempotency anchor.
	GetByTransactionID(ctx context.Context, transactionID string) (*Booking, error)
	GetByUUID(ctx context.Context, uuid string) (*BookingDetail, error)
	GetByID(ctx context.Context, id int) (*BookingDetail, error)
	MarkCancelled(ctx context.Context, id int) error
}
