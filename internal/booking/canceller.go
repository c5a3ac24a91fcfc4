package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/kallbadhuset/bastubokning/internal/mailer"
)

const (
	MsgCancelled          = "Booking cancelled"
	MsgAlreadyCancelled   = "Booking is already cancelled"
	MsgWindowClosed       = "Cancellation is not allowed less than 24 hours before start time"
	MsgCancellationFailed = "The booking could not be cancelled, please try again"

	cancellationTemplate = "booking_cancelled.tmpl"

	// cancellationWindow is how long before the slot starts cancellation
	// closes, unless the slot is flagged repayable.
	cancellationWindow = 24 * time.Hour
)

type CancellerOptions struct {
	Logger   *slog.Logger
	Bookings domain.BookingRepository
	Slots    domain.SlotRepository
	Coupons  domain.CouponRepository
	Gateway  domain.PaymentGateway
	Mailer   mailer.Mailer
	Now      func() time.Time
}

// Canceller enforces the cancellation window and reverses a booking's seat,
// coupon and payment effects exactly once.
type Canceller struct {
	logger   *slog.Logger
	bookings domain.BookingRepository
	slots    domain.SlotRepository
	coupons  domain.CouponRepository
	gateway  domain.PaymentGateway
	mailer   mailer.Mailer
	now      func() time.Time
}

func NewCanceller(opts CancellerOptions) *Canceller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Canceller{
		logger:   opts.Logger,
		bookings: opts.Bookings,
		slots:    opts.Slots,
		coupons:  opts.Coupons,
		gateway:  opts.Gateway,
		mailer:   opts.Mailer,
		now:      now,
	}
}

// Cancel marks the booking cancelled and then attempts every reversal step
// independently: crediting the coupon, refunding the payment and releasing the
// seats. Failures are aggregated into the result rather than aborting the
// remaining steps, since a partially reversed cancellation is still better
// than booking records stuck half-cancelled.
func (c *Canceller) Cancel(ctx context.Context, bookingID int) Result {
	detail, err := c.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return failure("Booking not found")
		}
		c.logger.Error("cancel failed", "op", "fetching booking", "error", err)
		return failure(MsgCancellationFailed)
	}

	if detail.Status == domain.BookingStatusCancelled {
		// Reversal already happened; repeating it would double-credit.
		return Result{Success: true, Message: MsgAlreadyCancelled, Booking: &detail.Booking}
	}

	if !c.eligible(detail.Slot) {
		return failure(MsgWindowClosed)
	}

	if err := c.bookings.MarkCancelled(ctx, bookingID); err != nil {
		c.logger.Error("cancel failed", "op", "marking booking cancelled", "error", err)
		return failure(MsgCancellationFailed)
	}

	var problems []error

	if detail.Coupon != nil && detail.Coupon.Consumable() {
		if err := c.coupons.Credit(ctx, detail.Coupon.ID, detail.BookedSeats); err != nil {
			problems = append(problems, fmt.Errorf("crediting coupon uses: %w", err))
		}
	}

	if detail.Transaction != nil {
		_, err := c.gateway.CreateRefund(ctx, detail.Transaction.PaymentReference, detail.Transaction.Amount)
		if err != nil {
			problems = append(problems, fmt.Errorf("refunding payment: %w", err))
		}
	}

	if err := c.slots.ReleaseSeats(ctx, detail.SlotID, detail.BookedSeats); err != nil {
		problems = append(problems, fmt.Errorf("releasing seats: %w", err))
	}

	if len(problems) > 0 {
		err := errors.Join(problems...)
		c.logger.Error("cancellation reversal incomplete", "booking", bookingID, "error", err)

		return failure(fmt.Sprintf("Booking was cancelled but not fully reversed: %v", err))
	}

	c.logger.Info("booking cancelled", "booking", bookingID, "seats", detail.BookedSeats)

	c.sendReceipt(detail)

	detail.Status = domain.BookingStatusCancelled

	return Result{Success: true, Message: MsgCancelled, Booking: &detail.Booking}
}

func (c *Canceller) eligible(slot *domain.Slot) bool {
	if slot == nil {
		return false
	}
	if slot.Repayable {
		return true
	}

	return c.now().Add(cancellationWindow).Before(slot.StartTime)
}

func (c *Canceller) sendReceipt(detail *domain.BookingDetail) {
	if c.mailer == nil || detail.User == nil {
		return
	}

	data := map[string]any{
		"bookingUUID": detail.UUID,
		"seats":       detail.BookedSeats,
		"startTime":   detail.Slot.StartTime,
		"refunded":    detail.Transaction != nil,
	}

	if err := c.mailer.Send(detail.User.Email, cancellationTemplate, data); err != nil {
		c.logger.Warn("sending cancellation receipt failed", "booking", detail.ID, "error", err)
	}
}
