// Package booking holds the reservation workflow: finalizing a booking after a
// confirmed payment or validated coupon, cancelling it within the policy
// window, and watching a payment until it reaches a terminal state.
package booking

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/kallbadhuset/bastubokning/internal/mailer"
)

// User-facing outcome messages. Expected business rejections surface through
// these; infrastructure errors surface through MsgInternal plus a log entry.
const (
	MsgBooked              = "Slot successfully booked"
	MsgPaymentNotConfirmed = "Payment is not confirmed"
	MsgNotEnoughSeats      = "Not enough seats available"
	MsgSlotGone            = "The slot is no longer available"
	MsgCouponRejected      = "The coupon could not be used"
	MsgDuplicateSubmission = "This booking was already submitted"
	MsgInternal            = "The booking could not be completed, please try again"

	confirmationTemplate = "booking_confirmation.tmpl"
)

// Result is the outcome of a finalize or cancel operation. Business rejections
// are results, not errors: they are expected, user-actionable outcomes.
type Result struct {
	Success bool
	Message string
	Booking *domain.Booking
}

func failure(message string) Result {
	return Result{Message: message}
}

type FinalizerOptions struct {
	Logger       *slog.Logger
	Slots        domain.SlotRepository
	Bookings     domain.BookingRepository
	Coupons      domain.CouponRepository
	Transactions domain.TransactionRepository
	Users        domain.UserRepository
	AccessCodes  domain.AccessCodeProvider
	Locker       SlotLocker
	Idempotency  IdempotencyGuard
	Mailer       mailer.Mailer
}

// Finalizer commits bookings at most once per payment reference. It owns the
// ordering of the commit sequence; the repositories own the records.
type Finalizer struct {
	logger       *slog.Logger
	slots        domain.SlotRepository
	bookings     domain.BookingRepository
	coupons      domain.CouponRepository
	transactions domain.TransactionRepository
	users        domain.UserRepository
	accessCodes  domain.AccessCodeProvider
	locker       SlotLocker
	idempotency  IdempotencyGuard
	mailer       mailer.Mailer
}

func NewFinalizer(opts FinalizerOptions) *Finalizer {
	return &Finalizer{
		logger:       opts.Logger,
		slots:        opts.Slots,
		bookings:     opts.Bookings,
		coupons:      opts.Coupons,
		transactions: opts.Transactions,
		users:        opts.Users,
		accessCodes:  opts.AccessCodes,
		locker:       opts.Locker,
		idempotency:  opts.Idempotency,
		mailer:       opts.Mailer,
	}
}

// Finalize commits the booking for a paid transaction. Calling it again with
// the same transaction id returns the already-committed booking without new
// side effects; that idempotency is the primary defense against duplicated
// payment confirmations, since seat races cannot be fully prevented by the
// store (see ReserveSeats).
func (f *Finalizer) Finalize(ctx context.Context, order domain.Order, transactionID string) Result {
	order.Normalize()

	tx, err := f.transactions.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return failure(MsgPaymentNotConfirmed)
		}
		return f.internalFailure("fetching transaction", err)
	}

	if tx.Status != domain.TransactionStatusPaid {
		return failure(MsgPaymentNotConfirmed)
	}

	// Primary idempotency check: one booking per transaction id.
	existing, err := f.bookings.GetByTransactionID(ctx, transactionID)
	if err == nil {
		return Result{Success: true, Message: MsgBooked, Booking: existing}
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return f.internalFailure("looking up existing booking", err)
	}

	slot, rejection, err := f.revalidateSlot(ctx, order)
	if err != nil {
		return f.internalFailure("revalidating slot", err)
	}
	if rejection != "" {
		return failure(rejection)
	}

	user, err := f.users.GetOrCreateByEmail(ctx, order.Email, order.Phone)
	if err != nil {
		return f.internalFailure("resolving user", err)
	}

	bkg, err := f.commit(ctx, order, slot, user, transactionID, nil)
	if err != nil {
		return f.internalFailure("committing booking", err)
	}

	f.sendConfirmation(user.Email, bkg, slot)

	return Result{Success: true, Message: MsgBooked, Booking: bkg}
}

// FinalizeWithCoupon commits a booking paid with a prepaid coupon. There is no
// payment reference to anchor idempotency on, so the order's client-generated
// idempotency key is claimed first and released again if the booking does not
// commit.
func (f *Finalizer) FinalizeWithCoupon(ctx context.Context, order domain.Order) Result {
	order.Normalize()

	if order.Payment.Kind != domain.PaymentKindCoupon {
		return failure(MsgCouponRejected)
	}

	claimed := false
	if order.IdempotencyKey != "" {
		ok, err := f.idempotency.Claim(ctx, order.IdempotencyKey)
		if err != nil {
			return f.internalFailure("claiming idempotency key", err)
		}
		if !ok {
			return failure(MsgDuplicateSubmission)
		}
		claimed = true
	}

	result := f.finalizeWithCoupon(ctx, order)

	if claimed && !result.Success {
		if err := f.idempotency.Release(ctx, order.IdempotencyKey); err != nil {
			f.logger.Warn("releasing idempotency key failed", "key", order.IdempotencyKey, "error", err)
		}
	}

	return result
}

func (f *Finalizer) finalizeWithCoupon(ctx context.Context, order domain.Order) Result {
	coupon, err := f.coupons.Validate(ctx, order.Payment.CouponID, order.Payment.CouponCode, order.Seats)
	if err != nil {
		if domain.IsCouponRejection(err) {
			return failure(couponRejectionMessage(err))
		}
		return f.internalFailure("validating coupon", err)
	}

	slot, rejection, err := f.revalidateSlot(ctx, order)
	if err != nil {
		return f.internalFailure("revalidating slot", err)
	}
	if rejection != "" {
		return failure(rejection)
	}

	user, err := f.users.GetOrCreateByEmail(ctx, order.Email, order.Phone)
	if err != nil {
		return f.internalFailure("resolving user", err)
	}

	bkg, err := f.commit(ctx, order, slot, user, "", coupon)
	if err != nil {
		return f.internalFailure("committing booking", err)
	}

	f.sendConfirmation(user.Email, bkg, slot)

	return Result{Success: true, Message: MsgBooked, Booking: bkg}
}

// revalidateSlot fetches the slot fresh and checks capacity as late as
// possible, narrowing the window between validation and commit.
func (f *Finalizer) revalidateSlot(ctx context.Context, order domain.Order) (*domain.Slot, string, error) {
	slot, err := f.slots.GetByID(ctx, order.SlotID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, MsgSlotGone, nil
		}
		return nil, "", err
	}

	if slot.AvailableSeats < order.Seats {
		return nil, MsgNotEnoughSeats, nil
	}

	return slot, "", nil
}

// commit performs the write sequence under the per-slot lock. If a later step
// fails after the booking record is created, no rollback is attempted; the
// idempotency anchors keep retries from duplicating the committed part.
func (f *Finalizer) commit(
	ctx context.Context,
	order domain.Order,
	slot *domain.Slot,
	user *domain.User,
	transactionID string,
	coupon *domain.Coupon) (*domain.Booking, error) {

	release, err := f.locker.AcquireSlot(ctx, slot.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Second idempotency check now that we hold the lock: a concurrent
	// finalize for the same transaction may have committed since the first
	// check.
	if transactionID != "" {
		existing, err := f.bookings.GetByTransactionID(ctx, transactionID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return nil, err
		}
	}

	doorCode, err := f.accessCodes.CreateCode(ctx, user.Email, slot.StartTime, slot.EndTime)
	if err != nil {
		return nil, err
	}

	bkg := &domain.Booking{
		UserID:        user.ID,
		SlotID:        slot.ID,
		BookedSeats:   order.Seats,
		TransactionID: transactionID,
		DoorCode:      doorCode,
	}
	if coupon != nil {
		bkg.CouponID = coupon.ID
	}

	if err := f.bookings.Create(ctx, bkg); err != nil {
		return nil, err
	}

	if err := f.slots.ReserveSeats(ctx, slot.ID, order.Seats); err != nil {
		return nil, err
	}

	if coupon != nil && coupon.Consumable() {
		if err := f.coupons.Debit(ctx, coupon.ID, order.Seats); err != nil {
			return nil, err
		}
	}

	f.logger.Info("booking committed",
		"booking", bkg.ID, "slot", slot.ID, "seats", order.Seats, "transaction", transactionID)

	return bkg, nil
}

func (f *Finalizer) sendConfirmation(email string, bkg *domain.Booking, slot *domain.Slot) {
	if f.mailer == nil {
		return
	}

	data := map[string]any{
		"bookingUUID": bkg.UUID,
		"doorCode":    bkg.DoorCode,
		"seats":       bkg.BookedSeats,
		"startTime":   slot.StartTime,
		"endTime":     slot.EndTime,
	}

	if err := f.mailer.Send(email, confirmationTemplate, data); err != nil {
		f.logger.Warn("sending booking confirmation failed", "booking", bkg.ID, "error", err)
	}
}

func (f *Finalizer) internalFailure(op string, err error) Result {
	f.logger.Error("finalize failed", "op", op, "error", err)
	return failure(MsgInternal)
}

func couponRejectionMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCouponCode):
		return "The entered code is incorrect"
	case errors.Is(err, domain.ErrCouponExpired):
		return "The coupon has passed its expiry date"
	case errors.Is(err, domain.ErrInsufficientUses):
		return "The coupon does not have enough uses left"
	default:
		return MsgCouponRejected
	}
}
