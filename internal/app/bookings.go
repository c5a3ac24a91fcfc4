package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kallbadhuset/bastubokning/api"
	"github.com/kallbadhuset/bastubokning/internal/booking"
	"github.com/kallbadhuset/bastubokning/internal/domain"
)

// FinalizeBookingHandler commits the booking for a paid transaction. It is
// called by the polling client once the payment reaches PAID; the order it
// finalizes is the snapshot recorded on the transaction, not client input.
func (app *application) FinalizeBookingHandler(w http.ResponseWriter, r *http.Request) {
	var req api.FinalizeBookingRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	transaction, err := app.transactionRepo.GetByID(r.Context(), req.PaymentRequestId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	result := app.finalizer.Finalize(r.Context(), transaction.Order, transaction.ID)

	err = app.writeJSON(w, http.StatusOK, toBookingResult(result), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CouponBookingHandler commits a booking paid with a prepaid coupon, with no
// payment leg involved.
func (app *application) CouponBookingHandler(w http.ResponseWriter, r *http.Request) {
	var req api.CouponBookingRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	if req.Order.CouponId == 0 || req.Order.CouponCode == "" {
		app.badRequestResponse(w, r, errors.New("a coupon id and code are required"))
		return
	}

	order := toDomainOrder(req.Order)
	order.Payment = domain.CouponPayment(req.Order.CouponId, req.Order.CouponCode)

	result := app.finalizer.FinalizeWithCoupon(r.Context(), order)

	err = app.writeJSON(w, http.StatusOK, toBookingResult(result), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetBookingHandler serves the public detail page: an unauthenticated lookup
// keyed by the booking's opaque identifier.
func (app *application) GetBookingHandler(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")

	err := app.validator.Var(uuid, "required,uuid4")
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid booking identifier"))
		return
	}

	detail, err := app.bookingRepo.GetByUUID(r.Context(), uuid)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.BookingDetailResponse{
		Uuid:        detail.UUID,
		Status:      string(detail.Status),
		Seats:       detail.BookedSeats,
		DoorCode:    detail.DoorCode,
		Cancellable: cancellable(detail, time.Now()),
	}
	if detail.Slot != nil {
		resp.Slot = toApiSlot(detail.Slot)
	}
	if detail.Transaction != nil {
		resp.Amount = detail.Transaction.Amount.StringFixed(2)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) CancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.intURLParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	result := app.canceller.Cancel(r.Context(), id)

	err = app.writeJSON(w, http.StatusOK, toBookingResult(result), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// cancellable mirrors the canceller's eligibility rule for display purposes.
func cancellable(detail *domain.BookingDetail, now time.Time) bool {
	if detail.Status != domain.BookingStatusActive || detail.Slot == nil {
		return false
	}
	if detail.Slot.Repayable {
		return true
	}
	return now.Add(24 * time.Hour).Before(detail.Slot.StartTime)
}

func toBookingResult(result booking.Result) api.BookingResultResponse {
	resp := api.BookingResultResponse{
		Success: result.Success,
		Message: result.Message,
	}

	if result.Booking != nil {
		resp.Booking = &api.Booking{
			Id:        result.Booking.ID,
			Uuid:      result.Booking.UUID,
			Seats:     result.Booking.BookedSeats,
			DoorCode:  result.Booking.DoorCode,
			Status:    string(result.Booking.Status),
			CreatedAt: result.Booking.CreatedAt,
		}
	}

	return resp
}
