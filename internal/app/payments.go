package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kallbadhuset/bastubokning/api"
	"github.com/kallbadhuset/bastubokning/internal/booking"
	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/kallbadhuset/bastubokning/internal/swish"
	"github.com/shopspring/decimal"
)

// CreatePaymentHandler opens the payment leg of a booking: it prices the
// order, runs the first availability check, creates the payment request with
// the gateway and records a pending transaction carrying the order snapshot.
func (app *application) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req api.CreatePaymentRequest

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

	order := toDomainOrder(req.Order)
	order.Normalize()

	if order.IsMember {
		isMember, err := app.memberRepo.CheckMembership(r.Context(), order.Email)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		if !isMember {
			app.errorResponse(w, r, http.StatusUnprocessableEntity,
				"The email address is not registered as a member")
			return
		}
	}

	// First availability check. The finalizer re-checks immediately before
	// commit; this one just keeps obviously dead orders out of the payment
	// flow.
	slot, err := app.slotRepo.GetByID(r.Context(), order.SlotID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponseWithErr(w, r, fmt.Errorf("slot %d does not exist", order.SlotID))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	if slot.AvailableSeats < order.Seats {
		app.errorResponse(w, r, http.StatusConflict, "Not enough seats available")
		return
	}

	prices, err := app.priceRepo.Get(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	order.TotalPrice = prices.SeatPriceFor(order.IsMember).Mul(decimal.NewFromInt(int64(order.Seats)))

	message := req.Message
	if message == "" {
		message = app.config.swish.message
	}

	paymentRequest, err := app.gateway.CreatePaymentRequest(r.Context(), order.TotalPrice, message)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	transaction := domain.Transaction{
		ID:     paymentRequest.ID,
		Order:  order,
		Status: domain.TransactionStatusPending,
		Amount: order.TotalPrice,
	}

	err = app.transactionRepo.Create(r.Context(), &transaction)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	callback := fmt.Sprintf("%s/bokning?paymentId=%s", app.config.publicURL, paymentRequest.ID)

	resp := api.PaymentRequestResponse{
		Id:       paymentRequest.ID,
		Token:    paymentRequest.Token,
		QrCode:   paymentRequest.QRCode,
		DeepLink: swish.DeepLink(paymentRequest.Token, callback),
		Amount:   order.TotalPrice.StringFixed(2),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetPaymentStatusHandler reports the transaction's status to the polling
// client. A transaction that does not exist yet is reported as PENDING, never
// as an error: the gateway may call back before our own record lands.
func (app *application) GetPaymentStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	status := domain.TransactionStatusPending

	transaction, err := app.transactionRepo.GetByID(r.Context(), id)
	if err == nil && transaction.Status.Terminal() {
		status = transaction.Status
	} else if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.PaymentStatusResponse{
		Id:     id,
		Status: string(status),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// AwaitPaymentHandler blocks until the payment reaches a terminal state or the
// in-request poll budget runs out, then finalizes on PAID. Each request gets
// its own watcher with a budget that fits inside the server write timeout; a
// poll-timeout result tells the client to call again.
func (app *application) AwaitPaymentHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	watcher := booking.NewStatusWatcher(app.transactionRepo, app.logger).
		WithSchedule(2*time.Second, 4)

	result := watcher.WaitAndFinalize(r.Context(), id, app.finalizer)

	err := app.writeJSON(w, http.StatusOK, toBookingResult(result), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toDomainOrder(req api.OrderRequest) domain.Order {
	return domain.Order{
		SlotID:         req.SlotId,
		Seats:          req.SelectedSeats,
		Email:          req.Email,
		Phone:          req.Phone,
		IsMember:       req.IsMember,
		IdempotencyKey: req.IdempotencyKey,
	}
}
