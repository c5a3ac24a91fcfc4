package app

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"strings"

	"github.com/kallbadhuset/bastubokning/api"
	"github.com/kallbadhuset/bastubokning/internal/domain"
)

const (
	msgCouponCreated     = "Coupon successfully created"
	msgCouponNotPaid     = "Payment has not been confirmed"
	msgCouponUnknownKind = "Unknown coupon product"
	seasonPassUses       = 1000
)

func (app *application) ListCouponsHandler(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))

	err := app.validator.Var(email, "required,email")
	if err != nil {
		app.badRequestResponse(w, r, errors.New("a valid email query parameter is required"))
		return
	}

	coupons, err := app.couponRepo.ListActiveByEmail(r.Context(), email)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.CouponsResponse{Coupons: make([]api.CouponSummary, 0, len(coupons))}
	for i := range coupons {
		resp.Coupons = append(resp.Coupons, toCouponSummary(&coupons[i]))
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CreateCouponHandler issues a punch card or season pass once its payment is
// confirmed. Like booking finalization it is driven by the polling client, so
// it must tolerate being called more than once per transaction: the coupon
// already bought with the transaction is returned instead of a second one.
func (app *application) CreateCouponHandler(w http.ResponseWriter, r *http.Request) {
	var req api.CreateCouponRequest

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

	couponType, uses, ok := parseCouponProduct(req.Product)
	if !ok {
		app.badRequestResponse(w, r, errors.New(msgCouponUnknownKind))
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

	if transaction.Status != domain.TransactionStatusPaid {
		resp := api.CouponResultResponse{Success: false, Message: msgCouponNotPaid}
		app.writeJSON(w, http.StatusOK, resp, nil)
		return
	}

	existing, err := app.couponRepo.GetByTransactionID(r.Context(), transaction.ID)
	if err == nil {
		app.writeCouponResult(w, r, existing)
		return
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		app.serverErrorResponse(w, r, err)
		return
	}

	order := toDomainOrder(req.Order)
	order.Normalize()

	user, err := app.userRepo.GetOrCreateByEmail(r.Context(), order.Email, order.Phone)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	coupon := domain.Coupon{
		UserID:        user.ID,
		Type:          couponType,
		Code:          newCouponCode(),
		StartDate:     req.StartDate,
		ExpiryDate:    req.ExpiryDate,
		RemainingUses: uses,
		TotalUses:     uses,
		TransactionID: transaction.ID,
	}

	err = app.couponRepo.Create(r.Context(), &coupon)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.logger.Info("coupon created", "couponId", coupon.ID, "type", coupon.Type, "transactionId", transaction.ID)

	app.writeCouponResult(w, r, &coupon)
}

func (app *application) writeCouponResult(w http.ResponseWriter, r *http.Request, coupon *domain.Coupon) {
	summary := toCouponSummary(coupon)
	resp := api.CouponResultResponse{
		Success: true,
		Message: msgCouponCreated,
		Coupon:  &summary,
	}

	err := app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// parseCouponProduct maps the storefront product name to a coupon type and use
// count. Season passes are sold as "Årskort"; punch cards carry their use
// count in the name, e.g. "Klippkort 10 bad".
func parseCouponProduct(product string) (domain.CouponType, int, bool) {
	if strings.Contains(product, "Årskort") || strings.Contains(product, string(domain.CouponTypeSeasonPass)) {
		return domain.CouponTypeSeasonPass, seasonPassUses, true
	}

	for _, field := range strings.Fields(product) {
		uses, err := strconv.Atoi(field)
		if err == nil && uses > 0 {
			return domain.CouponTypePunchCard, uses, true
		}
	}

	return "", 0, false
}

// newCouponCode returns the four digit code the holder types in at redemption.
// It is not a secret on its own; redemption also requires the coupon id.
func newCouponCode() string {
	return strconv.Itoa(1000 + rand.Intn(9000))
}

func toCouponSummary(coupon *domain.Coupon) api.CouponSummary {
	return api.CouponSummary{
		Id:            coupon.ID,
		Type:          string(coupon.Type),
		RemainingUses: coupon.RemainingUses,
		TotalUses:     coupon.TotalUses,
		StartDate:     coupon.StartDate,
		ExpiryDate:    coupon.ExpiryDate,
	}
}
