// Package api defines the request and response types of the booking service's
// HTTP surface.
package api

import "time"

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type Slot struct {
	Id             int       `json:"id"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	TotalSeats     int       `json:"totalSeats"`
	AvailableSeats int       `json:"availableSeats"`
	Description    string    `json:"description"`
	Repayable      bool      `json:"repayable"`
}

type SlotsResponse struct {
	Slots []Slot `json:"slots"`
}

type TemperatureResponse struct {
	Temperature string `json:"temperature"`
}

type MembershipResponse struct {
	Member bool `json:"member"`
}

// CouponSummary deliberately omits the redemption code; the holder is expected
// to know it.
type CouponSummary struct {
	Id            int       `json:"id"`
	Type          string    `json:"type"`
	RemainingUses int       `json:"remainingUses"`
	TotalUses     int       `json:"totalUses"`
	StartDate     time.Time `json:"startDate"`
	ExpiryDate    time.Time `json:"expiryDate"`
}

type CouponsResponse struct {
	Coupons []CouponSummary `json:"coupons"`
}

type OrderRequest struct {
	SlotId         int    `json:"slotId" validate:"required,gt=0"`
	SelectedSeats  int    `json:"selectedSeats" validate:"required,gt=0"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required,phone_se"`
	IsMember       bool   `json:"isMember"`
	CouponId       int    `json:"couponId,omitempty"`
	CouponCode     string `json:"couponCode,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type CreatePaymentRequest struct {
	Order   OrderRequest `json:"order" validate:"required"`
	Message string       `json:"message" validate:"max=50"`
}

type PaymentRequestResponse struct {
	Id       string `json:"id"`
	Token    string `json:"token"`
	QrCode   string `json:"qrCode"`
	DeepLink string `json:"deepLink"`
	Amount   string `json:"amount"`
}

type PaymentStatusResponse struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

type FinalizeBookingRequest struct {
	PaymentRequestId string `json:"paymentRequestId" validate:"required"`
}

type CouponBookingRequest struct {
	Order OrderRequest `json:"order" validate:"required"`
}

type Booking struct {
	Id        int       `json:"id"`
	Uuid      string    `json:"uuid"`
	Seats     int       `json:"seats"`
	DoorCode  string    `json:"doorCode"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type BookingResultResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Booking *Booking `json:"booking,omitempty"`
}

type BookingDetailResponse struct {
	Uuid        string `json:"uuid"`
	Status      string `json:"status"`
	Seats       int    `json:"seats"`
	DoorCode    string `json:"doorCode"`
	Slot        *Slot  `json:"slot,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Cancellable bool   `json:"cancellable"`
}

type CreateMemberRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

type CreateCouponRequest struct {
	Order            OrderRequest `json:"order" validate:"required"`
	PaymentRequestId string       `json:"paymentRequestId" validate:"required"`
	Product          string       `json:"product" validate:"required"`
	StartDate        time.Time    `json:"startDate" validate:"required"`
	ExpiryDate       time.Time    `json:"expiryDate" validate:"required"`
}

type CouponResultResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Coupon  *CouponSummary `json:"coupon,omitempty"`
}
