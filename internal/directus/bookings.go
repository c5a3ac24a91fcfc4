package directus

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kallbadhuset/bastubokning/internal/domain"
)

// bookingFields expands the related records needed by the detail page and the
// cancellation flow in a single read.
const bookingFields = "*,slot.*,transaction.*,coupon.*,user.*"

type BookingRepository struct {
	client *Client
}

func NewBookingRepository(client *Client) *BookingRepository {
	return &BookingRepository{client: client}
}

type bookingRecord struct {
	ID          int       `json:"id"`
	UUID        string    `json:"uuid"`
	User        string    `json:"user"`
	Slot        int       `json:"slot"`
	BookedSeats int       `json:"booked_seats"`
	Transaction string    `json:"transaction,omitempty"`
	Coupon      int       `json:"coupon,omitempty"`
	DoorCode    string    `json:"door_code"`
	Status      string    `json:"status"`
	DateCreated time.Time `json:"date_created"`
}

type bookingDetailRecord struct {
	ID          int                `json:"id"`
	UUID        string             `json:"uuid"`
	User        *userRecord        `json:"user"`
	Slot        *slotRecord        `json:"slot"`
	BookedSeats int                `json:"booked_seats"`
	Transaction *transactionRecord `json:"transaction"`
	Coupon      *couponRecord      `json:"coupon"`
	DoorCode    string             `json:"door_code"`
	Status      string             `json:"status"`
	DateCreated time.Time          `json:"date_created"`
}

func (r *bookingRecord) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:            r.ID,
		UUID:          r.UUID,
		UserID:        r.User,
		SlotID:        r.Slot,
		BookedSeats:   r.BookedSeats,
		TransactionID: r.Transaction,
		CouponID:      r.Coupon,
		DoorCode:      r.DoorCode,
		Status:        domain.BookingStatus(r.Status),
		CreatedAt:     r.DateCreated,
	}
}

func (r *bookingDetailRecord) toDomain() *domain.BookingDetail {
	detail := &domain.BookingDetail{
		Booking: domain.Booking{
			ID:          r.ID,
			UUID:        r.UUID,
			BookedSeats: r.BookedSeats,
			DoorCode:    r.DoorCode,
			Status:      domain.BookingStatus(r.Status),
			CreatedAt:   r.DateCreated,
		},
	}

	if r.User != nil {
		detail.User = r.User.toDomain()
		detail.UserID = r.User.ID
	}
	if r.Slot != nil {
		detail.Slot = r.Slot.toDomain()
		detail.SlotID = r.Slot.ID
	}
	if r.Transaction != nil {
		detail.Transaction = r.Transaction.toDomain()
		detail.TransactionID = r.Transaction.ID
	}
	if r.Coupon != nil {
		detail.Coupon = r.Coupon.toDomain()
		detail.CouponID = r.Coupon.ID
	}

	return detail
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	body := map[string]any{
		"user":         booking.UserID,
		"slot":         booking.SlotID,
		"booked_seats": booking.BookedSeats,
		"door_code":    booking.DoorCode,
		"status":       domain.BookingStatusActive,
	}
	if booking.TransactionID != "" {
		body["transaction"] = booking.TransactionID
	}
	if booking.CouponID != 0 {
		body["coupon"] = booking.CouponID
	}

	var created bookingRecord
	if err := r.client.post(ctx, "/items/bookings", body, &created); err != nil {
		return err
	}

	booking.ID = created.ID
	booking.UUID = created.UUID
	booking.Status = domain.BookingStatus(created.Status)
	booking.CreatedAt = created.DateCreated

	return nil
}

func (r *BookingRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Booking, error) {
	query := filterParam(eqFilter("transaction", transactionID))

	var records []bookingRecord
	if err := r.client.get(ctx, "/items/bookings", query, &records); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, domain.ErrRecordNotFound
	}

	return records[0].toDomain(), nil
}

func (r *BookingRepository) GetByUUID(ctx context.Context, uuid string) (*domain.BookingDetail, error) {
	query := filterParam(eqFilter("uuid", uuid))
	query.Set("fields", bookingFields)

	var records []bookingDetailRecord
	if err := r.client.get(ctx, "/items/bookings", query, &records); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, domain.ErrRecordNotFound
	}

	return records[0].toDomain(), nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int) (*domain.BookingDetail, error) {
	query := url.Values{}
	query.Set("fields", bookingFields)

	var record bookingDetailRecord

	err := r.client.get(ctx, fmt.Sprintf("/items/bookings/%d", id), query, &record)
	if err != nil {
		if IsStatus(err, http.StatusForbidden, http.StatusNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return record.toDomain(), nil
}

func (r *BookingRepository) MarkCancelled(ctx context.Context, id int) error {
	body := map[string]any{"status": domain.BookingStatusCancelled}
	return r.client.patch(ctx, fmt.Sprintf("/items/bookings/%d", id), body, nil)
}
