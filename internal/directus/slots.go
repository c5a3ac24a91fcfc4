package directus

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kallbadhuset/bastubokning/internal/domain"
)

type SlotRepository struct {
	client *Client
}

func NewSlotRepository(client *Client) *SlotRepository {
	return &SlotRepository{client: client}
}

type slotRecord struct {
	ID             int       `json:"id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	Description    string    `json:"description"`
	Repayable      bool      `json:"repayable"`
}

func (r *slotRecord) toDomain() *domain.Slot {
	return &domain.Slot{
		ID:             r.ID,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		TotalSeats:     r.TotalSeats,
		AvailableSeats: r.AvailableSeats,
		Description:    r.Description,
		Repayable:      r.Repayable,
	}
}

func (r *SlotRepository) GetByID(ctx context.Context, id int) (*domain.Slot, error) {
	var record slotRecord

	err := r.client.get(ctx, fmt.Sprintf("/items/slots/%d", id), nil, &record)
	if err != nil {
		if IsStatus(err, http.StatusForbidden, http.StatusNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return record.toDomain(), nil
}

func (r *SlotRepository) ListUpcoming(ctx context.Context) ([]domain.Slot, error) {
	query := filterParam(map[string]any{
		"end_time": map[string]any{"_gte": "$NOW"},
	})

	var records []slotRecord
	if err := r.client.get(ctx, "/items/slots", query, &records); err != nil {
		return nil, err
	}

	slots := make([]domain.Slot, len(records))
	for i, record := range records {
		slots[i] = *record.toDomain()
	}

	return slots, nil
}

// ReserveSeats re-reads the current seat count and writes back the decremented
// value. The store has no conditional-update primitive, so callers must hold
// the per-slot lock while invoking this; the refusal to go below zero is the
// last line of defense, not the concurrency control.
func (r *SlotRepository) ReserveSeats(ctx context.Context, slotID, seats int) error {
	slot, err := r.GetByID(ctx, slotID)
	if err != nil {
		return err
	}

	if slot.AvailableSeats < seats {
		return domain.ErrNotEnoughSeats
	}

	return r.writeAvailableSeats(ctx, slotID, slot.AvailableSeats-seats)
}

func (r *SlotRepository) ReleaseSeats(ctx context.Context, slotID, seats int) error {
	slot, err := r.GetByID(ctx, slotID)
	if err != nil {
		return err
	}

	available := slot.AvailableSeats + seats
	if available > slot.TotalSeats {
		available = slot.TotalSeats
	}

	return r.writeAvailableSeats(ctx, slotID, available)
}

func (r *SlotRepository) writeAvailableSeats(ctx context.Context, slotID, seats int) error {
	body := map[string]any{"available_seats": seats}
	return r.client.patch(ctx, fmt.Sprintf("/items/slots/%d", slotID), body, nil)
}
