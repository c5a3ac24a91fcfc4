package domain

import (
	"context"
	"time"
)

// Slot is a bookable sauna time interval with finite seat capacity. Seat counts
// are only ever mutated through ReserveSeats and ReleaseSeats, never written
// directly by callers.
type Slot struct {
	ID             int
	StartTime      time.Time
	EndTime        time.Time
	TotalSeats     int
	AvailableSeats int
	Description    string
	Repayable      bool
}

type SlotRepository interface {
	// GetByID fetches the slot without any caching, so availability checks
	// always see the latest stored seat count.
	GetByID(ctx context.Context, id int) (*Slot, error)
	ListUpcoming(ctx context.Context) ([]Slot, error)
	// ReserveSeats decrements available_seats by seats. It fails with
	// ErrNotEnoughSeats instead of writing a negative count.
	ReserveSeats(ctx context.Context, slotID, seats int) error
	// ReleaseSeats increments available_seats by seats, capped at total_seats.
	ReleaseSeats(ctx context.Context, slotID, seats int) error
}
