package domain

import (
	"context"
	"time"
)

// User is identified by normalized (lowercased) email and created lazily on
// first booking or coupon purchase.
type User struct {
	ID    string
	Email string
	Phone string
}

type UserRepository interface {
	GetOrCreateByEmail(ctx context.Context, email, phone string) (*User, error)
}

// Member is a yearly membership record, kept separately from users so that
// membership can be checked for people who never booked.
type Member struct {
	ID              int
	FirstName       string
	LastName        string
	Email           string
	PaidThroughDate *time.Time
}

type MemberRepository interface {
	// CheckMembership reports whether a current membership exists for the
	// normalized email. Records carrying a paid-through date must not be
	// past it; records without one count by existence.
	CheckMembership(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, member *Member) error
}
