package domain

import (
	"context"
	"time"
)

// AccessCodeProvider issues door codes valid for a slot's time window through
// the external access-control system. Codes are opaque and auditable there,
// which is why they are requested rather than derived locally.
type AccessCodeProvider interface {
	CreateCode(ctx context.Context, name string, startsAt, endsAt time.Time) (string, error)
}
