package directus

import (
	"context"
	"time"

	"github.com/kallbadhuset/bastubokning/internal/domain"
)

type MemberRepository struct {
	client *Client
	now    func() time.Time
}

func NewMemberRepository(client *Client) *MemberRepository {
	return &MemberRepository{client: client, now: time.Now}
}

type memberRecord struct {
	ID              int        `json:"id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email"`
	PaidThroughDate *time.Time `json:"paid_through_date"`
}

func (r *MemberRepository) CheckMembership(ctx context.Context, email string) (bool, error) {
	query := filterParam(eqFilter("email", email))

	var records []memberRecord
	if err := r.client.get(ctx, "/items/members", query, &records); err != nil {
		return false, err
	}

	// Older membership records have no paid-through date and count by
	// existence alone.
	for _, record := range records {
		if record.PaidThroughDate == nil || !r.now().After(*record.PaidThroughDate) {
			return true, nil
		}
	}

	return false, nil
}

func (r *MemberRepository) Create(ctx context.Context, member *domain.Member) error {
	body := map[string]any{
		"first_name": member.FirstName,
		"last_name":  member.LastName,
		"email":      member.Email,
	}

	var created memberRecord
	if err := r.client.post(ctx, "/items/members", body, &created); err != nil {
		return err
	}

	member.ID = created.ID

	return nil
}
