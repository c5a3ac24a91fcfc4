package directus

import (
	"context"

	"github.com/kallbadhuset/bastubokning/internal/domain"
)

type UserRepository struct {
	client *Client
	roleID string
}

// NewUserRepository takes the id of the store role assigned to bathers created
// through the booking flow.
func NewUserRepository(client *Client, roleID string) *UserRepository {
	return &UserRepository{client: client, roleID: roleID}
}

type userRecord struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:    r.ID,
		Email: r.Email,
		Phone: r.Phone,
	}
}

func (r *UserRepository) GetOrCreateByEmail(ctx context.Context, email, phone string) (*domain.User, error) {
	query := filterParam(eqFilter("email", email))

	var records []userRecord
	if err := r.client.get(ctx, "/users", query, &records); err != nil {
		return nil, err
	}

	if len(records) > 0 {
		return records[0].toDomain(), nil
	}

	body := map[string]any{
		"email": email,
		"phone": phone,
		"role":  r.roleID,
	}

	var created userRecord
	if err := r.client.post(ctx, "/users", body, &created); err != nil {
		return nil, err
	}

	return created.toDomain(), nil
}
