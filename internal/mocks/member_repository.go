package mocks

import (
	"context"

	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockMemberRepo struct {
	mock.Mock
	domain.MemberRepository
}

func (m *MockMemberRepo) CheckMembership(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberRepo) Create(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}
