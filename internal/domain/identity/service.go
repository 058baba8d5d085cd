package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureUser resolves a submitting identity by email, creating a guest record
// with role client when none exists. Existing records keep their role.
func (s *Service) EnsureUser(ctx context.Context, email, name string, phone *string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return s.repo.Upsert(ctx, &User{
		Email: email,
		Name:  name,
		Phone: phone,
		Role:  RoleClient,
	})
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}
