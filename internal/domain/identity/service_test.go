package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	byEmail map[string]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{byEmail: make(map[string]*User)}
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Upsert(_ context.Context, u *User) (*User, error) {
	if existing, ok := m.byEmail[u.Email]; ok {
		existing.Name = u.Name
		existing.Phone = u.Phone
		return existing, nil
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.byEmail[u.Email] = u
	return u, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var items []*User
	for _, u := range m.byEmail {
		items = append(items, u)
	}
	return items, len(items), nil
}

func TestEnsureUser_CreatesGuest(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	u, err := svc.EnsureUser(context.Background(), "Jane@Example.com", "Jane Doe", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "jane@example.com" {
		t.Errorf("expected lower-cased email, got %s", u.Email)
	}
	if u.Role != RoleClient {
		t.Errorf("expected guest role client, got %s", u.Role)
	}
	if u.ID == uuid.Nil {
		t.Error("expected id assigned")
	}
}

func TestEnsureUser_ReturnsExisting(t *testing.T) {
	repo := newMockRepo()
	staff := &User{ID: uuid.New(), Email: "staff@clinic.example", Name: "Staff", Role: RoleStaff}
	repo.byEmail[staff.Email] = staff

	svc := NewService(repo)
	u, err := svc.EnsureUser(context.Background(), "staff@clinic.example", "Someone Else", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != staff.ID {
		t.Error("expected existing user returned")
	}
	if u.Role != RoleStaff {
		t.Errorf("existing role must be preserved, got %s", u.Role)
	}
}

func TestEnsureUser_Idempotent(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	first, err := svc.EnsureUser(context.Background(), "jane@example.com", "Jane", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.EnsureUser(context.Background(), "jane@example.com", "Jane", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Error("repeated EnsureUser must not create a second record")
	}
	if len(repo.byEmail) != 1 {
		t.Errorf("expected 1 user, got %d", len(repo.byEmail))
	}
}
