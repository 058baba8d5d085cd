package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	rows []*ClinicSettings
	err  error
}

func (m *mockRepo) GetLatest(_ context.Context) (*ClinicSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.rows) == 0 {
		return nil, ErrNotFound
	}
	latest := m.rows[0]
	for _, r := range m.rows[1:] {
		if r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	return latest, nil
}

func (m *mockRepo) Create(_ context.Context, s *ClinicSettings) error {
	if m.err != nil {
		return m.err
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now().UTC()
	m.rows = append(m.rows, s)
	return nil
}

func (m *mockRepo) Update(_ context.Context, s *ClinicSettings) error {
	if m.err != nil {
		return m.err
	}
	for i, r := range m.rows {
		if r.ID == s.ID {
			m.rows[i] = s
			return nil
		}
	}
	return ErrNotFound
}

func TestGetOrCreate_LazyDefaults(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	s, err := svc.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.OpeningTime != "09:00" || s.TimeSlotDuration != 30 {
		t.Errorf("expected defaults, got %+v", s)
	}
	if len(repo.rows) != 1 {
		t.Errorf("expected defaults persisted, got %d rows", len(repo.rows))
	}

	again, err := svc.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != s.ID {
		t.Error("second read should return the same record, not create another")
	}
}

func TestGetOrCreate_MostRecentWins(t *testing.T) {
	old := Defaults()
	old.ID = uuid.New()
	old.OpeningTime = "08:00"
	old.CreatedAt = time.Now().Add(-48 * time.Hour)

	newer := Defaults()
	newer.ID = uuid.New()
	newer.OpeningTime = "10:00"
	newer.CreatedAt = time.Now()

	repo := &mockRepo{rows: []*ClinicSettings{old, newer}}
	svc := NewService(repo)

	s, err := svc.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.OpeningTime != "10:00" {
		t.Errorf("expected most recent row, got opening %s", s.OpeningTime)
	}
}

func TestUpdate_Validates(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	bad := Defaults()
	bad.OpeningTime = "18:00"
	_, err := svc.Update(context.Background(), bad)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	if len(repo.rows) != 0 {
		t.Error("invalid settings must not be persisted")
	}
}

func TestUpdate_ReplacesInPlace(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	first, err := svc.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := Defaults()
	in.ClosingTime = "18:00"
	updated, err := svc.Update(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != first.ID {
		t.Error("update should keep the existing record id")
	}
	if len(repo.rows) != 1 {
		t.Errorf("expected single logical record, got %d", len(repo.rows))
	}
	if repo.rows[0].ClosingTime != "18:00" {
		t.Errorf("expected closing 18:00, got %s", repo.rows[0].ClosingTime)
	}
}

func TestUpdate_CreatesWhenMissing(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	in := Defaults()
	in.IsActive = false
	if _, err := svc.Update(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.rows) != 1 || repo.rows[0].IsActive {
		t.Errorf("expected inactive settings created, got %+v", repo.rows)
	}
}
