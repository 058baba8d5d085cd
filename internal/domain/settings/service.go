package settings

import (
	"context"
	"errors"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetOrCreate returns the current settings, creating the defaults on first
// read if none exist.
func (s *Service) GetOrCreate(ctx context.Context) (*ClinicSettings, error) {
	cur, err := s.repo.GetLatest(ctx)
	if err == nil {
		return cur, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	def := Defaults()
	if err := s.repo.Create(ctx, def); err != nil {
		return nil, fmt.Errorf("creating default settings: %w", err)
	}
	return def, nil
}

// Update validates and persists the settings document, replacing the current
// record in place. When no record exists yet the document is created.
func (s *Service) Update(ctx context.Context, in *ClinicSettings) (*ClinicSettings, error) {
	if in.BlockedPeriods == nil {
		in.BlockedPeriods = []BlockedPeriod{}
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cur, err := s.repo.GetLatest(ctx)
	if errors.Is(err, ErrNotFound) {
		if err := s.repo.Create(ctx, in); err != nil {
			return nil, err
		}
		return in, nil
	}
	if err != nil {
		return nil, err
	}

	in.ID = cur.ID
	in.CreatedAt = cur.CreatedAt
	if err := s.repo.Update(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}
