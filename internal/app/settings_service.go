package app

import (
	"context"

	"github.com/admir900-maker/ticket-gate/internal/domain"
)

type SettingsRepository interface {
	LoadPolicy(ctx context.Context) (domain.ValidationPolicy, error)
	SavePolicy(ctx context.Context, pol domain.ValidationPolicy) error
}

// SettingsService is the settings collaborator's write side. A saved
// document replaces the stored one wholesale; resolvers pick it up when
// their snapshot TTL expires.
type SettingsService struct {
	repo SettingsRepository
}

func NewSettingsService(repo SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) Current(ctx context.Context) (domain.ValidationPolicy, error) {
	return s.repo.LoadPolicy(ctx)
}

func (s *SettingsService) Update(ctx context.Context, pol domain.ValidationPolicy) error {
	if err := pol.Validate(); err != nil {
		return err
	}
	return s.repo.SavePolicy(ctx, pol)
}
