package services

import (
	"context"
	"errors"

	"github.com/anonto42/rating-notify/backend/internal/models"
)

type settingsRepo interface {
	GetByProfileID(ctx context.Context, profileID uint) (*models.NotificationSettings, error)
	CreateDefault(ctx context.Context, profileID uint) error
	Update(ctx context.Context, profileID uint, columns map[string]any) error
}

// SettingsGate owns per-recipient notification preferences.
type SettingsGate struct {
	repo settingsRepo
}

// NewSettingsGate creates a SettingsGate backed by repo.
func NewSettingsGate(repo settingsRepo) *SettingsGate {
	return &SettingsGate{repo: repo}
}

// GetOrCreate returns the profile's settings, creating the all-enabled default row
// first when there is none. Concurrent first calls converge on one row.
func (g *SettingsGate) GetOrCreate(ctx context.Context, profileID uint) (*models.NotificationSettings, error) {
	settings, err := g.repo.GetByProfileID(ctx, profileID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if err := g.repo.CreateDefault(ctx, profileID); err != nil {
		return nil, err
	}
	settings, err = g.repo.GetByProfileID(ctx, profileID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewStorageError("get notification settings", errors.New("default row missing after upsert"))
	}
	return settings, err
}

// IsEnabled reports whether profileID accepts notifications of type t.
// A profile without a settings row accepts everything.
func (g *SettingsGate) IsEnabled(ctx context.Context, profileID uint, t models.NotificationType) (bool, error) {
	settings, err := g.repo.GetByProfileID(ctx, profileID)
	if errors.Is(err, models.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return settings.Allows(t), nil
}

// Update applies the flags present in req and returns the full resulting settings.
func (g *SettingsGate) Update(ctx context.Context, profileID uint, req models.UpdateNotificationSettingsRequest) (*models.NotificationSettings, error) {
	current, err := g.GetOrCreate(ctx, profileID)
	if err != nil {
		return nil, err
	}

	columns := req.Columns()
	if len(columns) == 0 {
		return current, nil
	}
	if err := g.repo.Update(ctx, profileID, columns); err != nil {
		return nil, err
	}
	return g.repo.GetByProfileID(ctx, profileID)
}
