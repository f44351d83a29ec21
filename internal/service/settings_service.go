package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// SettingsService is the settings gate. It never caches: every read goes to
// the repository so a gate check sees the latest admin update.
type SettingsService struct {
	settingsRepo *repository.SettingsRepository
	audit        *AuditService
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo *repository.SettingsRepository, audit *AuditService, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		audit:        audit,
		validate:     newValidator(),
		logger:       logger,
	}
}

// GetSettings returns the current settings. Toggles that were never written
// read as enabled, and so does everything when no settings exist.
func (s *SettingsService) GetSettings(ctx context.Context) (*model.SystemSettings, error) {
	stored, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings := model.DefaultSystemSettings()
	if stored == nil {
		return settings, nil
	}

	for key, enabled := range stored.Notifications {
		settings.Notifications[key] = enabled
	}
	settings.UpdatedAt = stored.UpdatedAt
	settings.UpdatedBy = stored.UpdatedBy

	return settings, nil
}

// UpdateSettings merges patch into the stored toggles. Keys not named in the
// patch keep their value; unknown keys are stored but gate nothing.
func (s *SettingsService) UpdateSettings(ctx context.Context, actor model.Actor, patch model.SettingsUpdate) (*model.SystemSettings, error) {
	if err := validateStruct(s.validate, patch); err != nil {
		return nil, err
	}

	if err := s.settingsRepo.Merge(ctx, patch.Notifications, actor.UID); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(patch.Notifications))
	for key, enabled := range patch.Notifications {
		keys = append(keys, fmt.Sprintf("%s=%t", key, enabled))
	}
	sort.Strings(keys)

	if err := s.audit.Record(ctx, actor, ActionUpdatedSettings,
		"Updated notification settings: "+strings.Join(keys, ", ")); err != nil {
		return nil, err
	}

	s.logger.Info("Notification settings updated",
		zap.String("updated_by", actor.UID),
		zap.Strings("changes", keys))

	return s.GetSettings(ctx)
}
