package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"laundry-booking-backend/internal/model"
)

// Settings returns the active scheduling policy.
func (s *gormStore) Settings(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	err := s.db.WithContext(ctx).First(&settings, model.SettingsID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storageErr("settings row is missing", err)
		}
		return nil, storageErr("failed to load settings", err)
	}
	return &settings, nil
}

// UpdateSettings validates and persists the scheduling policy. The policy
// only affects slots generated after the update; existing slots stay as
// they were packed.
func (s *gormStore) UpdateSettings(ctx context.Context, settings *model.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	settings.ID = model.SettingsID
	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return storageErr("failed to update settings", err)
	}
	return nil
}
