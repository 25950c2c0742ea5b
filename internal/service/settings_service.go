package service

import (
	"context"
	"sync"

	"campaigner/internal/constants"
	"campaigner/internal/errors"
	"campaigner/internal/models"

	"github.com/sirupsen/logrus"
)

// SettingsDatabase is the backing store surface the settings service needs.
type SettingsDatabase interface {
	GetSettings(ctx context.Context) (*models.SendingWindowConfig, error)
	SaveSettings(ctx context.Context, cfg *models.SendingWindowConfig) error
}

// SettingsService owns the sending window configuration. It caches the
// current window so the dispatcher can consult it every tick without a store
// round trip.
type SettingsService struct {
	logger *logrus.Logger
	db     SettingsDatabase

	mu      sync.RWMutex
	current *models.SendingWindowConfig
}

func NewSettingsService(db SettingsDatabase, logger *logrus.Logger) *SettingsService {
	return &SettingsService{logger: logger, db: db}
}

// DefaultWindow is the window used before the user has saved one: weekdays,
// business hours.
func DefaultWindow() *models.SendingWindowConfig {
	return &models.SendingWindowConfig{
		ActiveDays:      []int{1, 2, 3, 4, 5},
		StartTime:       constants.DefaultWindowStartMinute,
		EndTime:         constants.DefaultWindowEndMinute,
		MessageInterval: constants.DefaultMessageIntervalSec,
		IsActive:        true,
	}
}

// Current returns the active sending window, loading it from the store on
// first use.
func (s *SettingsService) Current(ctx context.Context) (*models.SendingWindowConfig, error) {
	s.mu.RLock()
	cached := s.current
	s.mu.RUnlock()
	if cached != nil {
		copied := *cached
		return &copied, nil
	}

	stored, err := s.db.GetSettings(ctx)
	if err != nil {
		return nil, errors.NewStoreError("get settings", err)
	}
	if stored == nil {
		stored = DefaultWindow()
	}

	s.mu.Lock()
	s.current = stored
	s.mu.Unlock()

	copied := *stored
	return &copied, nil
}

// Update validates and persists a new sending window, replacing the cache.
func (s *SettingsService) Update(ctx context.Context, cfg *models.SendingWindowConfig) error {
	if err := cfg.Validate(); err != nil {
		return errors.NewConfigError("window", err.Error())
	}
	if err := s.db.SaveSettings(ctx, cfg); err != nil {
		return errors.NewStoreError("save settings", err)
	}

	s.mu.Lock()
	copied := *cfg
	s.current = &copied
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"activeDays": cfg.ActiveDays,
		"startTime":  cfg.StartTime,
		"endTime":    cfg.EndTime,
		"interval":   cfg.MessageInterval,
		"isActive":   cfg.IsActive,
	}).Info("Sending window updated")
	return nil
}
