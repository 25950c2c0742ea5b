package service

import (
	"context"
	"testing"

	"campaigner/internal/errors"
	"campaigner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSettingsService(t *testing.T) (*SettingsService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return NewSettingsService(store, testLogger()), store
}

func TestCurrentReturnsDefaultWindowWhenStoreEmpty(t *testing.T) {
	svc, _ := setupSettingsService(t)
	ctx := context.Background()

	cfg, err := svc.Current(ctx)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.ActiveDays)
	assert.Equal(t, 9*60, cfg.StartTime)
	assert.Equal(t, 18*60, cfg.EndTime)
	assert.Equal(t, 30, cfg.MessageInterval)
	assert.True(t, cfg.IsActive)
}

func TestCurrentReturnsStoredWindow(t *testing.T) {
	svc, store := setupSettingsService(t)
	ctx := context.Background()

	store.settings = &models.SendingWindowConfig{
		ActiveDays:      []int{6, 7},
		StartTime:       10 * 60,
		EndTime:         14 * 60,
		MessageInterval: 60,
		IsActive:        true,
	}

	cfg, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{6, 7}, cfg.ActiveDays)
	assert.Equal(t, 10*60, cfg.StartTime)
}

func TestCurrentCachesAndReturnsCopies(t *testing.T) {
	svc, store := setupSettingsService(t)
	ctx := context.Background()

	store.settings = &models.SendingWindowConfig{
		ActiveDays:      []int{1},
		StartTime:       8 * 60,
		EndTime:         12 * 60,
		MessageInterval: 30,
		IsActive:        true,
	}

	first, err := svc.Current(ctx)
	require.NoError(t, err)

	// Later calls hit the cache even if the store changes underneath.
	store.settings = nil
	second, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.StartTime, second.StartTime)

	// Mutating a returned config must not leak into the cache.
	second.StartTime = 0
	third, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8*60, third.StartTime)
}

func TestUpdateRejectsInvalidWindow(t *testing.T) {
	svc, store := setupSettingsService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		cfg  *models.SendingWindowConfig
	}{
		{"no active days", &models.SendingWindowConfig{
			StartTime: 9 * 60, EndTime: 17 * 60, MessageInterval: 30,
		}},
		{"day out of range", &models.SendingWindowConfig{
			ActiveDays: []int{1, 8}, StartTime: 9 * 60, EndTime: 17 * 60, MessageInterval: 30,
		}},
		{"start after end", &models.SendingWindowConfig{
			ActiveDays: []int{1}, StartTime: 17 * 60, EndTime: 9 * 60, MessageInterval: 30,
		}},
		{"interval below minimum", &models.SendingWindowConfig{
			ActiveDays: []int{1}, StartTime: 9 * 60, EndTime: 17 * 60, MessageInterval: 1,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Update(ctx, tc.cfg)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidConfig, errors.GetCode(err))
		})
	}

	assert.Nil(t, store.settings, "invalid windows must not be persisted")
}

func TestUpdatePersistsAndReplacesCache(t *testing.T) {
	svc, store := setupSettingsService(t)
	ctx := context.Background()

	// Prime the cache with the default window.
	_, err := svc.Current(ctx)
	require.NoError(t, err)

	next := &models.SendingWindowConfig{
		ActiveDays:      []int{2, 4},
		StartTime:       11 * 60,
		EndTime:         16 * 60,
		MessageInterval: 45,
		IsActive:        false,
	}
	require.NoError(t, svc.Update(ctx, next))

	require.NotNil(t, store.settings)
	assert.Equal(t, []int{2, 4}, store.settings.ActiveDays)

	cfg, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11*60, cfg.StartTime)
	assert.Equal(t, 45, cfg.MessageInterval)
	assert.False(t, cfg.IsActive)
}
