package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validWindow() SendingWindowConfig {
	return SendingWindowConfig{
		ActiveDays:      []int{1, 2, 3, 4, 5},
		StartTime:       9 * 60,
		EndTime:         17 * 60,
		MessageInterval: 30,
		IsActive:        true,
	}
}

func TestSendingWindowConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SendingWindowConfig)
		wantErr string
	}{
		{"valid", func(c *SendingWindowConfig) {}, ""},
		{"no active days", func(c *SendingWindowConfig) {
			c.ActiveDays = nil
		}, "no active days"},
		{"day below range", func(c *SendingWindowConfig) {
			c.ActiveDays = []int{0}
		}, "invalid weekday"},
		{"day above range", func(c *SendingWindowConfig) {
			c.ActiveDays = []int{1, 8}
		}, "invalid weekday"},
		{"duplicate day", func(c *SendingWindowConfig) {
			c.ActiveDays = []int{1, 2, 1}
		}, "duplicate weekday"},
		{"negative start", func(c *SendingWindowConfig) {
			c.StartTime = -1
		}, "invalid start time"},
		{"start past midnight", func(c *SendingWindowConfig) {
			c.StartTime = 24 * 60
		}, "invalid start time"},
		{"end past midnight", func(c *SendingWindowConfig) {
			c.EndTime = 24*60 + 1
		}, "invalid end time"},
		{"start after end", func(c *SendingWindowConfig) {
			c.StartTime = 18 * 60
			c.EndTime = 9 * 60
		}, "must be before end time"},
		{"start equals end", func(c *SendingWindowConfig) {
			c.StartTime = 12 * 60
			c.EndTime = 12 * 60
		}, "must be before end time"},
		{"interval below minimum", func(c *SendingWindowConfig) {
			c.MessageInterval = MinMessageIntervalSec - 1
		}, "below minimum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validWindow()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestISOWeekday(t *testing.T) {
	// 2025-06-02 is a Monday.
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i+1, ISOWeekday(monday.AddDate(0, 0, i)))
	}
}

func TestSendingWindowConfig_AllowsDay(t *testing.T) {
	cfg := validWindow()

	monday := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	saturday := monday.AddDate(0, 0, 5)
	sunday := monday.AddDate(0, 0, 6)

	assert.True(t, cfg.AllowsDay(monday))
	assert.False(t, cfg.AllowsDay(saturday))
	assert.False(t, cfg.AllowsDay(sunday))
}

func TestMinutesOfDay(t *testing.T) {
	assert.Equal(t, 0, MinutesOfDay(time.Date(2025, 6, 2, 0, 0, 59, 0, time.UTC)))
	assert.Equal(t, 9*60+30, MinutesOfDay(time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, 23*60+59, MinutesOfDay(time.Date(2025, 6, 2, 23, 59, 0, 0, time.UTC)))
}
