package service

import (
	"time"

	"campaigner/internal/errors"
	"campaigner/internal/models"
)

// NextEligibleTime computes the earliest instant at or after now that falls
// inside the sending window. It is pure: the result depends only on its
// arguments, and calling it on its own result returns the same instant.
// An empty active-day set is a configuration error, never an infinite search.
func NextEligibleTime(cfg *models.SendingWindowConfig, now time.Time) (time.Time, error) {
	if len(cfg.ActiveDays) == 0 {
		return time.Time{}, errors.NewConfigError("activeDays", "sending window has no active days")
	}

	minutes := models.MinutesOfDay(now)
	if cfg.AllowsDay(now) && minutes >= cfg.StartTime && minutes < cfg.EndTime {
		return now, nil
	}

	// Today at StartTime still counts when now is before the window opens.
	if cfg.AllowsDay(now) && minutes < cfg.StartTime {
		return dayAtMinute(now, cfg.StartTime), nil
	}

	// Cyclic forward search, at most a full week.
	for offset := 1; offset <= 7; offset++ {
		candidate := now.AddDate(0, 0, offset)
		if cfg.AllowsDay(candidate) {
			return dayAtMinute(candidate, cfg.StartTime), nil
		}
	}

	return time.Time{}, errors.NewConfigError("activeDays", "no eligible day within a week")
}

// ScheduleBatch assigns dispatch times to n items starting from baseTime:
// the first item gets the next eligible instant, each subsequent item is
// spaced MessageInterval seconds later, rolling to the next eligible day's
// StartTime whenever the running time would leave the window.
func ScheduleBatch(cfg *models.SendingWindowConfig, n int, baseTime time.Time) ([]time.Time, error) {
	if n <= 0 {
		return nil, nil
	}

	first, err := NextEligibleTime(cfg, baseTime)
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, n)
	times[0] = first
	interval := time.Duration(cfg.MessageInterval) * time.Second
	for i := 1; i < n; i++ {
		next, err := NextEligibleTime(cfg, times[i-1].Add(interval))
		if err != nil {
			return nil, err
		}
		times[i] = next
	}
	return times, nil
}

// WithinWindow reports whether t is a legal dispatch instant.
func WithinWindow(cfg *models.SendingWindowConfig, t time.Time) bool {
	minutes := models.MinutesOfDay(t)
	return cfg.AllowsDay(t) && minutes >= cfg.StartTime && minutes < cfg.EndTime
}

func dayAtMinute(day time.Time, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minute/60, minute%60, 0, 0, day.Location())
}
