package models

import (
	"fmt"
	"time"
)

// MinMessageIntervalSec is the smallest legal spacing between two sends.
const MinMessageIntervalSec = 5

// SendingWindowConfig restricts when messages may be dispatched: only on
// ActiveDays (ISO weekdays, 1=Monday .. 7=Sunday), only between StartTime and
// EndTime (minutes of day), spaced at least MessageInterval seconds apart.
type SendingWindowConfig struct {
	ActiveDays      []int `json:"activeDays"`
	StartTime       int   `json:"startTime"`
	EndTime         int   `json:"endTime"`
	MessageInterval int   `json:"messageInterval"`
	IsActive        bool  `json:"isActive"`
}

// Validate checks internal consistency. An empty ActiveDays set is rejected
// here as well as in the scheduler, so a bad config never reaches the search
// loop.
func (c *SendingWindowConfig) Validate() error {
	if len(c.ActiveDays) == 0 {
		return fmt.Errorf("sending window has no active days")
	}
	seen := make(map[int]bool, len(c.ActiveDays))
	for _, d := range c.ActiveDays {
		if d < 1 || d > 7 {
			return fmt.Errorf("invalid weekday %d: must be 1-7", d)
		}
		if seen[d] {
			return fmt.Errorf("duplicate weekday %d", d)
		}
		seen[d] = true
	}
	if c.StartTime < 0 || c.StartTime >= 24*60 {
		return fmt.Errorf("invalid start time %d", c.StartTime)
	}
	if c.EndTime <= 0 || c.EndTime > 24*60 {
		return fmt.Errorf("invalid end time %d", c.EndTime)
	}
	if c.StartTime >= c.EndTime {
		return fmt.Errorf("start time %d must be before end time %d", c.StartTime, c.EndTime)
	}
	if c.MessageInterval < MinMessageIntervalSec {
		return fmt.Errorf("message interval %d below minimum %d seconds", c.MessageInterval, MinMessageIntervalSec)
	}
	return nil
}

// AllowsDay reports whether the ISO weekday of t is an active day.
func (c *SendingWindowConfig) AllowsDay(t time.Time) bool {
	day := ISOWeekday(t)
	for _, d := range c.ActiveDays {
		if d == day {
			return true
		}
	}
	return false
}

// ISOWeekday maps time.Weekday to ISO numbering (1=Monday .. 7=Sunday).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// MinutesOfDay returns the minute offset of t within its day.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
