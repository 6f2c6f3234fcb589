package model

import (
	"fmt"
	"time"
)

// SettingsID is the primary key of the single scheduling policy row.
const SettingsID = 1

// Settings is the scheduling policy, stored as a single row and mutated
// only through the administrative settings endpoint.
type Settings struct {
	ID            int64  `gorm:"primaryKey"`
	StartTime     string `gorm:"size:8;not null"` // "HH:MM"
	EndTime       string `gorm:"size:8;not null"` // "HH:MM"
	WashDuration  int    `gorm:"not null"`        // minutes
	BreakAfter    int    `gorm:"not null"`        // slots between breaks, 0 disables breaks
	BreakDuration int    `gorm:"not null"`        // minutes
	SlotsPerDay   int    `gorm:"not null"`        // per machine per day
	WeeklyLimit   int    `gorm:"not null"`        // booked reservations per user per week
	MonthlyLimit  int    `gorm:"not null"`        // booked reservations per user per month
	AutoGenerate  bool   `gorm:"not null"`
	UpdatedAt     time.Time
}

// Window returns the operating window as offsets from midnight.
func (s *Settings) Window() (start, end time.Duration, err error) {
	start, err = parseClock(s.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err = parseClock(s.EndTime)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Validate checks the policy invariants: a non-empty operating window and
// positive durations.
func (s *Settings) Validate() error {
	start, end, err := s.Window()
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("start_time %s must be before end_time %s", s.StartTime, s.EndTime)
	}
	if s.WashDuration <= 0 {
		return fmt.Errorf("wash_duration must be positive, got %d", s.WashDuration)
	}
	if s.BreakAfter < 0 {
		return fmt.Errorf("break_after must not be negative, got %d", s.BreakAfter)
	}
	if s.BreakDuration < 0 {
		return fmt.Errorf("break_duration must not be negative, got %d", s.BreakDuration)
	}
	if s.SlotsPerDay <= 0 {
		return fmt.Errorf("slots_per_day must be positive, got %d", s.SlotsPerDay)
	}
	if s.WeeklyLimit < 0 || s.MonthlyLimit < 0 {
		return fmt.Errorf("booking limits must not be negative")
	}
	return nil
}

func parseClock(v string) (time.Duration, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", v, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
