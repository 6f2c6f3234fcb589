package model

import "time"

// Machine represents a single bookable washing machine.
type Machine struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"size:128;not null"`
	Location  string `gorm:"size:256"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
