package model

import "time"

// Slot is a fixed time interval on one machine, the unit of bookable
// capacity. Slots are written once (by the generator or by an explicit
// administrative action) and never updated.
//
// There is deliberately no foreign key to machines: when a machine is
// deleted its past slots are retained as historical record, so the
// machine_id of an old slot may no longer resolve.
type Slot struct {
	ID        int64     `gorm:"primaryKey"`
	MachineID int64     `gorm:"index;not null"`
	StartAt   time.Time `gorm:"index;not null"`
	EndAt     time.Time `gorm:"not null"`
	CreatedAt time.Time
}
