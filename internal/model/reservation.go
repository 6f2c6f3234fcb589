package model

import "time"

// Reservation statuses. Validated and Cancelled are terminal.
const (
	StatusBooked    = "booked"
	StatusValidated = "validated"
	StatusCancelled = "cancelled"
)

// Reservation is a user's claim on one slot. At most one reservation with
// an active status (booked or validated) may reference the same slot; a
// partial unique index created in internal/db enforces this at the storage
// boundary.
type Reservation struct {
	ID        int64     `gorm:"primaryKey"`
	SlotID    int64     `gorm:"index;not null"`
	UserID    int64     `gorm:"index;not null"`
	Status    string    `gorm:"size:16;not null;index"`
	CreatedAt time.Time `gorm:"not null"` // anchors the weekly/monthly limit windows
	UpdatedAt time.Time
}

// Active reports whether the reservation currently occupies its slot.
func (r *Reservation) Active() bool {
	return r.Status == StatusBooked || r.Status == StatusValidated
}
