package store

import "time"

// Actor roles, as asserted by the upstream auth proxy.
const (
	RoleUser     = "user"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// Actor identifies who is performing a store operation.
type Actor struct {
	UserID int64
	Role   string
}

// Staff reports whether the actor may act on other users' bookings.
func (a Actor) Staff() bool {
	return a.Role == RoleOperator || a.Role == RoleAdmin
}

// SlotView is one row of the available-slot listing.
type SlotView struct {
	SlotID      int64     `json:"slot_id"`
	MachineID   int64     `json:"machine_id"`
	MachineName string    `json:"machine_name"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Booked      bool      `json:"booked"`
}

// BookingView is a reservation joined with its slot and machine, as shown
// on a user's dashboard or receipt.
type BookingView struct {
	BookingID   int64     `json:"booking_id"`
	UserID      int64     `json:"user_id"`
	Status      string    `json:"status"`
	MachineName string    `json:"machine_name"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// QueueEntry is one row of the operator queue.
type QueueEntry struct {
	BookingID   int64     `json:"booking_id"`
	UserID      int64     `json:"user_id"`
	Status      string    `json:"status"`
	MachineName string    `json:"machine_name"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
}
