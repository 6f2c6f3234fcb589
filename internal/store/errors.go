package store

import (
	"errors"
	"fmt"
)

// Business-rule outcomes. These are expected, non-fatal conditions that the
// API layer maps to client-facing status codes; the store never retries on
// them.
var (
	ErrMachineNotFound     = errors.New("machine not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSlotTaken           = errors.New("slot already booked")
	ErrAlreadyCancelled    = errors.New("booking already cancelled")
	ErrWeeklyLimitReached  = errors.New("weekly booking limit reached")
	ErrMonthlyLimitReached = errors.New("monthly booking limit reached")
	ErrInvalidPolicy       = errors.New("invalid scheduling policy")
	ErrForbidden           = errors.New("operation not allowed for this actor")
)

// ErrStorage marks failures of the persistence layer itself. Multi-step
// writes roll back fully before one of these is returned.
var ErrStorage = errors.New("storage failure")

// StorageError wraps a low-level database error so it never leaks past the
// store boundary untyped. errors.Is(err, ErrStorage) holds for every
// wrapped failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
