package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laundry-booking-backend/internal/model"
)

func TestOperatorQueueOrdering(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, func(settings *model.Settings) {
		settings.WeeklyLimit = 0
		settings.MonthlyLimit = 0
	})
	machine := seedMachine(t, gormDB, "Washer A")

	dayOne := day(2024, 1, 1)
	dayTwo := day(2024, 1, 2)

	// Booked out of chronological order on purpose.
	laterSlot := seedSlot(t, gormDB, machine.ID, at(dayTwo, 9, 0), at(dayTwo, 9, 30))
	earlierSlot := seedSlot(t, gormDB, machine.ID, at(dayOne, 10, 0), at(dayOne, 10, 30))
	cancelledSlot := seedSlot(t, gormDB, machine.ID, at(dayOne, 8, 0), at(dayOne, 8, 30))

	later := mustBook(t, s, 7, laterSlot.ID, at(dayOne, 7, 0))
	earlier := mustBook(t, s, 8, earlierSlot.ID, at(dayOne, 7, 1))
	cancelled := mustBook(t, s, 9, cancelledSlot.ID, at(dayOne, 7, 2))
	_, err := s.Cancel(context.Background(), cancelled.ID, Actor{UserID: 9, Role: RoleUser})
	require.NoError(t, err)

	queue, err := s.OperatorQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, queue, 3)

	// Active bookings sorted by slot start; cancelled ones trail behind
	// regardless of their slot time.
	assert.Equal(t, earlier.ID, queue[0].BookingID)
	assert.Equal(t, later.ID, queue[1].BookingID)
	assert.Equal(t, cancelled.ID, queue[2].BookingID)
	assert.Equal(t, model.StatusCancelled, queue[2].Status)
}

func TestOperatorQueueTieBreak(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, func(settings *model.Settings) {
		settings.WeeklyLimit = 0
		settings.MonthlyLimit = 0
	})
	washerA := seedMachine(t, gormDB, "Washer A")
	washerB := seedMachine(t, gormDB, "Washer B")

	target := day(2024, 1, 2)
	// Two machines with identical slot times.
	slotA := seedSlot(t, gormDB, washerA.ID, at(target, 9, 0), at(target, 9, 30))
	slotB := seedSlot(t, gormDB, washerB.ID, at(target, 9, 0), at(target, 9, 30))

	first := mustBook(t, s, 7, slotA.ID, at(target, 7, 0))
	second := mustBook(t, s, 8, slotB.ID, at(target, 7, 1))

	queue, err := s.OperatorQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, queue, 2)

	// Equal start times fall back to the booking id, keeping the order
	// total and stable.
	assert.Equal(t, first.ID, queue[0].BookingID)
	assert.Equal(t, second.ID, queue[1].BookingID)
}

func TestOperatorQueueEmpty(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, nil)

	queue, err := s.OperatorQueue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, queue)
}
