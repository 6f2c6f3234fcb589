package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laundry-booking-backend/internal/model"
)

func TestBook(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, nil)
	machine := seedMachine(t, gormDB, "Washer A")

	target := day(2024, 1, 2)
	slot := seedSlot(t, gormDB, machine.ID, at(target, 9, 0), at(target, 9, 30))

	now := at(target, 8, 0)
	reservation, err := s.Book(context.Background(), 7, slot.ID, now)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, reservation.Status)
	assert.Equal(t, int64(7), reservation.UserID)
	assert.True(t, reservation.CreatedAt.Equal(now))

	occupied, err := s.occupied(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.True(t, occupied)
}

func TestBookSlotNotFound(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, nil)

	_, err := s.Book(context.Background(), 7, 12345, time.Now())
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestBookOccupiedSlot(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, nil)
	machine := seedMachine(t, gormDB, "Washer A")

	target := day(2024, 1, 2)
	slot := seedSlot(t, gormDB, machine.ID, at(target, 9, 0), at(target, 9, 30))

	mustBook(t, s, 7, slot.ID, at(target, 8, 0))

	_, err := s.Book(context.Background(), 8, slot.ID, at(target, 8, 1))
	assert.ErrorIs(t, err, ErrSlotTaken)

	// A validated reservation keeps the slot occupied too.
	target2 := day(2024, 1, 3)
	slot2 := seedSlot(t, gormDB, machine.ID, at(target2, 9, 0), at(target2, 9, 30))
	r := mustBook(t, s, 7, slot2.ID, at(target2, 8, 0))
	require.NoError(t, s.Validate(context.Background(), r.ID))

	_, err = s.Book(context.Background(), 8, slot2.ID, at(target2, 8, 1))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestBookWeeklyLimit(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, func(settings *model.Settings) {
		settings.WeeklyLimit = 2
		settings.MonthlyLimit = 0 // disabled, isolate the weekly check
	})
	machine := seedMachine(t, gormDB, "Washer A")

	// 2024-01-01 is a Monday; the store is configured with Monday weeks.
	target := day(2024, 1, 2)
	var slots []*model.Slot
	for i := 0; i < 4; i++ {
		start := at(target, 8+i, 0)
		slots = append(slots, seedSlot(t, gormDB, machine.ID, start, start.Add(30*time.Minute)))
	}

	now := at(target, 7, 0)
	mustBook(t, s, 7, slots[0].ID, now)
	mustBook(t, s, 7, slots[1].ID, now)

	_, err := s.Book(context.Background(), 7, slots[2].ID, now)
	assert.ErrorIs(t, err, ErrWeeklyLimitReached)

	// Another user is unaffected.
	mustBook(t, s, 8, slots[2].ID, now)

	// The following week the same user can book again.
	nextWeek := at(day(2024, 1, 9), 7, 0)
	reservation, err := s.Book(context.Background(), 7, slots[3].ID, nextWeek)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, reservation.Status)
}

func TestBookMonthlyLimit(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, func(settings *model.Settings) {
		settings.WeeklyLimit = 0 // disabled, isolate the monthly check
		settings.MonthlyLimit = 2
	})
	machine := seedMachine(t, gormDB, "Washer A")

	target := day(2024, 1, 2)
	var slots []*model.Slot
	for i := 0; i < 3; i++ {
		start := at(target, 8+i, 0)
		slots = append(slots, seedSlot(t, gormDB, machine.ID, start, start.Add(30*time.Minute)))
	}

	now := at(target, 7, 0)
	mustBook(t, s, 7, slots[0].ID, now)
	mustBook(t, s, 7, slots[1].ID, now)

	_, err := s.Book(context.Background(), 7, slots[2].ID, now)
	assert.ErrorIs(t, err, ErrMonthlyLimitReached)

	// A new calendar month resets the window.
	february := at(day(2024, 2, 1), 7, 0)
	_, err = s.Book(context.Background(), 7, slots[2].ID, february)
	require.NoError(t, err)
}

func TestBookCancelledSlotIsFree(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, nil)
	machine := seedMachine(t, gormDB, "Washer A")

	target := day(2024, 1, 2)
	slot := seedSlot(t, gormDB, machine.ID, at(target, 9, 0), at(target, 9, 30))

	reservation := mustBook(t, s, 7, slot.ID, at(target, 8, 0))
	_, err := s.Cancel(context.Background(), reservation.ID, Actor{UserID: 7, Role: RoleUser})
	require.NoError(t, err)

	// Cancelled reservations do not occupy the slot or count against
	// booking limits.
	reservation2, err := s.Book(context.Background(), 8, slot.ID, at(target, 8, 5))
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, reservation2.Status)
}

func TestBookConcurrentSameSlot(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, func(settings *model.Settings) {
		settings.WeeklyLimit = 0
		settings.MonthlyLimit = 0
	})
	machine := seedMachine(t, gormDB, "Washer A")

	target := day(2024, 1, 2)
	slot := seedSlot(t, gormDB, machine.ID, at(target, 9, 0), at(target, 9, 30))

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := s.Book(context.Background(), userID, slot.ID, at(target, 8, 0))
			results <- err
		}(int64(100 + i))
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrSlotTaken):
			conflicts++
		}
	}
	assert.Equal(t, 1, successes, "exactly one booking may win the slot")
	assert.Equal(t, attempts-1, conflicts)

	var active int64
	gormDB.Model(&model.Reservation{}).
		Where("slot_id = ? AND status IN ?", slot.ID, []string{model.StatusBooked, model.StatusValidated}).
		Count(&active)
	assert.Equal(t, int64(1), active)
}

func TestCancel(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, nil)
	machine := seedMachine(t, gormDB, "Washer A")

	future := time.Now().UTC().Add(24 * time.Hour)
	slot := seedSlot(t, gormDB, machine.ID, future, future.Add(30*time.Minute))
	reservation := mustBook(t, s, 7, slot.ID, time.Now().UTC())

	machineID, err := s.Cancel(context.Background(), reservation.ID, Actor{UserID: 7, Role: RoleUser})
	require.NoError(t, err)
	assert.Equal(t, machine.ID, machineID, "cancelling a future booking frees the machine's slot")

	var got model.Reservation
	require.NoError(t, gormDB.First(&got, reservation.ID).Error)
	assert.Equal(t, model.StatusCancelled, got.Status)
}

func TestCancelIdempotenceIsReported(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, nil)
	machine := seedMachine(t, gormDB, "Washer A")

	target := day(2024, 1, 2)
	slot := seedSlot(t, gormDB, machine.ID, at(target, 9, 0), at(target, 9, 30))
	reservation := mustBook(t, s, 7, slot.ID, at(target, 8, 0))

	operator := Actor{UserID: 1, Role: RoleOperator}
	_, err := s.Cancel(context.Background(), reservation.ID, operator)
	require.NoError(t, err)

	_, err = s.Cancel(context.Background(), reservation.ID, operator)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	var got model.Reservation
	require.NoError(t, gormDB.First(&got, reservation.ID).Error)
	assert.Equal(t, model.StatusCancelled, got.Status, "status must stay cancelled")
}

func TestCancelOwnership(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, nil)
	machine := seedMachine(t, gormDB, "Washer A")

	target := day(2024, 1, 2)
	slot := seedSlot(t, gormDB, machine.ID, at(target, 9, 0), at(target, 9, 30))
	reservation := mustBook(t, s, 7, slot.ID, at(target, 8, 0))

	_, err := s.Cancel(context.Background(), reservation.ID, Actor{UserID: 8, Role: RoleUser})
	assert.ErrorIs(t, err, ErrForbidden)

	// Operators may cancel anyone's booking.
	_, err = s.Cancel(context.Background(), reservation.ID, Actor{UserID: 1, Role: RoleOperator})
	assert.NoError(t, err)
}

func TestCancelNotFound(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, nil)

	_, err := s.Cancel(context.Background(), 999, Actor{UserID: 7, Role: RoleUser})
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestValidate(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, nil)
	machine := seedMachine(t, gormDB, "Washer A")

	target := day(2024, 1, 2)
	slot := seedSlot(t, gormDB, machine.ID, at(target, 9, 0), at(target, 9, 30))
	reservation := mustBook(t, s, 7, slot.ID, at(target, 8, 0))

	require.NoError(t, s.Validate(context.Background(), reservation.ID))

	var got model.Reservation
	require.NoError(t, gormDB.First(&got, reservation.ID).Error)
	assert.Equal(t, model.StatusValidated, got.Status)

	// Re-validating is a no-op success.
	require.NoError(t, s.Validate(context.Background(), reservation.ID))
}

func TestValidateNotFound(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, nil)

	err := s.Validate(context.Background(), 999)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestValidateCancelledIsRejected(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, nil)
	machine := seedMachine(t, gormDB, "Washer A")

	target := day(2024, 1, 2)
	slot := seedSlot(t, gormDB, machine.ID, at(target, 9, 0), at(target, 9, 30))
	reservation := mustBook(t, s, 7, slot.ID, at(target, 8, 0))

	_, err := s.Cancel(context.Background(), reservation.ID, Actor{UserID: 7, Role: RoleUser})
	require.NoError(t, err)

	err = s.Validate(context.Background(), reservation.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	var got model.Reservation
	require.NoError(t, gormDB.First(&got, reservation.ID).Error)
	assert.Equal(t, model.StatusCancelled, got.Status)
}

func TestUserBookingsAndReceipt(t *testing.T) {
	s, gormDB := newTestStore(t)
	seedSettings(t, gormDB, func(settings *model.Settings) {
		settings.WeeklyLimit = 0
		settings.MonthlyLimit = 0
	})
	machine := seedMachine(t, gormDB, "Washer A")

	early := day(2024, 1, 1)
	late := day(2024, 1, 5)
	slotEarly := seedSlot(t, gormDB, machine.ID, at(early, 9, 0), at(early, 9, 30))
	slotLate := seedSlot(t, gormDB, machine.ID, at(late, 9, 0), at(late, 9, 30))

	slotOther := seedSlot(t, gormDB, machine.ID, at(late, 10, 0), at(late, 10, 30))

	first := mustBook(t, s, 7, slotEarly.ID, at(early, 8, 0))
	mustBook(t, s, 7, slotLate.ID, at(early, 8, 1))
	mustBook(t, s, 8, slotOther.ID, at(early, 8, 2)) // other user's booking stays out of the listing

	bookings, err := s.UserBookings(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.True(t, bookings[0].StartAt.After(bookings[1].StartAt), "most recent slot first")
	assert.Equal(t, "Washer A", bookings[0].MachineName)

	receipt, err := s.Receipt(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, receipt.BookingID)
	assert.Equal(t, int64(7), receipt.UserID)
	assert.Equal(t, model.StatusBooked, receipt.Status)

	_, err = s.Receipt(context.Background(), 999)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}
