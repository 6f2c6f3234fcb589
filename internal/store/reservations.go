package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/period"
)

// Book runs admission control for a booking request and, when it passes,
// creates the reservation. The checks run in order and the first failure
// wins: slot existence, weekly limit, monthly limit, slot occupancy. The
// occupancy check and the insert are atomic per slot; the limit counts are
// deliberately not serialized per user: two near-simultaneous requests at
// a limit boundary may both pass, which is accepted. The limits are a
// fairness guideline, not a safety invariant.
func (s *gormStore) Book(ctx context.Context, userID, slotID int64, now time.Time) (*model.Reservation, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	var slot model.Slot
	if err := s.db.WithContext(ctx).First(&slot, slotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, storageErr("failed to load slot", err)
	}

	if settings.WeeklyLimit > 0 {
		start, end := period.Week(now, s.weekStart)
		count, err := s.countBooked(ctx, userID, start, end)
		if err != nil {
			return nil, err
		}
		if count >= int64(settings.WeeklyLimit) {
			return nil, ErrWeeklyLimitReached
		}
	}

	if settings.MonthlyLimit > 0 {
		start, end := period.Month(now)
		count, err := s.countBooked(ctx, userID, start, end)
		if err != nil {
			return nil, err
		}
		if count >= int64(settings.MonthlyLimit) {
			return nil, ErrMonthlyLimitReached
		}
	}

	unlock := s.slotLocks.lock(slotID)
	defer unlock()

	reservation := &model.Reservation{
		SlotID:    slotID,
		UserID:    userID,
		Status:    model.StatusBooked,
		CreatedAt: now,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&model.Reservation{}).
			Where("slot_id = ? AND status IN ?", slotID, []string{model.StatusBooked, model.StatusValidated}).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrSlotTaken
		}
		return tx.Create(reservation).Error
	})
	if err != nil {
		if errors.Is(err, ErrSlotTaken) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlotTaken
		}
		return nil, storageErr("failed to create reservation", err)
	}
	return reservation, nil
}

func (s *gormStore) countBooked(ctx context.Context, userID int64, start, end time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("user_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
			userID, model.StatusBooked, start, end).
		Count(&count).Error
	if err != nil {
		return 0, storageErr("failed to count bookings", err)
	}
	return count, nil
}

// Cancel moves a reservation to the cancelled state. Regular users may
// only cancel their own bookings; operators and admins may cancel any.
// Cancelling an already-cancelled reservation reports ErrAlreadyCancelled
// rather than silent success. The returned machineID identifies the
// machine whose future slot was freed (0 when nothing was freed), so the
// caller can notify subscribers.
func (s *gormStore) Cancel(ctx context.Context, reservationID int64, actor Actor) (int64, error) {
	var freedMachine int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation model.Reservation
		if err := tx.First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return storageErr("failed to load reservation", err)
		}

		if !actor.Staff() && reservation.UserID != actor.UserID {
			return ErrForbidden
		}
		if reservation.Status == model.StatusCancelled {
			return ErrAlreadyCancelled
		}

		if err := tx.Model(&reservation).Update("status", model.StatusCancelled).Error; err != nil {
			return storageErr("failed to cancel reservation", err)
		}

		// The freed slot is only worth announcing while it is still in the
		// future. Past slots are history, and a slot deleted by a machine
		// cascade simply does not resolve here.
		var slot model.Slot
		if err := tx.First(&slot, reservation.SlotID).Error; err == nil && slot.EndAt.After(time.Now()) {
			freedMachine = slot.MachineID
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return freedMachine, nil
}

// Validate marks a reservation as validated by an operator. A cancelled
// reservation cannot be validated; re-validating a validated one is a
// no-op success.
func (s *gormStore) Validate(ctx context.Context, reservationID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation model.Reservation
		if err := tx.First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return storageErr("failed to load reservation", err)
		}

		if reservation.Status == model.StatusCancelled {
			return ErrAlreadyCancelled
		}
		if reservation.Status == model.StatusValidated {
			return nil
		}
		if err := tx.Model(&reservation).Update("status", model.StatusValidated).Error; err != nil {
			return storageErr("failed to validate reservation", err)
		}
		return nil
	})
}

const bookingViewSelect = `
	SELECT r.id AS booking_id, r.user_id, r.status, r.created_at,
	       m.name AS machine_name, s.start_at, s.end_at
	FROM reservations r
	JOIN slots s ON s.id = r.slot_id
	JOIN machines m ON m.id = s.machine_id`

// UserBookings returns the user's reservations, most recent slot first.
func (s *gormStore) UserBookings(ctx context.Context, userID int64) ([]BookingView, error) {
	var views []BookingView
	err := s.db.WithContext(ctx).
		Raw(bookingViewSelect+" WHERE r.user_id = ? ORDER BY s.start_at DESC, r.id DESC", userID).
		Scan(&views).Error
	if err != nil {
		return nil, storageErr("failed to list user bookings", err)
	}
	return views, nil
}

// Receipt returns the booking details shown on a reservation receipt.
func (s *gormStore) Receipt(ctx context.Context, reservationID int64) (*BookingView, error) {
	var views []BookingView
	err := s.db.WithContext(ctx).
		Raw(bookingViewSelect+" WHERE r.id = ?", reservationID).
		Scan(&views).Error
	if err != nil {
		return nil, storageErr("failed to load receipt", err)
	}
	if len(views) == 0 {
		return nil, ErrReservationNotFound
	}
	return &views[0], nil
}

// CountActiveByMachine reports the number of active reservations per
// machine name, for the metrics collector.
func (s *gormStore) CountActiveByMachine(ctx context.Context) (map[string]int, error) {
	type row struct {
		Name  string
		Count int
	}
	var rows []row
	err := s.db.WithContext(ctx).Raw(`
		SELECT m.name AS name, COUNT(*) AS count
		FROM reservations r
		JOIN slots s ON s.id = r.slot_id
		JOIN machines m ON m.id = s.machine_id
		WHERE r.status IN ('booked', 'validated')
		GROUP BY m.name`).Scan(&rows).Error
	if err != nil {
		return nil, storageErr("failed to count active reservations", err)
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Name] = r.Count
	}
	return counts, nil
}

// occupied reports whether the slot has an active reservation. Exposed for
// tests; Book performs the same check inside its transaction.
func (s *gormStore) occupied(ctx context.Context, slotID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("slot_id = ? AND status IN ?", slotID, []string{model.StatusBooked, model.StatusValidated}).
		Count(&count).Error
	if err != nil {
		return false, storageErr(fmt.Sprintf("failed to check occupancy of slot %d", slotID), err)
	}
	return count > 0, nil
}
