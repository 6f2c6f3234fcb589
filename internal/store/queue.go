package store

import (
	"context"
	"sort"

	"laundry-booking-backend/internal/model"
)

// OperatorQueue projects all reservations into the order the operator
// works them: active ones (booked or validated) sorted by slot start time
// with the reservation id breaking ties, followed by cancelled ones in
// storage order. The tie-break makes the order total, so two bookings on
// simultaneous slots always appear in the same sequence.
func (s *gormStore) OperatorQueue(ctx context.Context) ([]QueueEntry, error) {
	var rows []QueueEntry
	err := s.db.WithContext(ctx).Raw(`
		SELECT r.id AS booking_id, r.user_id, r.status,
		       m.name AS machine_name, s.start_at, s.end_at
		FROM reservations r
		JOIN slots s ON s.id = r.slot_id
		JOIN machines m ON m.id = s.machine_id
		ORDER BY r.id`).Scan(&rows).Error
	if err != nil {
		return nil, storageErr("failed to load operator queue", err)
	}

	var active, cancelled []QueueEntry
	for _, row := range rows {
		if row.Status == model.StatusCancelled {
			cancelled = append(cancelled, row)
		} else {
			active = append(active, row)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if !active[i].StartAt.Equal(active[j].StartAt) {
			return active[i].StartAt.Before(active[j].StartAt)
		}
		return active[i].BookingID < active[j].BookingID
	})

	return append(active, cancelled...), nil
}
