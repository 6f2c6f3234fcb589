package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/period"
)

// buildDaySlots packs the slot timeline for one day from the policy. It
// emits slots of washDuration from the start of the operating window while
// the next slot still fits before the end of the window and the per-day
// cap is not reached, inserting a break after every breakAfter emissions.
// A window shorter than one wash yields no slots.
func buildDaySlots(settings *model.Settings, day time.Time) ([]model.Slot, error) {
	start, end, err := settings.Window()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}

	dayStart, _ := period.Day(day)
	windowEnd := dayStart.Add(end)
	washDuration := time.Duration(settings.WashDuration) * time.Minute
	breakDuration := time.Duration(settings.BreakDuration) * time.Minute

	var slots []model.Slot
	current := dayStart.Add(start)
	for current.Add(washDuration).Before(windowEnd) || current.Add(washDuration).Equal(windowEnd) {
		if len(slots) >= settings.SlotsPerDay {
			break
		}
		slots = append(slots, model.Slot{
			StartAt: current,
			EndAt:   current.Add(washDuration),
		})
		current = current.Add(washDuration)
		if settings.BreakAfter > 0 && len(slots)%settings.BreakAfter == 0 {
			current = current.Add(breakDuration)
		}
	}
	return slots, nil
}

// GenerateDailySlots produces the bookable timeline of day for every
// machine that does not have one yet. Generation is idempotent per
// (machine, day): a machine with any slot on that day is skipped. The
// check and the insert run under the machine's lock inside one
// transaction, so concurrent first reads of the day cannot double-pack a
// machine.
func (s *gormStore) GenerateDailySlots(ctx context.Context, day time.Time) error {
	settings, err := s.Settings(ctx)
	if err != nil {
		return err
	}

	template, err := buildDaySlots(settings, day)
	if err != nil {
		return err
	}

	var machines []model.Machine
	if err := s.db.WithContext(ctx).Find(&machines).Error; err != nil {
		return storageErr("failed to list machines for generation", err)
	}

	dayStart, dayEnd := period.Day(day)
	for _, m := range machines {
		if err := s.generateForMachine(ctx, m.ID, template, dayStart, dayEnd); err != nil {
			return err
		}
	}
	return nil
}

func (s *gormStore) generateForMachine(ctx context.Context, machineID int64, template []model.Slot, dayStart, dayEnd time.Time) error {
	unlock := s.machineLocks.lock(machineID)
	defer unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Slot{}).
			Where("machine_id = ? AND start_at >= ? AND start_at < ?", machineID, dayStart, dayEnd).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 || len(template) == 0 {
			return nil
		}

		slots := make([]model.Slot, len(template))
		copy(slots, template)
		for i := range slots {
			slots[i].MachineID = machineID
		}
		return tx.Create(&slots).Error
	})
	if err != nil {
		return storageErr(fmt.Sprintf("failed to generate slots for machine %d", machineID), err)
	}
	return nil
}

// CreateSlot inserts a manually defined slot. Manual slots bypass the
// generator's packing rule and may overlap existing ones.
func (s *gormStore) CreateSlot(ctx context.Context, slot *model.Slot) error {
	if !slot.EndAt.After(slot.StartAt) {
		return fmt.Errorf("%w: slot end must be after its start", ErrInvalidPolicy)
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Machine{}).
		Where("id = ?", slot.MachineID).Count(&count).Error; err != nil {
		return storageErr("failed to check machine", err)
	}
	if count == 0 {
		return ErrMachineNotFound
	}
	if err := s.db.WithContext(ctx).Create(slot).Error; err != nil {
		return storageErr("failed to create slot", err)
	}
	return nil
}

// ListAvailableSlots returns every slot that has not ended by from,
// together with its machine name and whether an active reservation
// occupies it, ordered by start time.
func (s *gormStore) ListAvailableSlots(ctx context.Context, from time.Time) ([]SlotView, error) {
	type row struct {
		SlotID      int64
		MachineID   int64
		MachineName string
		StartAt     time.Time
		EndAt       time.Time
		BookedCount int64
	}

	var rows []row
	err := s.db.WithContext(ctx).Raw(`
		SELECT s.id AS slot_id, s.machine_id, m.name AS machine_name,
		       s.start_at, s.end_at,
		       (SELECT COUNT(*) FROM reservations r
		        WHERE r.slot_id = s.id AND r.status IN ('booked', 'validated')) AS booked_count
		FROM slots s
		JOIN machines m ON m.id = s.machine_id
		WHERE s.end_at > ?
		ORDER BY s.start_at, s.id`, from).Scan(&rows).Error
	if err != nil {
		return nil, storageErr("failed to list available slots", err)
	}

	views := make([]SlotView, 0, len(rows))
	for _, r := range rows {
		views = append(views, SlotView{
			SlotID:      r.SlotID,
			MachineID:   r.MachineID,
			MachineName: r.MachineName,
			StartAt:     r.StartAt,
			EndAt:       r.EndAt,
			Booked:      r.BookedCount > 0,
		})
	}
	return views, nil
}
