package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"laundry-booking-backend/internal/model"
)

// Machines returns all machines.
func (s *gormStore) Machines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Order("id").Find(&machines).Error; err != nil {
		return nil, storageErr("failed to list machines", err)
	}
	return machines, nil
}

// CreateMachine registers a new machine.
func (s *gormStore) CreateMachine(ctx context.Context, m *model.Machine) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return storageErr("failed to create machine", err)
	}
	return nil
}

// DeleteMachine removes a machine in one atomic unit: active reservations
// on the machine's future slots are cancelled, the future slots are
// deleted, then the machine itself. Past slots and their reservations stay
// behind as historical record. Any failure rolls the whole cascade back.
func (s *gormStore) DeleteMachine(ctx context.Context, machineID int64, now time.Time) error {
	unlock := s.machineLocks.lock(machineID)
	defer unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var machine model.Machine
		if err := tx.First(&machine, machineID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMachineNotFound
			}
			return storageErr("failed to load machine", err)
		}

		var futureSlotIDs []int64
		if err := tx.Model(&model.Slot{}).
			Where("machine_id = ? AND end_at > ?", machineID, now).
			Pluck("id", &futureSlotIDs).Error; err != nil {
			return storageErr("failed to collect future slots", err)
		}

		if len(futureSlotIDs) > 0 {
			if err := tx.Model(&model.Reservation{}).
				Where("slot_id IN ? AND status IN ?", futureSlotIDs,
					[]string{model.StatusBooked, model.StatusValidated}).
				Update("status", model.StatusCancelled).Error; err != nil {
				return storageErr("failed to cancel future reservations", err)
			}
			if err := tx.Where("id IN ?", futureSlotIDs).Delete(&model.Slot{}).Error; err != nil {
				return storageErr("failed to delete future slots", err)
			}
		}

		// Drop the push-subscription links by hand; the mapping has no
		// machine model to cascade from.
		if err := tx.Exec("DELETE FROM subscription_machine_mapping WHERE machine_id = ?", machineID).Error; err != nil {
			return storageErr("failed to remove subscription links", err)
		}

		if err := tx.Delete(&model.Machine{}, machineID).Error; err != nil {
			return storageErr("failed to delete machine", err)
		}
		return nil
	})
	return err
}
