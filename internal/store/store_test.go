package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"laundry-booking-backend/internal/db"
	"laundry-booking-backend/internal/model"
)

// newTestDB opens an isolated in-memory SQLite database and runs the
// migrations, including the partial unique index on active reservations.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive and avoids
	// SQLITE_BUSY under the concurrency tests.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

func newTestStore(t *testing.T) (*gormStore, *gorm.DB) {
	t.Helper()
	gormDB := newTestDB(t)
	return NewGormStore(gormDB, Options{WeekStart: time.Monday}).(*gormStore), gormDB
}

func seedSettings(t *testing.T, gormDB *gorm.DB, mutate func(*model.Settings)) *model.Settings {
	t.Helper()
	settings := &model.Settings{
		ID:           model.SettingsID,
		StartTime:    "08:00",
		EndTime:      "10:00",
		WashDuration: 30,
		SlotsPerDay:  20,
		WeeklyLimit:  2,
		MonthlyLimit: 8,
	}
	if mutate != nil {
		mutate(settings)
	}
	require.NoError(t, gormDB.Create(settings).Error)
	return settings
}

func seedMachine(t *testing.T, gormDB *gorm.DB, name string) *model.Machine {
	t.Helper()
	machine := &model.Machine{Name: name, Location: "Basement"}
	require.NoError(t, gormDB.Create(machine).Error)
	return machine
}

func seedSlot(t *testing.T, gormDB *gorm.DB, machineID int64, start, end time.Time) *model.Slot {
	t.Helper()
	slot := &model.Slot{MachineID: machineID, StartAt: start, EndAt: end}
	require.NoError(t, gormDB.Create(slot).Error)
	return slot
}

func mustBook(t *testing.T, s *gormStore, userID, slotID int64, now time.Time) *model.Reservation {
	t.Helper()
	reservation, err := s.Book(context.Background(), userID, slotID, now)
	require.NoError(t, err)
	return reservation
}
