package store

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"laundry-booking-backend/internal/model"
)

// Store is the scheduling and reservation engine over the database.
type Store interface {
	// DB exposes the underlying handle for surfaces outside the engine
	// core, such as the push-subscription handlers.
	DB() *gorm.DB

	Settings(ctx context.Context) (*model.Settings, error)
	UpdateSettings(ctx context.Context, s *model.Settings) error

	Machines(ctx context.Context) ([]model.Machine, error)
	CreateMachine(ctx context.Context, m *model.Machine) error
	DeleteMachine(ctx context.Context, machineID int64, now time.Time) error

	GenerateDailySlots(ctx context.Context, day time.Time) error
	CreateSlot(ctx context.Context, s *model.Slot) error
	ListAvailableSlots(ctx context.Context, from time.Time) ([]SlotView, error)

	Book(ctx context.Context, userID, slotID int64, now time.Time) (*model.Reservation, error)
	Cancel(ctx context.Context, reservationID int64, actor Actor) (machineID int64, err error)
	Validate(ctx context.Context, reservationID int64) error

	UserBookings(ctx context.Context, userID int64) ([]BookingView, error)
	Receipt(ctx context.Context, reservationID int64) (*BookingView, error)
	OperatorQueue(ctx context.Context) ([]QueueEntry, error)

	CountActiveByMachine(ctx context.Context) (map[string]int, error)
}

// Options carries the scheduling conventions the engine cannot read from
// the database.
type Options struct {
	// WeekStart is the first day of the booking week used for the weekly
	// limit window.
	WeekStart time.Weekday
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db        *gorm.DB
	weekStart time.Weekday

	// Per-slot and per-machine critical sections for check-then-insert
	// sequences. The partial unique index on reservations backs this up
	// across processes.
	slotLocks    keyedMutex
	machineLocks keyedMutex
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, opts Options) Store {
	return &gormStore{
		db:        db,
		weekStart: opts.WeekStart,
	}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// keyedMutex hands out one mutex per key, in the same way the IP rate
// limiter hands out one limiter per client address. Entries are never
// evicted; the key space is bounded by the number of slots and machines.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (k *keyedMutex) get(key int64) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[int64]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	return l
}

// lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) lock(key int64) func() {
	l := k.get(key)
	l.Lock()
	return l.Unlock
}
