package shared

import (
	"context"
	"time"

	"island-reservations/internal/domain/availability"
	"island-reservations/internal/domain/reservation"
	"island-reservations/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations. Date locks acquired
	// inside fn are held until commit or rollback, so lock release is
	// guaranteed on every exit path.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
}

type Tx interface {
	Reservations() ReservationRepository
	Ledger() AvailabilityRepository
	DateLocks() DateLockRepository
	Config() ConfigRepository
	DB() db.DBTX
}

// ReservationRepository is the durable store of reservations. Update and
// Save compare-and-swap on the version column; a mismatch means another
// writer committed between our read and write.
type ReservationRepository interface {
	FindByID(ctx context.Context, db db.DBTX, id uuid.UUID) (*reservation.Reservation, error)
	Create(ctx context.Context, db db.DBTX, res *reservation.Reservation) (uuid.UUID, error)
	Update(ctx context.Context, db db.DBTX, res *reservation.Reservation, expectedVersion int32) (int32, error)
	Save(ctx context.Context, db db.DBTX, res *reservation.Reservation, expectedVersion int32) (int32, error)
}

// AvailabilityRepository persists per-date ledger entries. It only ever
// touches the rows it is given; absent dates are implicit fresh entries.
type AvailabilityRepository interface {
	// FindByRange returns persisted entries with date in [from, to],
	// ordered by date ascending.
	FindByRange(ctx context.Context, db db.DBTX, from, to time.Time) ([]availability.Day, error)
	// FindByDates returns persisted entries for exactly the given dates,
	// ordered by date ascending. Callers must hold the date locks.
	FindByDates(ctx context.Context, db db.DBTX, dates []time.Time) ([]availability.Day, error)
	Upsert(ctx context.Context, db db.DBTX, days []availability.Day) error
}

// DateLockRepository serializes ledger access per calendar date. Acquire
// blocks until every requested date lock is granted, taking them in
// ascending date order regardless of input order.
type DateLockRepository interface {
	Acquire(ctx context.Context, db db.DBTX, dates []time.Time) error
}

type ConfigRepository interface {
	GetInt(ctx context.Context, db db.DBTX, name string) (int, error)
	Insert(ctx context.Context, db db.DBTX, name string, value int) error
}
