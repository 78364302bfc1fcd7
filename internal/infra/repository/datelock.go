package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"island-reservations/internal/infra"
	"island-reservations/internal/infra/db"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgErrCodeLockNotAvailable = "55P03"

// DateLockRepository realizes the date lock as row locks on the pre-seeded
// calendar_dates table: holding FOR UPDATE on a date's row serializes every
// operation that books, amends or releases capacity for that date. The locks
// live until the surrounding transaction commits or rolls back, which
// guarantees release on every exit path.
type DateLockRepository struct{}

func NewDateLockRepository() *DateLockRepository {
	return &DateLockRepository{}
}

const ensureCalendarDatesSQL = `
INSERT INTO calendar_dates (date)
SELECT unnest($1::date[])
ON CONFLICT (date) DO NOTHING`

const lockCalendarDatesSQL = `
SELECT date FROM calendar_dates
WHERE date = ANY($1)
ORDER BY date
FOR UPDATE`

// Acquire blocks until every requested date is locked. Dates are locked in
// ascending order regardless of input order; two operations over overlapping
// date sets therefore always contend on the first shared date instead of
// deadlocking on each other.
func (r *DateLockRepository) Acquire(ctx context.Context, dbtx db.DBTX, dates []time.Time) error {
	if len(dates) == 0 {
		return nil
	}

	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	// Dates beyond the seeded window get a calendar row on demand.
	if _, err := dbtx.Exec(ctx, ensureCalendarDatesSQL, toDateArray(sorted)); err != nil {
		return wrapLockErr("failed to materialize calendar dates", err)
	}

	rows, err := dbtx.Query(ctx, lockCalendarDatesSQL, toDateArray(sorted))
	if err != nil {
		return wrapLockErr("failed to lock calendar dates", err)
	}
	defer rows.Close()

	locked := 0
	for rows.Next() {
		locked++
	}
	if err := rows.Err(); err != nil {
		return wrapLockErr("failed to lock calendar dates", err)
	}
	if locked != len(sorted) {
		return infra.WrapRepoErr("calendar dates missing after materialization", nil)
	}
	return nil
}

const seedCalendarSQL = `
INSERT INTO calendar_dates (date)
SELECT generate_series($1::date, $2::date, interval '1 day')::date
ON CONFLICT (date) DO NOTHING`

// SeedWindow pre-populates the calendar for the bookable window so the hot
// path almost never needs to materialize rows before locking.
func (r *DateLockRepository) SeedWindow(ctx context.Context, dbtx db.DBTX, from, to time.Time) error {
	if _, err := dbtx.Exec(ctx, seedCalendarSQL, from, to); err != nil {
		return infra.WrapRepoErr("failed to seed calendar window", err)
	}
	return nil
}

func wrapLockErr(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeLockNotAvailable {
		return infra.WrapRepoErr(msg, err, infra.KindLockTimeout)
	}
	return infra.WrapRepoErr(msg, err)
}
