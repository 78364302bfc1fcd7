package repository

import (
	"context"
	"time"

	"island-reservations/internal/domain/availability"
	"island-reservations/internal/infra"
	"island-reservations/internal/infra/db"
	"island-reservations/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type AvailabilityRepository struct{}

func NewAvailabilityRepository() *AvailabilityRepository {
	return &AvailabilityRepository{}
}

const findAvailabilityByRangeSQL = `
SELECT date, remaining, maximum
FROM day_availability
WHERE date BETWEEN $1 AND $2
ORDER BY date`

func (r *AvailabilityRepository) FindByRange(ctx context.Context, dbtx db.DBTX, from, to time.Time) ([]availability.Day, error) {
	rows, err := dbtx.Query(ctx, findAvailabilityByRangeSQL, pgconv.DateToPgtype(from), pgconv.DateToPgtype(to))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query availability range", err)
	}
	defer rows.Close()

	return scanDays(rows)
}

const findAvailabilityByDatesSQL = `
SELECT date, remaining, maximum
FROM day_availability
WHERE date = ANY($1)
ORDER BY date`

func (r *AvailabilityRepository) FindByDates(ctx context.Context, dbtx db.DBTX, dates []time.Time) ([]availability.Day, error) {
	rows, err := dbtx.Query(ctx, findAvailabilityByDatesSQL, toDateArray(dates))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query availability by dates", err)
	}
	defer rows.Close()

	return scanDays(rows)
}

const upsertAvailabilitySQL = `
INSERT INTO day_availability (date, remaining, maximum)
SELECT * FROM unnest($1::date[], $2::int[], $3::int[])
ON CONFLICT (date) DO UPDATE
SET remaining = EXCLUDED.remaining, maximum = EXCLUDED.maximum`

func (r *AvailabilityRepository) Upsert(ctx context.Context, dbtx db.DBTX, days []availability.Day) error {
	if len(days) == 0 {
		return nil
	}

	dates := make([]pgtype.Date, len(days))
	remaining := make([]int32, len(days))
	maximum := make([]int32, len(days))
	for i, day := range days {
		dates[i] = pgconv.DateToPgtype(day.Date())
		remaining[i] = int32(day.Remaining())
		maximum[i] = int32(day.Maximum())
	}

	if _, err := dbtx.Exec(ctx, upsertAvailabilitySQL, dates, remaining, maximum); err != nil {
		return infra.WrapRepoErr("failed to upsert availability", err)
	}
	return nil
}

func scanDays(rows pgx.Rows) ([]availability.Day, error) {
	var days []availability.Day
	for rows.Next() {
		var (
			date               pgtype.Date
			remaining, maximum int32
		)
		if err := rows.Scan(&date, &remaining, &maximum); err != nil {
			return nil, infra.WrapRepoErr("failed to scan availability row", err)
		}
		day, err := availability.NewDay(normalizeDate(date.Time), int(remaining), int(maximum))
		if err != nil {
			return nil, infra.WrapRepoErr("stored availability row breaks invariant", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read availability rows", err)
	}
	return days, nil
}

func toDateArray(dates []time.Time) []pgtype.Date {
	arr := make([]pgtype.Date, len(dates))
	for i, d := range dates {
		arr[i] = pgconv.DateToPgtype(d)
	}
	return arr
}

// normalizeDate pins scanned dates to UTC midnight so they compare equal to
// dates produced by the domain's range arithmetic.
func normalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
