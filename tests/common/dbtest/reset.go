//go:build e2e

package dbtest

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ResetDB clears mutable state between subtests. The calendar_dates rows
// seeded at startup are kept: they carry no state, only lockable rows.
func ResetDB(pool *pgxpool.Pool) error {
	_, err := pool.Exec(context.Background(),
		"TRUNCATE TABLE reservation, day_availability, configuration")
	return err
}
