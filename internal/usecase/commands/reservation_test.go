//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"island-reservations/internal/domain/reservation"
	"island-reservations/internal/infra/db"
	"island-reservations/internal/pkg/clock"
	"island-reservations/internal/pkg/errs"
	"island-reservations/internal/usecase/commands"
	"island-reservations/internal/usecase/queries"
	"island-reservations/internal/usecase/rules"
	"island-reservations/internal/usecase/shared"
	"island-reservations/tests/common/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	store *memstore.Store
	clock *clock.MockClock
	cmds  commands.ReservationCommands
}

func newFixture(t *testing.T, today time.Time) *fixture {
	t.Helper()
	store := memstore.NewStore()
	clk := clock.NewMockClock(today)
	rulesProvider := rules.NewProvider(store, store.ConfigRepo())
	resQueries := queries.NewReservationQueries(store, store.ReservationRepo())
	cmds := commands.NewReservationCommands(store, rulesProvider, resQueries, clk)
	return &fixture{store: store, clock: clk, cmds: cmds}
}

func createParams(start, end time.Time, partySize int) commands.CreateReservationParams {
	return commands.CreateReservationParams{
		FirstName:       "Taro",
		LastName:        "Yamada",
		Email:           "taro@example.com",
		Start:           start,
		End:             end,
		NumberOfPersons: partySize,
	}
}

func updateParams(start, end time.Time, partySize int) commands.UpdateReservationParams {
	return commands.UpdateReservationParams{
		FirstName:       "Taro",
		LastName:        "Yamada",
		Email:           "taro@example.com",
		Start:           start,
		End:             end,
		NumberOfPersons: partySize,
	}
}

func TestCreate(t *testing.T) {
	today := date(2026, 9, 1)
	ctx := context.Background()

	t.Run("books the stay and decrements every occupied date", func(t *testing.T) {
		f := newFixture(t, today)

		view, err := f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 13), 4))
		require.NoError(t, err)

		assert.Equal(t, "active", view.Status)
		assert.Equal(t, int32(1), view.Version)
		assert.Equal(t, 4, view.NumberOfPersons)
		assert.Equal(t, date(2026, 9, 10), view.Start)
		assert.Equal(t, date(2026, 9, 13), view.End)

		assert.Equal(t, 96, f.store.Remaining(date(2026, 9, 10), 100))
		assert.Equal(t, 96, f.store.Remaining(date(2026, 9, 11), 100))
		assert.Equal(t, 96, f.store.Remaining(date(2026, 9, 12), 100))
		// End date is exclusive: never charged.
		assert.Equal(t, 100, f.store.Remaining(date(2026, 9, 13), 100))
	})

	t.Run("accumulates every validation failure", func(t *testing.T) {
		f := newFixture(t, today)

		_, err := f.cmds.Create(ctx, commands.CreateReservationParams{
			FirstName:       "",
			LastName:        "Yamada",
			Email:           "taro@example.com",
			Start:           date(2026, 8, 20),
			End:             date(2026, 8, 22),
			NumberOfPersons: 0,
		})

		var verr *reservation.ValidationError
		require.ErrorAs(t, err, &verr)
		fields := make([]string, 0, len(verr.Fields))
		for _, fe := range verr.Fields {
			fields = append(fields, fe.Field)
		}
		assert.ElementsMatch(t, []string{"firstName", "start", "numberOfPersons"}, fields)
	})

	t.Run("rejects when any date lacks capacity, writing nothing", func(t *testing.T) {
		f := newFixture(t, today)
		f.store.SeedConfig("MAX_AVAILABILITY", 10)

		_, err := f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 12), 8))
		require.NoError(t, err)

		// Second booking overflows 9/10 and 9/11; 9/12 onward was never touched.
		_, err = f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 13), 8))
		assert.ErrorIs(t, err, errs.ErrNoAvailabilityForDate)

		assert.Equal(t, 2, f.store.Remaining(date(2026, 9, 10), 10))
		assert.Equal(t, 2, f.store.Remaining(date(2026, 9, 11), 10))
		assert.Equal(t, 10, f.store.Remaining(date(2026, 9, 12), 10))
	})

	t.Run("concurrent creates never oversell a date", func(t *testing.T) {
		f := newFixture(t, today)
		f.store.SeedConfig("MAX_AVAILABILITY", 100)

		const attempts = 5
		results := make(chan error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 13), 30))
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		succeeded, failed := 0, 0
		for err := range results {
			if err == nil {
				succeeded++
				continue
			}
			failed++
			assert.ErrorIs(t, err, errs.ErrNoAvailabilityForDate)
		}

		assert.Equal(t, 3, succeeded)
		assert.Equal(t, 2, failed)
		assert.Equal(t, 10, f.store.Remaining(date(2026, 9, 10), 100))
		assert.Equal(t, 10, f.store.Remaining(date(2026, 9, 11), 100))
		assert.Equal(t, 10, f.store.Remaining(date(2026, 9, 12), 100))
	})
}

func TestCancel(t *testing.T) {
	today := date(2026, 9, 1)
	ctx := context.Background()

	t.Run("returns the capacity and is terminal", func(t *testing.T) {
		f := newFixture(t, today)

		created, err := f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 12), 5))
		require.NoError(t, err)
		assert.Equal(t, 95, f.store.Remaining(date(2026, 9, 10), 100))

		cancelled, err := f.cmds.Cancel(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", cancelled.Status)
		assert.Equal(t, int32(2), cancelled.Version)
		assert.Equal(t, 100, f.store.Remaining(date(2026, 9, 10), 100))
		assert.Equal(t, 100, f.store.Remaining(date(2026, 9, 11), 100))

		_, err = f.cmds.Cancel(ctx, created.ID)
		assert.ErrorIs(t, err, errs.ErrAlreadyCancelled)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		f := newFixture(t, today)

		_, err := f.cmds.Cancel(ctx, uuid.New())
		assert.ErrorIs(t, err, errs.ErrReservationNotFound)
	})
}

func TestUpdate(t *testing.T) {
	today := date(2026, 9, 1)
	ctx := context.Background()

	t.Run("guest-only change leaves the ledger alone", func(t *testing.T) {
		f := newFixture(t, today)
		created, err := f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 12), 4))
		require.NoError(t, err)

		params := updateParams(date(2026, 9, 10), date(2026, 9, 12), 4)
		params.FirstName = "Hanako"
		params.Email = "hanako@example.com"

		updated, err := f.cmds.Update(ctx, created.ID, params)
		require.NoError(t, err)

		assert.Equal(t, "Hanako", updated.FirstName)
		assert.Equal(t, int32(2), updated.Version)
		assert.Equal(t, 96, f.store.Remaining(date(2026, 9, 10), 100))
	})

	t.Run("party size change applies the delta in place", func(t *testing.T) {
		f := newFixture(t, today)
		created, err := f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 13), 10))
		require.NoError(t, err)
		assert.Equal(t, 90, f.store.Remaining(date(2026, 9, 10), 100))

		updated, err := f.cmds.Update(ctx, created.ID, updateParams(date(2026, 9, 10), date(2026, 9, 13), 12))
		require.NoError(t, err)

		assert.Equal(t, 12, updated.NumberOfPersons)
		assert.Equal(t, 88, f.store.Remaining(date(2026, 9, 10), 100))
		assert.Equal(t, 88, f.store.Remaining(date(2026, 9, 12), 100))
	})

	t.Run("date change releases the old stay and claims the new one", func(t *testing.T) {
		f := newFixture(t, today)
		created, err := f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 12), 4))
		require.NoError(t, err)

		_, err = f.cmds.Update(ctx, created.ID, updateParams(date(2026, 9, 11), date(2026, 9, 13), 4))
		require.NoError(t, err)

		assert.Equal(t, 100, f.store.Remaining(date(2026, 9, 10), 100))
		assert.Equal(t, 96, f.store.Remaining(date(2026, 9, 11), 100))
		assert.Equal(t, 96, f.store.Remaining(date(2026, 9, 12), 100))
	})

	t.Run("failed claim rolls back the release", func(t *testing.T) {
		f := newFixture(t, today)
		f.store.SeedConfig("MAX_AVAILABILITY", 2)

		_, err := f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 12), 2))
		require.NoError(t, err)
		second, err := f.cmds.Create(ctx, createParams(date(2026, 9, 20), date(2026, 9, 22), 2))
		require.NoError(t, err)

		_, err = f.cmds.Update(ctx, second.ID, updateParams(date(2026, 9, 10), date(2026, 9, 12), 2))
		assert.ErrorIs(t, err, errs.ErrNoAvailabilityForDate)

		// The old dates stay claimed and the reservation is untouched.
		assert.Equal(t, 0, f.store.Remaining(date(2026, 9, 20), 2))
		assert.Equal(t, 0, f.store.Remaining(date(2026, 9, 21), 2))
		unchanged, err := queries.NewReservationQueries(f.store, f.store.ReservationRepo()).GetByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, date(2026, 9, 20), unchanged.Start)
		assert.Equal(t, int32(1), unchanged.Version)
	})

	t.Run("can't move past the booking horizon", func(t *testing.T) {
		f := newFixture(t, today)
		created, err := f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 12), 4))
		require.NoError(t, err)

		_, err = f.cmds.Update(ctx, created.ID, updateParams(date(2026, 10, 20), date(2026, 10, 22), 4))

		var verr *reservation.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "start", verr.Fields[0].Field)
	})

	t.Run("inverted range accumulates with other field failures", func(t *testing.T) {
		f := newFixture(t, today)
		created, err := f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 12), 4))
		require.NoError(t, err)

		_, err = f.cmds.Update(ctx, created.ID, updateParams(date(2026, 9, 12), date(2026, 9, 10), 0))

		var verr *reservation.ValidationError
		require.ErrorAs(t, err, &verr)
		fields := make([]string, 0, len(verr.Fields))
		for _, fe := range verr.Fields {
			fields = append(fields, fe.Field)
		}
		assert.ElementsMatch(t, []string{"end", "numberOfPersons"}, fields)
	})

	t.Run("cancelled reservation can't be updated", func(t *testing.T) {
		f := newFixture(t, today)
		created, err := f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 12), 4))
		require.NoError(t, err)
		_, err = f.cmds.Cancel(ctx, created.ID)
		require.NoError(t, err)

		_, err = f.cmds.Update(ctx, created.ID, updateParams(date(2026, 9, 10), date(2026, 9, 12), 4))
		assert.ErrorIs(t, err, errs.ErrReservationCancelled)
	})

	t.Run("status changes must go through cancel", func(t *testing.T) {
		f := newFixture(t, today)
		created, err := f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 12), 4))
		require.NoError(t, err)

		params := updateParams(date(2026, 9, 10), date(2026, 9, 12), 4)
		params.Status = "cancelled"

		_, err = f.cmds.Update(ctx, created.ID, params)
		assert.ErrorIs(t, err, errs.ErrStatusChangeNotAllowed)
	})

	t.Run("ended reservation is immutable", func(t *testing.T) {
		f := newFixture(t, today)
		created, err := f.cmds.Create(ctx, createParams(date(2026, 9, 2), date(2026, 9, 4), 2))
		require.NoError(t, err)

		f.clock.Set(date(2026, 9, 10))

		_, err = f.cmds.Update(ctx, created.ID, updateParams(date(2026, 9, 2), date(2026, 9, 5), 2))
		assert.ErrorIs(t, err, errs.ErrReservationEnded)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		f := newFixture(t, today)

		_, err := f.cmds.Update(ctx, uuid.New(), updateParams(date(2026, 9, 10), date(2026, 9, 12), 2))
		assert.ErrorIs(t, err, errs.ErrReservationNotFound)
	})

	t.Run("concurrent writer surfaces as a version conflict", func(t *testing.T) {
		f := newFixture(t, today)
		created, err := f.cmds.Create(ctx, createParams(date(2026, 9, 10), date(2026, 9, 12), 4))
		require.NoError(t, err)

		conflicting := commands.NewReservationCommands(
			&conflictUoW{Store: f.store},
			rules.NewProvider(f.store, f.store.ConfigRepo()),
			queries.NewReservationQueries(f.store, f.store.ReservationRepo()),
			f.clock,
		)

		params := updateParams(date(2026, 9, 10), date(2026, 9, 12), 4)
		params.LastName = "Suzuki"

		_, err = conflicting.Update(ctx, created.ID, params)
		assert.ErrorIs(t, err, errs.ErrVersionConflict)
	})
}

// conflictUoW injects a competing committed write between a transaction's
// read of a reservation and its version-checked update.
type conflictUoW struct {
	*memstore.Store
}

func (u *conflictUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.Store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return fn(ctx, &conflictTx{Tx: tx, store: u.Store})
	})
}

type conflictTx struct {
	shared.Tx
	store *memstore.Store
}

func (t *conflictTx) Reservations() shared.ReservationRepository {
	return &conflictRepo{ReservationRepository: t.Tx.Reservations(), store: t.store}
}

type conflictRepo struct {
	shared.ReservationRepository
	store *memstore.Store
}

func (r *conflictRepo) Update(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation, expectedVersion int32) (int32, error) {
	committed, err := r.store.ReservationRepo().FindByID(ctx, nil, res.ID())
	if err == nil {
		_, _ = r.store.ReservationRepo().Update(ctx, nil, committed, committed.Version())
	}
	return r.ReservationRepository.Update(ctx, dbtx, res, expectedVersion)
}
