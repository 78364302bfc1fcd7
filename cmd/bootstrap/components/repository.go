package components

import (
	"context"

	repo_impl "island-reservations/internal/infra/repository"
	"island-reservations/internal/infra/uow"
	"island-reservations/internal/pkg/clock"
	"island-reservations/internal/pkg/config"
	"island-reservations/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// calendarSeedAheadDays is how far ahead lockable calendar rows are
// pre-created at startup. Dates past the window are materialized on
// demand by DateLockRepository.Acquire.
const calendarSeedAheadDays = 366

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewUnitOfWork,
		repo_impl.NewDateLockRepository,
		fx.Annotate(
			repo_impl.NewReservationRepository,
			fx.As(new(shared.ReservationRepository)),
		),
		fx.Annotate(
			repo_impl.NewAvailabilityRepository,
			fx.As(new(shared.AvailabilityRepository)),
		),
		fx.Annotate(
			repo_impl.NewConfigRepository,
			fx.As(new(shared.ConfigRepository)),
		),
	),
	fx.Invoke(SeedCalendarWindow),
)

func NewUnitOfWork(pool *pgxpool.Pool, cfg config.Config) shared.UnitOfWork {
	return uow.NewPostgresUoW(pool, cfg.DB.LockTimeout)
}

// SeedCalendarWindow pre-creates the lockable calendar rows for the
// booking window so the common path never has to insert them.
func SeedCalendarWindow(lc fx.Lifecycle, pool *pgxpool.Pool, dateLocks *repo_impl.DateLockRepository, clk clock.Clock) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			today := clock.Today(clk)
			return dateLocks.SeedWindow(ctx, pool, today, today.AddDate(0, 0, calendarSeedAheadDays))
		},
	})
}
