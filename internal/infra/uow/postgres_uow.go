package uow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"island-reservations/internal/infra/db"
	"island-reservations/internal/infra/repository"
	"island-reservations/internal/pkg/errs"
	"island-reservations/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errTransactionBegin  = errs.New("failed to begin transaction")
	errTransactionCommit = errs.New("failed to commit transaction")
)

type PostgresUoW struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration

	reservations *repository.ReservationRepository
	ledger       *repository.AvailabilityRepository
	dateLocks    *repository.DateLockRepository
	config       *repository.ConfigRepository
}

func NewPostgresUoW(pool *pgxpool.Pool, lockTimeout time.Duration) shared.UnitOfWork {
	return &PostgresUoW{
		pool:         pool,
		lockTimeout:  lockTimeout,
		reservations: repository.NewReservationRepository(),
		ledger:       repository.NewAvailabilityRepository(),
		dateLocks:    repository.NewDateLockRepository(),
		config:       repository.NewConfigRepository(),
	}
}

// Within runs fn in a ReadCommitted transaction. Row locks taken by fn
// (date locks, version-checked updates) are held until the commit or
// rollback below, never longer. There is no internal retry: conflicts
// surface to the caller as ordinary errors.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("failed to rollback transaction", "error", rollbackErr)
			}
		}
	}()

	// Bounded wait on date locks; an exceeded wait aborts before any
	// mutation has happened.
	if u.lockTimeout > 0 {
		lockSQL := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
		if _, err := pgxTx.Exec(ctx, lockSQL); err != nil {
			return errs.Wrap(err, "failed to set lock timeout")
		}
	}

	tx := &pgTx{dbtx: pgxTx, uow: u}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := pgxTx.Commit(ctx); err != nil {
		return errs.Mark(err, errTransactionCommit)
	}
	return nil
}

func (u *PostgresUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, u.pool)
}

type pgTx struct {
	dbtx pgx.Tx
	uow  *PostgresUoW
}

func (t *pgTx) Reservations() shared.ReservationRepository { return t.uow.reservations }
func (t *pgTx) Ledger() shared.AvailabilityRepository      { return t.uow.ledger }
func (t *pgTx) DateLocks() shared.DateLockRepository       { return t.uow.dateLocks }
func (t *pgTx) Config() shared.ConfigRepository            { return t.uow.config }
func (t *pgTx) DB() db.DBTX                                { return t.dbtx }
