package rules

import (
	"context"
	"log/slog"

	"island-reservations/internal/domain/reservation"
	"island-reservations/internal/infra"
	"island-reservations/internal/infra/db"
	"island-reservations/internal/usecase/shared"
)

// Configuration rows are stored by name; a missing row is materialized with
// its default on first read so operators can tune values in place later.
const (
	nameMaxAvailability  = "MAX_AVAILABILITY"
	nameMaxReservation   = "MAX_RESERVATION"
	nameMinAhead         = "MIN_AHEAD"
	nameMaxAhead         = "MAX_AHEAD"
	nameMaxDateRange     = "MAX_DATE_RANGE"
	nameDefaultDateRange = "DEFAULT_DATE_RANGE"
)

const (
	defaultMaxAvailability  = 100
	defaultMaxReservation   = 3
	defaultMinAhead         = 1
	defaultMaxAhead         = 30
	defaultMaxDateRange     = 90
	defaultDefaultDateRange = 30
)

// Provider supplies the tunable business limits that gate reservations and
// availability queries. Every value is a plain day count or head count.
type Provider interface {
	MaxDailyCapacity(ctx context.Context) (int, error)
	MaxStayDays(ctx context.Context) (int, error)
	MinAheadDays(ctx context.Context) (int, error)
	MaxAheadDays(ctx context.Context) (int, error)
	MaxQueryRangeDays(ctx context.Context) (int, error)
	DefaultQueryRangeDays(ctx context.Context) (int, error)
	ReservationLimits(ctx context.Context) (reservation.Limits, error)
}

type providerImpl struct {
	uow        shared.UnitOfWork
	configRepo shared.ConfigRepository
}

func NewProvider(uow shared.UnitOfWork, configRepo shared.ConfigRepository) Provider {
	return &providerImpl{
		uow:        uow,
		configRepo: configRepo,
	}
}

func (p *providerImpl) MaxDailyCapacity(ctx context.Context) (int, error) {
	return p.getOrInsert(ctx, nameMaxAvailability, defaultMaxAvailability)
}

func (p *providerImpl) MaxStayDays(ctx context.Context) (int, error) {
	return p.getOrInsert(ctx, nameMaxReservation, defaultMaxReservation)
}

func (p *providerImpl) MinAheadDays(ctx context.Context) (int, error) {
	return p.getOrInsert(ctx, nameMinAhead, defaultMinAhead)
}

func (p *providerImpl) MaxAheadDays(ctx context.Context) (int, error) {
	return p.getOrInsert(ctx, nameMaxAhead, defaultMaxAhead)
}

func (p *providerImpl) MaxQueryRangeDays(ctx context.Context) (int, error) {
	return p.getOrInsert(ctx, nameMaxDateRange, defaultMaxDateRange)
}

func (p *providerImpl) DefaultQueryRangeDays(ctx context.Context) (int, error) {
	return p.getOrInsert(ctx, nameDefaultDateRange, defaultDefaultDateRange)
}

func (p *providerImpl) ReservationLimits(ctx context.Context) (reservation.Limits, error) {
	var limits reservation.Limits
	var err error
	if limits.MinAheadDays, err = p.MinAheadDays(ctx); err != nil {
		return reservation.Limits{}, err
	}
	if limits.MaxAheadDays, err = p.MaxAheadDays(ctx); err != nil {
		return reservation.Limits{}, err
	}
	if limits.MaxStayDays, err = p.MaxStayDays(ctx); err != nil {
		return reservation.Limits{}, err
	}
	return limits, nil
}

func (p *providerImpl) getOrInsert(ctx context.Context, name string, defaultValue int) (int, error) {
	value := defaultValue
	err := p.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
		v, err := p.configRepo.GetInt(ctx, dbtx, name)
		if err == nil {
			value = v
			return nil
		}
		if !infra.IsKind(err, infra.KindNotFound) {
			return err
		}
		slog.Info("configuration value not found, inserting default", "name", name, "default", defaultValue)
		if insertErr := p.configRepo.Insert(ctx, dbtx, name, defaultValue); insertErr != nil {
			// A concurrent reader may have inserted the same default first.
			if !infra.IsKind(insertErr, infra.KindDuplicateKey) {
				return insertErr
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}
