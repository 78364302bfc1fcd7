package queries

import (
	"context"
	"time"

	"island-reservations/internal/domain/availability"
	"island-reservations/internal/infra/db"
	"island-reservations/internal/pkg/clock"
	"island-reservations/internal/pkg/errs"
	"island-reservations/internal/usecase/rules"
	"island-reservations/internal/usecase/shared"
)

type DayAvailabilityView struct {
	Date      time.Time
	Remaining int
	Maximum   int
}

type AvailabilityQueries interface {
	// GetAvailability returns one entry per date in [from, to] inclusive,
	// in date order with no gaps or duplicates. Nil bounds fall back to
	// the configured defaults (tomorrow, and the default query range).
	GetAvailability(ctx context.Context, from, to *time.Time) ([]DayAvailabilityView, error)
}

type availabilityQueriesImpl struct {
	uow        shared.UnitOfWork
	ledgerRepo shared.AvailabilityRepository
	rules      rules.Provider
	clock      clock.Clock
}

func NewAvailabilityQueries(
	uow shared.UnitOfWork,
	ledgerRepo shared.AvailabilityRepository,
	rules rules.Provider,
	clk clock.Clock,
) AvailabilityQueries {
	return &availabilityQueriesImpl{
		uow:        uow,
		ledgerRepo: ledgerRepo,
		rules:      rules,
		clock:      clk,
	}
}

func (q *availabilityQueriesImpl) GetAvailability(ctx context.Context, from, to *time.Time) ([]DayAvailabilityView, error) {
	today := clock.Today(q.clock)

	fromDate, toDate, err := q.resolveRange(ctx, today, from, to)
	if err != nil {
		return nil, err
	}

	if err := q.validateRange(ctx, today, fromDate, toDate); err != nil {
		return nil, err
	}

	maximum, err := q.rules.MaxDailyCapacity(ctx)
	if err != nil {
		return nil, err
	}

	var persisted []availability.Day
	err = q.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
		var findErr error
		persisted, findErr = q.ledgerRepo.FindByRange(ctx, dbtx, fromDate, toDate)
		return findErr
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return mergeDays(fromDate, toDate, persisted, maximum), nil
}

func (q *availabilityQueriesImpl) resolveRange(ctx context.Context, today time.Time, from, to *time.Time) (time.Time, time.Time, error) {
	var fromDate time.Time
	if from != nil {
		fromDate = dateOnly(*from)
	} else {
		fromDate = today.AddDate(0, 0, 1)
	}

	var toDate time.Time
	if to != nil {
		toDate = dateOnly(*to)
	} else {
		defaultRange, err := q.rules.DefaultQueryRangeDays(ctx)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		toDate = fromDate.AddDate(0, 0, defaultRange)
	}
	return fromDate, toDate, nil
}

func (q *availabilityQueriesImpl) validateRange(ctx context.Context, today, fromDate, toDate time.Time) error {
	if fromDate.After(toDate) {
		return errs.ErrInvalidRange
	}

	maxRange, err := q.rules.MaxQueryRangeDays(ctx)
	if err != nil {
		return err
	}
	// Inclusive day count: [from, to] spans (to-from)+1 dates.
	if daysBetween(fromDate, toDate)+1 > maxRange {
		return errs.ErrRangeTooLong
	}

	minAhead, err := q.rules.MinAheadDays(ctx)
	if err != nil {
		return err
	}
	if daysBetween(today, fromDate) < minAhead {
		return errs.ErrInvalidLeadTime
	}
	return nil
}

// mergeDays walks the requested date sequence once, emitting the persisted
// entry when present and a synthesized full-capacity entry otherwise. The
// persisted slice must already be in ascending date order, which makes this
// a single linear merge with no per-date lookups.
func mergeDays(from, to time.Time, persisted []availability.Day, maximum int) []DayAvailabilityView {
	views := make([]DayAvailabilityView, 0, daysBetween(from, to)+1)
	i := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if i < len(persisted) && persisted[i].Date().Equal(d) {
			views = append(views, DayAvailabilityView{
				Date:      persisted[i].Date(),
				Remaining: persisted[i].Remaining(),
				Maximum:   persisted[i].Maximum(),
			})
			i++
			continue
		}
		views = append(views, DayAvailabilityView{Date: d, Remaining: maximum, Maximum: maximum})
	}
	return views
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
