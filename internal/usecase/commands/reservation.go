package commands

import (
	"context"
	"errors"
	"time"

	"island-reservations/internal/domain/availability"
	"island-reservations/internal/domain/reservation"
	"island-reservations/internal/infra"
	"island-reservations/internal/pkg/clock"
	"island-reservations/internal/pkg/errs"
	"island-reservations/internal/usecase/queries"
	"island-reservations/internal/usecase/rules"
	"island-reservations/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateReservationParams struct {
	FirstName       string
	LastName        string
	Email           string
	Start           time.Time
	End             time.Time
	NumberOfPersons int
}

type UpdateReservationParams struct {
	FirstName       string
	LastName        string
	Email           string
	Start           time.Time
	End             time.Time
	NumberOfPersons int
	Status          string
}

type ReservationCommands interface {
	Create(ctx context.Context, params CreateReservationParams) (*queries.ReservationView, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateReservationParams) (*queries.ReservationView, error)
	Cancel(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error)
}

type reservationCommandsImpl struct {
	uow                shared.UnitOfWork
	rules              rules.Provider
	reservationQueries queries.ReservationQueries
	clock              clock.Clock
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	rulesProvider rules.Provider,
	reservationQueries queries.ReservationQueries,
	clk clock.Clock,
) ReservationCommands {
	return &reservationCommandsImpl{
		uow:                uow,
		rules:              rulesProvider,
		reservationQueries: reservationQueries,
		clock:              clk,
	}
}

// Create books a new reservation. The date locks, the ledger deduction and
// the reservation insert happen inside one transaction: either all of it
// commits or none of it does.
func (c *reservationCommandsImpl) Create(ctx context.Context, params CreateReservationParams) (*queries.ReservationView, error) {
	limits, err := c.rules.ReservationLimits(ctx)
	if err != nil {
		return nil, err
	}
	today := clock.Today(c.clock)

	guest, dates, err := validateCandidate(limits, today, params.FirstName, params.LastName, params.Email,
		params.Start, params.End, params.NumberOfPersons)
	if err != nil {
		return nil, err
	}

	maximum, err := c.rules.MaxDailyCapacity(ctx)
	if err != nil {
		return nil, err
	}

	res, err := reservation.NewReservation(guest, dates, params.NumberOfPersons)
	if err != nil {
		return nil, err
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		lockDates := dates.Dates()
		if lockErr := tx.DateLocks().Acquire(ctx, tx.DB(), lockDates); lockErr != nil {
			return lockErr
		}
		if applyErr := applyLedgerDelta(ctx, tx, lockDates, -res.PartySize(), maximum); applyErr != nil {
			return applyErr
		}
		_, createErr := tx.Reservations().Create(ctx, tx.DB(), res)
		return createErr
	})
	if err != nil {
		return nil, mapInfraErr(err)
	}

	return c.readBack(ctx, res.ID())
}

// Update amends an existing reservation. When the date range changes, the
// union of old and new dates is locked up front so two opposite-direction
// updates cannot deadlock, then the old allocation is released and the new
// one claimed inside the same transaction; a failed claim rolls back the
// release along with everything else.
func (c *reservationCommandsImpl) Update(ctx context.Context, id uuid.UUID, params UpdateReservationParams) (*queries.ReservationView, error) {
	limits, err := c.rules.ReservationLimits(ctx)
	if err != nil {
		return nil, err
	}
	maximum, err := c.rules.MaxDailyCapacity(ctx)
	if err != nil {
		return nil, err
	}
	today := clock.Today(c.clock)

	guest, err := validateGuest(params.FirstName, params.LastName, params.Email)
	if err != nil {
		return nil, err
	}
	newDates, err := reservation.NewDateRange(params.Start, params.End)
	if err != nil {
		verr := &reservation.ValidationError{Fields: []reservation.FieldError{
			{Field: "end", Message: "end date must be after start date"},
		}}
		if params.NumberOfPersons <= 0 {
			verr.Fields = append(verr.Fields, reservation.FieldError{
				Field: "numberOfPersons", Message: "numberOfPersons must be positive",
			})
		}
		return nil, verr
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		existing, findErr := tx.Reservations().FindByID(ctx, tx.DB(), id)
		if findErr != nil {
			return findErr
		}

		if stateErr := validateUpdateState(existing, params.Status, today); stateErr != nil {
			return stateErr
		}
		if ruleErr := reservation.ValidateUpdate(limits, today, existing, newDates, params.NumberOfPersons); ruleErr != nil {
			return ruleErr
		}

		oldDates := existing.Dates()
		oldPartySize := existing.PartySize()
		datesChanged := !oldDates.Equal(newDates)
		numberChanged := oldPartySize != params.NumberOfPersons

		switch {
		case datesChanged:
			// Union lock covers both ranges in one ascending acquisition.
			union := oldDates.UnionDates(newDates)
			if lockErr := tx.DateLocks().Acquire(ctx, tx.DB(), union); lockErr != nil {
				return lockErr
			}
			if applyErr := applyLedgerDelta(ctx, tx, oldDates.Dates(), +oldPartySize, maximum); applyErr != nil {
				return applyErr
			}
			if applyErr := applyLedgerDelta(ctx, tx, newDates.Dates(), -params.NumberOfPersons, maximum); applyErr != nil {
				return applyErr
			}
		case numberChanged:
			lockDates := oldDates.Dates()
			if lockErr := tx.DateLocks().Acquire(ctx, tx.DB(), lockDates); lockErr != nil {
				return lockErr
			}
			if applyErr := applyLedgerDelta(ctx, tx, lockDates, oldPartySize-params.NumberOfPersons, maximum); applyErr != nil {
				return applyErr
			}
		default:
			// Guest-only change: no ledger touch, no date locks.
		}

		if amendErr := existing.Amend(guest, newDates, params.NumberOfPersons); amendErr != nil {
			return amendErr
		}
		_, updateErr := tx.Reservations().Update(ctx, tx.DB(), existing, existing.Version())
		return updateErr
	})
	if err != nil {
		return nil, mapInfraErr(err)
	}

	return c.readBack(ctx, id)
}

// Cancel returns the reservation's capacity to the ledger and marks it
// cancelled. The release cannot fail on capacity grounds.
func (c *reservationCommandsImpl) Cancel(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	maximum, err := c.rules.MaxDailyCapacity(ctx)
	if err != nil {
		return nil, err
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		existing, findErr := tx.Reservations().FindByID(ctx, tx.DB(), id)
		if findErr != nil {
			return findErr
		}
		if cancelErr := existing.Cancel(); cancelErr != nil {
			return errs.ErrAlreadyCancelled
		}

		lockDates := existing.Dates().Dates()
		if lockErr := tx.DateLocks().Acquire(ctx, tx.DB(), lockDates); lockErr != nil {
			return lockErr
		}
		if applyErr := applyLedgerDelta(ctx, tx, lockDates, +existing.PartySize(), maximum); applyErr != nil {
			return applyErr
		}

		_, saveErr := tx.Reservations().Save(ctx, tx.DB(), existing, existing.Version())
		return saveErr
	})
	if err != nil {
		return nil, mapInfraErr(err)
	}

	return c.readBack(ctx, id)
}

// applyLedgerDelta loads the ledger entries for the given dates, defaults
// absent dates to a fresh full-capacity entry, applies the delta to every
// date and persists the batch. Nothing is written when any date would go
// negative.
func applyLedgerDelta(ctx context.Context, tx shared.Tx, dates []time.Time, delta, maximum int) error {
	persisted, err := tx.Ledger().FindByDates(ctx, tx.DB(), dates)
	if err != nil {
		return err
	}

	byDate := make(map[time.Time]availability.Day, len(persisted))
	for _, day := range persisted {
		byDate[day.Date()] = day
	}

	updated := make([]availability.Day, 0, len(dates))
	for _, date := range dates {
		day, ok := byDate[date]
		if !ok {
			day = availability.FreshDay(date, maximum)
		}
		applied, applyErr := day.Apply(delta)
		if applyErr != nil {
			return applyErr
		}
		updated = append(updated, applied)
	}

	return tx.Ledger().Upsert(ctx, tx.DB(), updated)
}

func validateUpdateState(existing *reservation.Reservation, proposedStatus string, today time.Time) error {
	if existing.IsCancelled() {
		return errs.ErrReservationCancelled
	}
	if proposedStatus != "" && proposedStatus != existing.Status().String() {
		return errs.ErrStatusChangeNotAllowed
	}
	if existing.HasEnded(today) {
		return errs.ErrReservationEnded
	}
	return nil
}

func validateCandidate(limits reservation.Limits, today time.Time, firstName, lastName, email string,
	start, end time.Time, numberOfPersons int,
) (reservation.Guest, reservation.DateRange, error) {
	verr := &reservation.ValidationError{}

	guest, guestErr := validateGuest(firstName, lastName, email)
	if guestErr != nil {
		var gv *reservation.ValidationError
		if errors.As(guestErr, &gv) {
			verr.Fields = append(verr.Fields, gv.Fields...)
		} else {
			return reservation.Guest{}, reservation.DateRange{}, guestErr
		}
	}

	if dateErr := reservation.ValidateDatesForCreate(limits, today, start, end); dateErr != nil {
		var dv *reservation.ValidationError
		if errors.As(dateErr, &dv) {
			verr.Fields = append(verr.Fields, dv.Fields...)
		} else {
			return reservation.Guest{}, reservation.DateRange{}, dateErr
		}
	}
	if numberOfPersons <= 0 {
		verr.Fields = append(verr.Fields, reservation.FieldError{
			Field: "numberOfPersons", Message: "numberOfPersons must be positive",
		})
	}
	if len(verr.Fields) > 0 {
		return reservation.Guest{}, reservation.DateRange{}, verr
	}

	dates, rangeErr := reservation.NewDateRange(start, end)
	if rangeErr != nil {
		return reservation.Guest{}, reservation.DateRange{}, rangeErr
	}
	return guest, dates, nil
}

func validateGuest(firstName, lastName, email string) (reservation.Guest, error) {
	verr := &reservation.ValidationError{}
	if firstName == "" {
		verr.Fields = append(verr.Fields, reservation.FieldError{Field: "firstName", Message: "firstName is required"})
	}
	if lastName == "" {
		verr.Fields = append(verr.Fields, reservation.FieldError{Field: "lastName", Message: "lastName is required"})
	}
	if email == "" {
		verr.Fields = append(verr.Fields, reservation.FieldError{Field: "email", Message: "email is required"})
	}
	if len(verr.Fields) > 0 {
		return reservation.Guest{}, verr
	}
	return reservation.NewGuest(firstName, lastName, email)
}

// Read-after-write: return the committed state from the read path.
func (c *reservationCommandsImpl) readBack(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	view, err := c.reservationQueries.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}

// mapInfraErr translates repository error kinds into the caller-visible
// sentinels; everything else passes through untouched.
func mapInfraErr(err error) error {
	switch {
	case errors.Is(err, availability.ErrCapacityExceeded):
		return errs.ErrNoAvailabilityForDate
	case infra.IsKind(err, infra.KindNotFound):
		return errs.ErrReservationNotFound
	case infra.IsKind(err, infra.KindConflict):
		return errs.ErrVersionConflict
	case infra.IsKind(err, infra.KindLockTimeout):
		return errs.ErrLockTimeout
	default:
		return err
	}
}
