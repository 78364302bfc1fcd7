package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidPartySize = errors.New("party size must be positive")
	ErrAlreadyCancelled = errors.New("reservation is already cancelled")
	ErrInvalidStatus    = errors.New("invalid reservation status")
)

type Reservation struct {
	id        uuid.UUID
	guest     Guest
	dates     DateRange
	partySize int
	status    Status
	version   int32
	createdAt time.Time
	updatedAt time.Time
}

func NewReservation(guest Guest, dates DateRange, partySize int) (*Reservation, error) {
	if partySize <= 0 {
		return nil, ErrInvalidPartySize
	}
	return &Reservation{
		id:        uuid.New(),
		guest:     guest,
		dates:     dates,
		partySize: partySize,
		status:    StatusActive,
		version:   1,
	}, nil
}

func ReconstructReservation(
	id uuid.UUID,
	guest Guest,
	dates DateRange,
	partySize int,
	status Status,
	version int32,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:        id,
		guest:     guest,
		dates:     dates,
		partySize: partySize,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (r *Reservation) IsActive() bool {
	return r.status == StatusActive
}

func (r *Reservation) IsCancelled() bool {
	return r.status == StatusCancelled
}

// HasStarted reports whether the stay is underway: the first occupied date is
// today or earlier.
func (r *Reservation) HasStarted(today time.Time) bool {
	return !r.dates.Start().After(today)
}

// HasEnded reports whether the stay is over: today is past the last occupied
// date (end is exclusive, so end itself counts as over only the day after).
func (r *Reservation) HasEnded(today time.Time) bool {
	return today.After(r.dates.End())
}

// Cancel is the only legal status transition. It is terminal.
func (r *Reservation) Cancel() error {
	if r.status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	r.status = StatusCancelled
	return nil
}

// Amend replaces the mutable fields of an active reservation. Status is
// untouched: transitions go through Cancel only.
func (r *Reservation) Amend(guest Guest, dates DateRange, partySize int) error {
	if partySize <= 0 {
		return ErrInvalidPartySize
	}
	r.guest = guest
	r.dates = dates
	r.partySize = partySize
	return nil
}

func (r *Reservation) ID() uuid.UUID        { return r.id }
func (r *Reservation) Guest() Guest         { return r.guest }
func (r *Reservation) Dates() DateRange     { return r.dates }
func (r *Reservation) PartySize() int       { return r.partySize }
func (r *Reservation) Status() Status       { return r.status }
func (r *Reservation) Version() int32       { return r.version }
func (r *Reservation) CreatedAt() time.Time { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time { return r.updatedAt }
