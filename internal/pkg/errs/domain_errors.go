package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Availability query errors
	ErrInvalidRange    = errors.New("invalid date range")
	ErrInvalidLeadTime = errors.New("range must start after today")
	ErrRangeTooLong    = errors.New("date range too long")

	// Reservation errors
	ErrReservationNotFound    = errors.New("reservation not found")
	ErrNoAvailabilityForDate  = errors.New("no availability for one or more dates")
	ErrReservationCancelled   = errors.New("reservation is cancelled")
	ErrAlreadyCancelled       = errors.New("reservation is already cancelled")
	ErrStatusChangeNotAllowed = errors.New("status change not allowed")
	ErrReservationEnded       = errors.New("reservation has already ended")
	ErrVersionConflict        = errors.New("reservation was modified concurrently")

	// Locking errors
	ErrLockTimeout = errors.New("timed out waiting for date locks")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
