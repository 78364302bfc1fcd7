package reservation

import (
	"fmt"
	"strings"
	"time"
)

// Limits are the configured business rules that gate ledger mutation.
// They are loaded from the configuration table, not from the environment.
type Limits struct {
	MinAheadDays int
	MaxAheadDays int
	MaxStayDays  int
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violated rule so a client can fix all
// problems in one round trip, rather than failing on the first one.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateDatesForCreate checks the date and duration rules for a new
// reservation against today's date. All violations are accumulated.
func ValidateDatesForCreate(limits Limits, today, start, end time.Time) error {
	verr := &ValidationError{}
	start = truncateToDate(start)
	end = truncateToDate(end)

	aheadDays := daysBetween(today, start)
	if aheadDays < limits.MinAheadDays {
		verr.add("start", fmt.Sprintf("start date must be at least %d day(s) in the future", limits.MinAheadDays))
	}
	if aheadDays > limits.MaxAheadDays {
		verr.add("start", fmt.Sprintf("reservations can't be created more than %d day(s) in advance", limits.MaxAheadDays))
	}
	if !end.After(start) {
		verr.add("end", "end date must be after start date")
	} else if daysBetween(start, end) > limits.MaxStayDays {
		verr.add("end", fmt.Sprintf("max duration is %d day(s)", limits.MaxStayDays))
	}
	return verr.orNil()
}

// ValidateUpdate checks what may change given the stay's progress. Once the
// stay has started, only the end date and guest details may be amended.
func ValidateUpdate(limits Limits, today time.Time, existing *Reservation, newDates DateRange, newPartySize int) error {
	verr := &ValidationError{}

	if existing.HasStarted(today) {
		if existing.PartySize() != newPartySize {
			verr.add("numberOfPersons", "numberOfPersons can't be updated for a reservation that already started")
		}
		if !existing.Dates().Start().Equal(newDates.Start()) {
			verr.add("start", "start date can't be updated for a reservation that already started")
		}
		return verr.orNil()
	}

	aheadDays := daysBetween(today, newDates.Start())
	if aheadDays < limits.MinAheadDays {
		verr.add("start", fmt.Sprintf("start date must be at least %d day(s) in the future", limits.MinAheadDays))
	}
	if aheadDays > limits.MaxAheadDays {
		verr.add("start", fmt.Sprintf("reservations can't be created more than %d day(s) in advance", limits.MaxAheadDays))
	}
	if newDates.Nights() > limits.MaxStayDays {
		verr.add("end", fmt.Sprintf("max duration is %d day(s)", limits.MaxStayDays))
	}
	if newPartySize <= 0 {
		verr.add("numberOfPersons", "numberOfPersons must be positive")
	}
	return verr.orNil()
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
