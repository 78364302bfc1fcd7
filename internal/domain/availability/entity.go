package availability

import (
	"errors"
	"time"
)

var (
	ErrCapacityExceeded = errors.New("capacity exceeded for date")
	ErrInvariantBroken  = errors.New("remaining must stay within [0, maximum]")
)

// Day is one ledger entry: remaining capacity for a single calendar date.
// A date with no persisted entry implicitly has remaining == maximum ==
// the configured daily capacity; entries are materialized lazily the first
// time a reservation touches the date and never deleted afterwards.
type Day struct {
	date      time.Time
	remaining int
	maximum   int
}

func NewDay(date time.Time, remaining, maximum int) (Day, error) {
	if maximum <= 0 || remaining < 0 || remaining > maximum {
		return Day{}, ErrInvariantBroken
	}
	return Day{date: date, remaining: remaining, maximum: maximum}, nil
}

// FreshDay is the implicit entry for a date nothing has booked yet.
func FreshDay(date time.Time, maximum int) Day {
	return Day{date: date, remaining: maximum, maximum: maximum}
}

func (d Day) Date() time.Time { return d.date }
func (d Day) Remaining() int  { return d.remaining }
func (d Day) Maximum() int    { return d.maximum }

// Apply adds a signed delta to the remaining capacity. Negative deltas
// consume capacity (reserving), positive deltas return it (releasing).
func (d Day) Apply(delta int) (Day, error) {
	remaining := d.remaining + delta
	if remaining < 0 {
		return Day{}, ErrCapacityExceeded
	}
	if remaining > d.maximum {
		remaining = d.maximum
	}
	return Day{date: d.date, remaining: remaining, maximum: d.maximum}, nil
}
