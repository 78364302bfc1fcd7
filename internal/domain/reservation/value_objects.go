package reservation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateRange is a half-open range of calendar dates [start, end).
// A one-night stay starting on d is [d, d+1).
type DateRange struct {
	start time.Time
	end   time.Time
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	start = truncateToDate(start)
	end = truncateToDate(end)
	if !end.After(start) {
		return DateRange{}, errors.New("end date must be after start date")
	}
	return DateRange{start: start, end: end}, nil
}

func (dr DateRange) Start() time.Time {
	return dr.start
}

func (dr DateRange) End() time.Time {
	return dr.end
}

// Nights is the number of occupied dates, i.e. the length of [start, end).
func (dr DateRange) Nights() int {
	return int(dr.end.Sub(dr.start).Hours() / 24)
}

// Dates returns every occupied date in ascending order.
func (dr DateRange) Dates() []time.Time {
	dates := make([]time.Time, 0, dr.Nights())
	for d := dr.start; d.Before(dr.end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func (dr DateRange) Equal(other DateRange) bool {
	return dr.start.Equal(other.start) && dr.end.Equal(other.end)
}

func (dr DateRange) Contains(date time.Time) bool {
	date = truncateToDate(date)
	return !date.Before(dr.start) && date.Before(dr.end)
}

// UnionDates merges the occupied dates of both ranges, deduplicated and in
// ascending order. Lock acquisition over an update's old and new ranges uses
// this so that overlapping operations always lock in the same total order.
func (dr DateRange) UnionDates(other DateRange) []time.Time {
	seen := make(map[time.Time]struct{})
	var union []time.Time
	for _, d := range append(dr.Dates(), other.Dates()...) {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		union = append(union, d)
	}
	sort.Slice(union, func(i, j int) bool { return union[i].Before(union[j]) })
	return union
}

func (dr DateRange) String() string {
	return fmt.Sprintf("[%s,%s)", dr.start.Format(time.DateOnly), dr.end.Format(time.DateOnly))
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Guest identifies who the reservation is for. The core only requires the
// fields to be present; format validation belongs to the HTTP layer.
type Guest struct {
	firstName string
	lastName  string
	email     string
}

func NewGuest(firstName, lastName, email string) (Guest, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)
	if firstName == "" || lastName == "" || email == "" {
		return Guest{}, errors.New("guest name and email must not be empty")
	}
	return Guest{firstName: firstName, lastName: lastName, email: email}, nil
}

func (g Guest) FirstName() string { return g.firstName }
func (g Guest) LastName() string  { return g.lastName }
func (g Guest) Email() string     { return g.email }
