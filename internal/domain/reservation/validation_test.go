//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"island-reservations/internal/domain/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLimits = reservation.Limits{
	MinAheadDays: 1,
	MaxAheadDays: 30,
	MaxStayDays:  3,
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr *reservation.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	return fields
}

func TestValidateDatesForCreate(t *testing.T) {
	today := date(2026, 9, 1)

	t.Run("valid window passes", func(t *testing.T) {
		err := reservation.ValidateDatesForCreate(testLimits, today, date(2026, 9, 2), date(2026, 9, 5))
		assert.NoError(t, err)
	})

	t.Run("boundaries are inclusive", func(t *testing.T) {
		// Earliest allowed start: tomorrow. Latest: 30 days out. Longest stay: 3 nights.
		assert.NoError(t, reservation.ValidateDatesForCreate(testLimits, today, date(2026, 9, 2), date(2026, 9, 3)))
		assert.NoError(t, reservation.ValidateDatesForCreate(testLimits, today, date(2026, 10, 1), date(2026, 10, 2)))
		assert.NoError(t, reservation.ValidateDatesForCreate(testLimits, today, date(2026, 9, 10), date(2026, 9, 13)))
	})

	t.Run("start today violates minimum lead time", func(t *testing.T) {
		err := reservation.ValidateDatesForCreate(testLimits, today, today, date(2026, 9, 2))
		assert.Equal(t, []string{"start"}, fieldsOf(t, err))
	})

	t.Run("start past the booking window", func(t *testing.T) {
		err := reservation.ValidateDatesForCreate(testLimits, today, date(2026, 10, 2), date(2026, 10, 3))
		assert.Equal(t, []string{"start"}, fieldsOf(t, err))
	})

	t.Run("stay longer than the maximum", func(t *testing.T) {
		err := reservation.ValidateDatesForCreate(testLimits, today, date(2026, 9, 10), date(2026, 9, 14))
		assert.Equal(t, []string{"end"}, fieldsOf(t, err))
	})

	t.Run("end not after start", func(t *testing.T) {
		err := reservation.ValidateDatesForCreate(testLimits, today, date(2026, 9, 10), date(2026, 9, 10))
		assert.Equal(t, []string{"end"}, fieldsOf(t, err))
	})

	t.Run("all violations are accumulated", func(t *testing.T) {
		// In the past and inverted: both the lead-time and the end rule fire.
		err := reservation.ValidateDatesForCreate(testLimits, today, date(2026, 8, 20), date(2026, 8, 19))
		assert.Equal(t, []string{"start", "end"}, fieldsOf(t, err))
	})
}

func TestValidateUpdate(t *testing.T) {
	today := date(2026, 9, 10)

	build := func(t *testing.T, start, end time.Time, partySize int) *reservation.Reservation {
		t.Helper()
		guest, err := reservation.NewGuest("Taro", "Yamada", "taro@example.com")
		require.NoError(t, err)
		dates, err := reservation.NewDateRange(start, end)
		require.NoError(t, err)
		res, err := reservation.NewReservation(guest, dates, partySize)
		require.NoError(t, err)
		return res
	}

	t.Run("future reservation may move freely inside the rules", func(t *testing.T) {
		existing := build(t, date(2026, 9, 15), date(2026, 9, 17), 2)
		newDates, err := reservation.NewDateRange(date(2026, 9, 20), date(2026, 9, 22))
		require.NoError(t, err)

		assert.NoError(t, reservation.ValidateUpdate(testLimits, today, existing, newDates, 4))
	})

	t.Run("future reservation still honors lead time and duration", func(t *testing.T) {
		existing := build(t, date(2026, 9, 15), date(2026, 9, 17), 2)
		newDates, err := reservation.NewDateRange(date(2026, 9, 10), date(2026, 9, 16))
		require.NoError(t, err)

		err = reservation.ValidateUpdate(testLimits, today, existing, newDates, 0)
		assert.ElementsMatch(t, []string{"start", "end", "numberOfPersons"}, fieldsOf(t, err))
	})

	t.Run("future reservation can't move past the booking horizon", func(t *testing.T) {
		existing := build(t, date(2026, 9, 15), date(2026, 9, 17), 2)
		newDates, err := reservation.NewDateRange(date(2026, 10, 15), date(2026, 10, 17))
		require.NoError(t, err)

		err = reservation.ValidateUpdate(testLimits, today, existing, newDates, 2)
		assert.ElementsMatch(t, []string{"start"}, fieldsOf(t, err))
	})

	t.Run("started stay may only extend the end date", func(t *testing.T) {
		existing := build(t, date(2026, 9, 9), date(2026, 9, 12), 2)
		extended, err := reservation.NewDateRange(date(2026, 9, 9), date(2026, 9, 13))
		require.NoError(t, err)

		assert.NoError(t, reservation.ValidateUpdate(testLimits, today, existing, extended, 2))
	})

	t.Run("started stay rejects start and party size changes", func(t *testing.T) {
		existing := build(t, date(2026, 9, 9), date(2026, 9, 12), 2)
		moved, err := reservation.NewDateRange(date(2026, 9, 11), date(2026, 9, 13))
		require.NoError(t, err)

		err = reservation.ValidateUpdate(testLimits, today, existing, moved, 3)
		assert.ElementsMatch(t, []string{"start", "numberOfPersons"}, fieldsOf(t, err))
	})
}
