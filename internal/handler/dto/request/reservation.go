package request

import (
	"errors"
	"time"

	"island-reservations/internal/usecase/commands"
)

// Dates travel as plain calendar dates ("2006-01-02"); the core works on
// whole days only.
const dateLayout = time.DateOnly

type CreateReservationRequest struct {
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Start           string `json:"start" binding:"required"`
	End             string `json:"end" binding:"required"`
	NumberOfPersons int    `json:"numberOfPersons" binding:"required,gt=0"`
}

func (r CreateReservationRequest) ToParams() (commands.CreateReservationParams, error) {
	start, end, err := parseDates(r.Start, r.End)
	if err != nil {
		return commands.CreateReservationParams{}, err
	}
	return commands.CreateReservationParams{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Start:           start,
		End:             end,
		NumberOfPersons: r.NumberOfPersons,
	}, nil
}

type UpdateReservationRequest struct {
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Start           string `json:"start" binding:"required"`
	End             string `json:"end" binding:"required"`
	NumberOfPersons int    `json:"numberOfPersons" binding:"required,gt=0"`
	Status          string `json:"status,omitempty"`
}

func (r UpdateReservationRequest) ToParams() (commands.UpdateReservationParams, error) {
	start, end, err := parseDates(r.Start, r.End)
	if err != nil {
		return commands.UpdateReservationParams{}, err
	}
	return commands.UpdateReservationParams{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Start:           start,
		End:             end,
		NumberOfPersons: r.NumberOfPersons,
		Status:          r.Status,
	}, nil
}

func parseDates(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start must be a date in YYYY-MM-DD format")
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end must be a date in YYYY-MM-DD format")
	}
	return start, end, nil
}
