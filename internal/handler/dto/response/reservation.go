package response

import (
	"time"

	"island-reservations/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationResponse struct {
	ID              uuid.UUID `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	Start           string    `json:"start"`
	End             string    `json:"end"`
	NumberOfPersons int       `json:"numberOfPersons"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func FromReservationView(rm *queries.ReservationView) *ReservationResponse {
	return &ReservationResponse{
		ID:              rm.ID,
		FirstName:       rm.FirstName,
		LastName:        rm.LastName,
		Email:           rm.Email,
		Start:           rm.Start.Format(time.DateOnly),
		End:             rm.End.Format(time.DateOnly),
		NumberOfPersons: rm.NumberOfPersons,
		Status:          rm.Status,
		CreatedAt:       rm.CreatedAt,
		UpdatedAt:       rm.UpdatedAt,
	}
}
