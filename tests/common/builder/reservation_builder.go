//go:build unit || e2e

package builder

import (
	"time"

	domres "island-reservations/internal/domain/reservation"
	reqdto "island-reservations/internal/handler/dto/request"
	"island-reservations/internal/usecase/commands"
	"island-reservations/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationBuilder struct {
	FirstName       string
	LastName        string
	Email           string
	Start           time.Time
	End             time.Time
	NumberOfPersons int
	Status          string
	Version         int32
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewReservationBuilder defaults to a three-night stay starting a week from
// now, well inside the default booking window.
func NewReservationBuilder() *ReservationBuilder {
	now := time.Now().UTC()
	start := now.Truncate(24 * time.Hour).AddDate(0, 0, 7)
	return &ReservationBuilder{
		FirstName:       "Taro",
		LastName:        "Yamada",
		Email:           "taro@example.com",
		Start:           start,
		End:             start.AddDate(0, 0, 3),
		NumberOfPersons: 2,
		Status:          "active",
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) WithStay(start time.Time, nights int) *ReservationBuilder {
	b.Start = start
	b.End = start.AddDate(0, 0, nights)
	return b
}

func (b *ReservationBuilder) WithPartySize(n int) *ReservationBuilder {
	b.NumberOfPersons = n
	return b
}

func (b *ReservationBuilder) BuildDomain() (*domres.Reservation, error) {
	guest, err := domres.NewGuest(b.FirstName, b.LastName, b.Email)
	if err != nil {
		return nil, err
	}
	dates, err := domres.NewDateRange(b.Start, b.End)
	if err != nil {
		return nil, err
	}
	return domres.NewReservation(guest, dates, b.NumberOfPersons)
}

func (b *ReservationBuilder) BuildCreateParams() commands.CreateReservationParams {
	return commands.CreateReservationParams{
		FirstName:       b.FirstName,
		LastName:        b.LastName,
		Email:           b.Email,
		Start:           b.Start,
		End:             b.End,
		NumberOfPersons: b.NumberOfPersons,
	}
}

func (b *ReservationBuilder) BuildUpdateParams() commands.UpdateReservationParams {
	return commands.UpdateReservationParams{
		FirstName:       b.FirstName,
		LastName:        b.LastName,
		Email:           b.Email,
		Start:           b.Start,
		End:             b.End,
		NumberOfPersons: b.NumberOfPersons,
		Status:          "",
	}
}

func (b *ReservationBuilder) BuildCreateRequestDTO() reqdto.CreateReservationRequest {
	return reqdto.CreateReservationRequest{
		FirstName:       b.FirstName,
		LastName:        b.LastName,
		Email:           b.Email,
		Start:           b.Start.Format(time.DateOnly),
		End:             b.End.Format(time.DateOnly),
		NumberOfPersons: b.NumberOfPersons,
	}
}

func (b *ReservationBuilder) BuildUpdateRequestDTO() reqdto.UpdateReservationRequest {
	return reqdto.UpdateReservationRequest{
		FirstName:       b.FirstName,
		LastName:        b.LastName,
		Email:           b.Email,
		Start:           b.Start.Format(time.DateOnly),
		End:             b.End.Format(time.DateOnly),
		NumberOfPersons: b.NumberOfPersons,
		Status:          b.Status,
	}
}

func (b *ReservationBuilder) BuildView() *queries.ReservationView {
	return &queries.ReservationView{
		ID:              uuid.New(),
		FirstName:       b.FirstName,
		LastName:        b.LastName,
		Email:           b.Email,
		Start:           b.Start,
		End:             b.End,
		NumberOfPersons: b.NumberOfPersons,
		Status:          b.Status,
		Version:         b.Version,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
