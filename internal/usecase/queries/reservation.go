package queries

import (
	"context"
	"time"

	"island-reservations/internal/domain/reservation"
	"island-reservations/internal/infra"
	"island-reservations/internal/infra/db"
	"island-reservations/internal/pkg/errs"
	"island-reservations/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReservationView struct {
	ID              uuid.UUID
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

type ReservationQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
}

type reservationQueriesImpl struct {
	uow             shared.UnitOfWork
	reservationRepo shared.ReservationRepository
}

func NewReservationQueries(uow shared.UnitOfWork, reservationRepo shared.ReservationRepository) ReservationQueries {
	return &reservationQueriesImpl{
		uow:             uow,
		reservationRepo: reservationRepo,
	}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	var view *ReservationView
	err := q.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
		res, err := q.reservationRepo.FindByID(ctx, dbtx, id)
		if err != nil {
			return err
		}
		view = ViewFromEntity(res)
		return nil
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrReservationNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}

func ViewFromEntity(res *reservation.Reservation) *ReservationView {
	return &ReservationView{
		ID:              res.ID(),
		FirstName:       res.Guest().FirstName(),
		LastName:        res.Guest().LastName(),
		Email:           res.Guest().Email(),
		Start:           res.Dates().Start(),
		End:             res.Dates().End(),
		NumberOfPersons: res.PartySize(),
		Status:          res.Status().String(),
		Version:         res.Version(),
		CreatedAt:       res.CreatedAt(),
		UpdatedAt:       res.UpdatedAt(),
	}
}
