package repository

import (
	"context"

	"island-reservations/internal/domain/reservation"
	"island-reservations/internal/infra"
	"island-reservations/internal/infra/db"
	"island-reservations/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ReservationRepository struct{}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{}
}

const findReservationByIDSQL = `
SELECT id, first_name, last_name, email, start_date, end_date,
       number_of_persons, status, version, created_at, updated_at
FROM reservation
WHERE id = $1`

func (r *ReservationRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	row := dbtx.QueryRow(ctx, findReservationByIDSQL, id)

	var (
		resID              uuid.UUID
		firstName          string
		lastName           string
		email              string
		startDate, endDate pgtype.Date
		numberOfPersons    int32
		status             string
		version            int32
		createdAt          pgtype.Timestamptz
		updatedAt          pgtype.Timestamptz
	)
	err := row.Scan(&resID, &firstName, &lastName, &email, &startDate, &endDate,
		&numberOfPersons, &status, &version, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}

	guest, err := reservation.NewGuest(firstName, lastName, email)
	if err != nil {
		return nil, infra.WrapRepoErr("stored reservation has invalid guest", err)
	}
	dates, err := reservation.NewDateRange(pgconv.DateFromPgtype(startDate), pgconv.DateFromPgtype(endDate))
	if err != nil {
		return nil, infra.WrapRepoErr("stored reservation has invalid dates", err)
	}

	return reservation.ReconstructReservation(
		resID,
		guest,
		dates,
		int(numberOfPersons),
		reservation.Status(status),
		version,
		pgconv.TimeFromPgtype(createdAt),
		pgconv.TimeFromPgtype(updatedAt),
	), nil
}

const createReservationSQL = `
INSERT INTO reservation (id, first_name, last_name, email, start_date, end_date,
                         number_of_persons, status, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`

func (r *ReservationRepository) Create(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation) (uuid.UUID, error) {
	var id uuid.UUID
	err := dbtx.QueryRow(ctx, createReservationSQL,
		res.ID(),
		res.Guest().FirstName(),
		res.Guest().LastName(),
		res.Guest().Email(),
		pgconv.DateToPgtype(res.Dates().Start()),
		pgconv.DateToPgtype(res.Dates().End()),
		int32(res.PartySize()),
		res.Status().String(),
		res.Version(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create reservation", err)
	}
	return id, nil
}

const updateReservationSQL = `
UPDATE reservation
SET first_name = $1, last_name = $2, email = $3,
    start_date = $4, end_date = $5, number_of_persons = $6, status = $7,
    version = version + 1, updated_at = now()
WHERE id = $8 AND version = $9
RETURNING version`

// Update compares-and-swaps on the version column. Zero rows means either
// the reservation vanished or another writer committed first; the two are
// told apart with a follow-up existence check.
func (r *ReservationRepository) Update(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation, expectedVersion int32) (int32, error) {
	var newVersion int32
	err := dbtx.QueryRow(ctx, updateReservationSQL,
		res.Guest().FirstName(),
		res.Guest().LastName(),
		res.Guest().Email(),
		pgconv.DateToPgtype(res.Dates().Start()),
		pgconv.DateToPgtype(res.Dates().End()),
		int32(res.PartySize()),
		res.Status().String(),
		res.ID(),
		expectedVersion,
	).Scan(&newVersion)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, r.classifyMissedUpdate(ctx, dbtx, res.ID())
		}
		return 0, infra.WrapRepoErr("failed to update reservation", err)
	}
	return newVersion, nil
}

// Save persists a terminal-state transition under the same version-conflict
// contract as Update.
func (r *ReservationRepository) Save(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation, expectedVersion int32) (int32, error) {
	return r.Update(ctx, dbtx, res, expectedVersion)
}

func (r *ReservationRepository) classifyMissedUpdate(ctx context.Context, dbtx db.DBTX, id uuid.UUID) error {
	var exists bool
	err := dbtx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reservation WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return infra.WrapRepoErr("failed to check reservation existence", err)
	}
	if !exists {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return infra.WrapRepoErr("reservation version mismatch", nil, infra.KindConflict)
}
