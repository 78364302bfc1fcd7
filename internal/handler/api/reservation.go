package api

import (
	"errors"
	"net/http"

	"island-reservations/internal/domain/reservation"
	reqdto "island-reservations/internal/handler/dto/request"
	resdto "island-reservations/internal/handler/dto/response"
	"island-reservations/internal/handler/httperr"
	"island-reservations/internal/pkg/errs"
	"island-reservations/internal/usecase/commands"
	"island-reservations/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	reservationCommands commands.ReservationCommands
	reservationQueries  queries.ReservationQueries
}

func NewReservationHandler(
	reservationCommands commands.ReservationCommands,
	reservationQueries queries.ReservationQueries,
) *ReservationHandler {
	return &ReservationHandler{
		reservationCommands: reservationCommands,
		reservationQueries:  reservationQueries,
	}
}

// @Summary Create reservation
// @Description Book the campsite for a date range
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /reservations [post]
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req reqdto.CreateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	params, err := req.ToParams()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}

	view, err := h.reservationCommands.Create(c.Request.Context(), params)
	if err != nil {
		h.respondCommandError(c, err)
		return
	}

	c.Header("Location", "/api/reservations/"+view.ID.String())
	c.JSON(http.StatusCreated, resdto.FromReservationView(view))
}

// @Summary Get reservation
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 404 {object} map[string]any
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	view, err := h.reservationQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrReservationNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Update reservation
// @Description Amend dates, party size or guest details. Status changes go through DELETE.
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body reqdto.UpdateReservationRequest true "Updated reservation"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /reservations/{id} [put]
func (h *ReservationHandler) UpdateReservation(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req reqdto.UpdateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	params, err := req.ToParams()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}

	view, err := h.reservationCommands.Update(c.Request.Context(), id, params)
	if err != nil {
		h.respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Cancel reservation
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 404 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /reservations/{id} [delete]
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	view, err := h.reservationCommands.Cancel(c.Request.Context(), id)
	if err != nil {
		h.respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

func (h *ReservationHandler) respondCommandError(c *gin.Context, err error) {
	var verr *reservation.ValidationError

	switch {
	case errors.As(err, &verr):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Validation failed", verr.Fields)
	case errors.Is(err, errs.ErrNoAvailabilityForDate):
		httperr.AbortWithError(c, http.StatusConflict, err, "No availability for the selected dates", nil)
	case errors.Is(err, errs.ErrReservationNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
	case errors.Is(err, errs.ErrAlreadyCancelled):
		httperr.AbortWithError(c, http.StatusConflict, err, "Reservation is already cancelled", nil)
	case errors.Is(err, errs.ErrReservationCancelled):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "A cancelled reservation can't be updated. Please create a new one", nil)
	case errors.Is(err, errs.ErrStatusChangeNotAllowed):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Reservation status can't be changed using this method. Please use DELETE to cancel", nil)
	case errors.Is(err, errs.ErrReservationEnded):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Reservation has already ended", nil)
	case errors.Is(err, errs.ErrVersionConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Reservation was modified by another request. Please retry", nil)
	case errors.Is(err, errs.ErrLockTimeout):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Timed out waiting for availability locks. Please retry", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

func (h *ReservationHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid reservation ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}
