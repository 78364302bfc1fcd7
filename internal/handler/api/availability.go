package api

import (
	"errors"
	"net/http"
	"time"

	resdto "island-reservations/internal/handler/dto/response"
	"island-reservations/internal/handler/httperr"
	"island-reservations/internal/pkg/errs"
	"island-reservations/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	availabilityQueries queries.AvailabilityQueries
}

func NewAvailabilityHandler(availabilityQueries queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityQueries: availabilityQueries,
	}
}

// @Summary Get availability
// @Description Get remaining capacity per date for a range. Both bounds are optional; the default window starts tomorrow.
// @Tags availability
// @Produce json
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end, inclusive (YYYY-MM-DD)"
// @Success 200 {array} resdto.DayAvailabilityResponse
// @Failure 400 {object} map[string]any
// @Router /availability [get]
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	from, ok := h.parseDateParam(c, "from")
	if !ok {
		return
	}
	to, ok := h.parseDateParam(c, "to")
	if !ok {
		return
	}

	views, err := h.availabilityQueries.GetAvailability(c.Request.Context(), from, to)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidRange):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "toDate must be after fromDate", nil)
		case errors.Is(err, errs.ErrRangeTooLong):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Date range is too long", nil)
		case errors.Is(err, errs.ErrInvalidLeadTime):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Can only check availability starting tomorrow", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromDayAvailabilityViews(views))
}

func (h *AvailabilityHandler) parseDateParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, name+" must be a date in YYYY-MM-DD format", nil)
		return nil, false
	}
	return &parsed, true
}
