package response

import (
	"time"

	"island-reservations/internal/usecase/queries"
)

type DayAvailabilityResponse struct {
	Date      string `json:"date"`
	Remaining int    `json:"remaining"`
	Maximum   int    `json:"maximum"`
}

func FromDayAvailabilityViews(views []queries.DayAvailabilityView) []DayAvailabilityResponse {
	out := make([]DayAvailabilityResponse, len(views))
	for i, v := range views {
		out[i] = DayAvailabilityResponse{
			Date:      v.Date.Format(time.DateOnly),
			Remaining: v.Remaining,
			Maximum:   v.Maximum,
		}
	}
	return out
}
