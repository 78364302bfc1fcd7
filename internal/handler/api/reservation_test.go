//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"island-reservations/internal/domain/reservation"
	"island-reservations/internal/handler/api"
	resdto "island-reservations/internal/handler/dto/response"
	"island-reservations/internal/pkg/errs"
	"island-reservations/tests/common/builder"
	"island-reservations/tests/common/httptest"
	"island-reservations/tests/common/testutil"
	commandsmock "island-reservations/tests/mock/commands"
	queriesmock "island-reservations/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ReservationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	mockQueries  *queriesmock.MockReservationQueries
	handler      *api.ReservationHandler
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	s.handler = api.NewReservationHandler(s.mockCommands, s.mockQueries)

	s.router.POST("/reservations", s.handler.CreateReservation)
	s.router.GET("/reservations/:id", s.handler.GetReservation)
	s.router.PUT("/reservations/:id", s.handler.UpdateReservation)
	s.router.DELETE("/reservations/:id", s.handler.CancelReservation)
}

func (s *ReservationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}

// ================================================================================
// TestCreate
// ================================================================================

func (s *ReservationHandlerTestSuite) TestCreate() {
	url := "/reservations"

	reqBody := builder.NewReservationBuilder().BuildCreateRequestDTO()
	returnView := builder.NewReservationBuilder().BuildView()

	s.Run("success: returns 201 Created with Location header", func() {
		s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(returnView, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(returnView.ID, body.ID)
		s.Equal("active", body.Status)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Location": "/api/reservations/" + returnView.ID.String()})
	})

	s.Run("error: 400 Bad Request on binding failures", func() {
		cases := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{name: "missing firstName", mutate: testutil.Field("firstName", nil)},
			{name: "missing lastName", mutate: testutil.Field("lastName", nil)},
			{name: "missing email", mutate: testutil.Field("email", nil)},
			{name: "malformed email", mutate: testutil.Field("email", "not-an-email")},
			{name: "missing start", mutate: testutil.Field("start", nil)},
			{name: "missing end", mutate: testutil.Field("end", nil)},
			{name: "zero numberOfPersons", mutate: testutil.Field("numberOfPersons", 0)},
			{name: "negative numberOfPersons", mutate: testutil.Field("numberOfPersons", -1)},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap)
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})

	s.Run("error: 400 Bad Request on malformed dates", func() {
		requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field("start", "10/09/2026"))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "YYYY-MM-DD")
	})

	s.Run("error: 400 with field detail on business validation failure", func() {
		verr := &reservation.ValidationError{Fields: []reservation.FieldError{
			{Field: "start", Message: "start date must be at least 1 day(s) in the future"},
			{Field: "end", Message: "max duration is 3 day(s)"},
		}}
		s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(nil, verr).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Validation failed")
		httptest.AssertValidationDetail(s.T(), rec, "start", "end")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		cases := []struct {
			name           string
			commandsError  error
			expectedStatus int
		}{
			{name: "no availability", commandsError: errs.ErrNoAvailabilityForDate, expectedStatus: http.StatusConflict},
			{name: "lock timeout", commandsError: errs.ErrLockTimeout, expectedStatus: http.StatusServiceUnavailable},
			{name: "unexpected", commandsError: errs.New("boom"), expectedStatus: http.StatusInternalServerError},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(nil, tc.commandsError).Times(1)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, "")
			})
		}
	})
}

// ================================================================================
// TestGet
// ================================================================================

func (s *ReservationHandlerTestSuite) TestGet() {
	returnView := builder.NewReservationBuilder().BuildView()

	s.Run("success: returns 200 OK with the reservation", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), returnView.ID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+returnView.ID.String(), nil)

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(returnView.ID, body.ID)
		s.Equal(returnView.Email, body.Email)
	})

	s.Run("error: 400 on malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/not-a-uuid", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid reservation ID")
	})

	s.Run("error: 404 when unknown", func() {
		id := uuid.New()
		s.mockQueries.EXPECT().GetByID(gomock.Any(), id).
			Return(nil, errs.ErrReservationNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+id.String(), nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "not found")
	})
}

// ================================================================================
// TestUpdate
// ================================================================================

func (s *ReservationHandlerTestSuite) TestUpdate() {
	returnView := builder.NewReservationBuilder().BuildView()
	reqBody := builder.NewReservationBuilder().BuildUpdateRequestDTO()
	url := "/reservations/" + returnView.ID.String()

	s.Run("success: returns 200 OK with the updated reservation", func() {
		s.mockCommands.EXPECT().Update(gomock.Any(), returnView.ID, gomock.Any()).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqBody)

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(returnView.ID, body.ID)
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		cases := []struct {
			name           string
			commandsError  error
			expectedStatus int
		}{
			{name: "not found", commandsError: errs.ErrReservationNotFound, expectedStatus: http.StatusNotFound},
			{name: "cancelled", commandsError: errs.ErrReservationCancelled, expectedStatus: http.StatusBadRequest},
			{name: "status change", commandsError: errs.ErrStatusChangeNotAllowed, expectedStatus: http.StatusBadRequest},
			{name: "ended", commandsError: errs.ErrReservationEnded, expectedStatus: http.StatusBadRequest},
			{name: "no availability", commandsError: errs.ErrNoAvailabilityForDate, expectedStatus: http.StatusConflict},
			{name: "version conflict", commandsError: errs.ErrVersionConflict, expectedStatus: http.StatusConflict},
			{name: "lock timeout", commandsError: errs.ErrLockTimeout, expectedStatus: http.StatusServiceUnavailable},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Update(gomock.Any(), returnView.ID, gomock.Any()).
					Return(nil, tc.commandsError).Times(1)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqBody)
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, "")
			})
		}
	})
}

// ================================================================================
// TestCancel
// ================================================================================

func (s *ReservationHandlerTestSuite) TestCancel() {
	returnView := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
		b.Status = "cancelled"
		b.Version = 2
	}).BuildView()
	url := "/reservations/" + returnView.ID.String()

	s.Run("success: returns 200 OK with the cancelled reservation", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), returnView.ID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil)

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("cancelled", body.Status)
	})

	s.Run("error: 409 when already cancelled", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), returnView.ID).
			Return(nil, errs.ErrAlreadyCancelled).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "already cancelled")
	})

	s.Run("error: 404 when unknown", func() {
		id := uuid.New()
		s.mockCommands.EXPECT().Cancel(gomock.Any(), id).
			Return(nil, errs.ErrReservationNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/reservations/"+id.String(), nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "not found")
	})
}
