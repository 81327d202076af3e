package adaptor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-core/internal/data/entity"
	"booking-core/internal/dto/request"
	"booking-core/internal/dto/response"
	"booking-core/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) BookTicket(ctx context.Context, req *request.BookTicketRequest) (*response.BookingOutcomeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingOutcomeResponse), args.Error(1)
}

func (m *MockBookingService) GetOutcome(ctx context.Context, requestID string) (*response.BookingOutcomeResponse, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingOutcomeResponse), args.Error(1)
}

func newBookingRouter(service usecase.BookingService) *chi.Mux {
	handler := NewBookingHandler(service, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/api/book-ticket", handler.BookTicket)
	r.Get("/api/bookings/{requestId}", handler.GetOutcome)
	return r
}

func validBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"request_id":   "req-1",
		"user_id":      "user-1",
		"schedule_id":  "sched-1",
		"movie_id":     "movie-1",
		"seat_ids":     []string{"A1", "A2"},
		"total_amount": 150000,
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestBookTicketHandler_NewBookingReturns201(t *testing.T) {
	service := &MockBookingService{}
	service.On("BookTicket", mock.Anything, mock.MatchedBy(func(req *request.BookTicketRequest) bool {
		return req.RequestID == "req-1" && len(req.SeatIDs) == 2
	})).Return(&response.BookingOutcomeResponse{
		RequestID:     "req-1",
		Status:        string(entity.OutcomeStatusSucceeded),
		ReservationID: "res-42",
		CreatedAt:     time.Now(),
	}, nil)

	router := newBookingRouter(service)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/book-ticket", validBody(t)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	service.AssertExpectations(t)
}

func TestBookTicketHandler_ReplayReturns200(t *testing.T) {
	service := &MockBookingService{}
	service.On("BookTicket", mock.Anything, mock.Anything).Return(&response.BookingOutcomeResponse{
		RequestID:     "req-1",
		Status:        string(entity.OutcomeStatusSucceeded),
		ReservationID: "res-42",
		Replayed:      true,
	}, nil)

	router := newBookingRouter(service)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/book-ticket", validBody(t)))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookTicketHandler_FailedSagaReturns200WithReason(t *testing.T) {
	service := &MockBookingService{}
	service.On("BookTicket", mock.Anything, mock.Anything).Return(&response.BookingOutcomeResponse{
		RequestID:     "req-1",
		Status:        string(entity.OutcomeStatusFailed),
		FailureReason: usecase.ReasonSeatUnavailable,
	}, nil)

	router := newBookingRouter(service)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/book-ticket", validBody(t)))

	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data response.BookingOutcomeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, usecase.ReasonSeatUnavailable, envelope.Data.FailureReason)
}

func TestBookTicketHandler_DuplicateInFlightReturns409(t *testing.T) {
	service := &MockBookingService{}
	service.On("BookTicket", mock.Anything, mock.Anything).Return(nil, usecase.ErrDuplicateInFlight)

	router := newBookingRouter(service)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/book-ticket", validBody(t)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBookTicketHandler_ValidationFailure(t *testing.T) {
	service := &MockBookingService{}
	router := newBookingRouter(service)

	body, err := json.Marshal(map[string]any{
		"request_id":   "req-1",
		"user_id":      "user-1",
		"schedule_id":  "sched-1",
		"movie_id":     "movie-1",
		"seat_ids":     []string{},
		"total_amount": 0,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/book-ticket", bytes.NewBuffer(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "BookTicket", mock.Anything, mock.Anything)
}

func TestBookTicketHandler_MalformedJSON(t *testing.T) {
	service := &MockBookingService{}
	router := newBookingRouter(service)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/book-ticket", bytes.NewBufferString("{nope")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOutcomeHandler_Found(t *testing.T) {
	service := &MockBookingService{}
	service.On("GetOutcome", mock.Anything, "req-1").Return(&response.BookingOutcomeResponse{
		RequestID: "req-1",
		Status:    string(entity.OutcomeStatusSucceeded),
	}, nil)

	router := newBookingRouter(service)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bookings/req-1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOutcomeHandler_NotFound(t *testing.T) {
	service := &MockBookingService{}
	service.On("GetOutcome", mock.Anything, "ghost").Return(nil, nil)

	router := newBookingRouter(service)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bookings/ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
