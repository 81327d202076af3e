package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"booking-core/internal/data/entity"
	"booking-core/internal/dto/request"
	"booking-core/internal/usecase"
	"booking-core/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// BookTicket handles POST /api/book-ticket
func (h *BookingHandler) BookTicket(w http.ResponseWriter, r *http.Request) {
	var req request.BookTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	outcome, err := h.service.BookTicket(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrDuplicateInFlight) {
			h.log.Warn("Duplicate booking request still in flight",
				zap.String("request_id", req.RequestID))
			utils.ResponseConflict(w, "Booking request already in progress", nil)
			return
		}
		h.log.Error("Failed to process booking",
			zap.Error(err),
			zap.String("request_id", req.RequestID))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	switch {
	case outcome.Replayed:
		utils.ResponseSuccess(w, "success", outcome)
	case outcome.Status == string(entity.OutcomeStatusSucceeded):
		utils.ResponseCreated(w, "success", outcome)
	default:
		// A failed saga is still a completed request; the outcome body
		// carries the reason.
		utils.ResponseSuccess(w, "booking failed", outcome)
	}
}

// GetOutcome handles GET /api/bookings/{requestId}
func (h *BookingHandler) GetOutcome(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestId")
	if requestID == "" {
		utils.ResponseBadRequest(w, "Request ID is required", nil)
		return
	}

	outcome, err := h.service.GetOutcome(r.Context(), requestID)
	if err != nil {
		h.log.Error("Failed to load booking outcome",
			zap.Error(err),
			zap.String("request_id", requestID))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}
	if outcome == nil {
		utils.ResponseNotFound(w, "Booking request not found")
		return
	}

	utils.ResponseSuccess(w, "success", outcome)
}
