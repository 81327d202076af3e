package adaptor

import (
	"net/http"

	"booking-core/internal/dto/response"
	"booking-core/internal/usecase"
	"booking-core/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SeatHandler struct {
	service usecase.InventoryService
	log     *zap.Logger
}

func NewSeatHandler(service usecase.InventoryService, log *zap.Logger) *SeatHandler {
	return &SeatHandler{
		service: service,
		log:     log.With(zap.String("handler", "seat")),
	}
}

// ListRoomSeats handles GET /api/rooms/{roomId}/seats
func (h *SeatHandler) ListRoomSeats(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		utils.ResponseBadRequest(w, "Room ID is required", nil)
		return
	}

	seats, err := h.service.ListRoomSeats(r.Context(), roomID)
	if err != nil {
		h.log.Error("Failed to list room seats",
			zap.Error(err),
			zap.String("room_id", roomID))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "success", response.SeatsToResponse(seats))
}
