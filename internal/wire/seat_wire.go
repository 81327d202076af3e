package wire

import (
	"booking-core/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireSeat(r chi.Router, seatHandler *adaptor.SeatHandler) {
	// GET /api/rooms/{roomId}/seats - Seat map with live hold state
	r.Get("/api/rooms/{roomId}/seats", seatHandler.ListRoomSeats)
}
