package wire

import (
	"booking-core/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	// POST /api/book-ticket - Run one booking attempt end to end
	r.Post("/api/book-ticket", bookingHandler.BookTicket)

	// GET /api/bookings/{requestId} - Look up the recorded outcome
	r.Get("/api/bookings/{requestId}", bookingHandler.GetOutcome)
}
