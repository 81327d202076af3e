package response

import (
	"time"

	"booking-core/internal/data/entity"
)

type SeatResponse struct {
	RoomID        string     `json:"room_id"`
	SeatID        string     `json:"seat_id"`
	Status        string     `json:"status"`
	HoldExpiresAt *time.Time `json:"hold_expires_at,omitempty"`
}

func SeatsToResponse(seats []*entity.Seat) []SeatResponse {
	out := make([]SeatResponse, len(seats))
	for i, seat := range seats {
		out[i] = SeatResponse{
			RoomID:        seat.RoomID,
			SeatID:        seat.SeatID,
			Status:        string(seat.Status),
			HoldExpiresAt: seat.HoldExpiresAt,
		}
	}
	return out
}
