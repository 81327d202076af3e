package response

import (
	"time"

	"booking-core/internal/data/entity"
)

type BookingOutcomeResponse struct {
	RequestID     string     `json:"request_id"`
	Status        string     `json:"status"`
	ReservationID string     `json:"reservation_id,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`

	// Replayed marks an outcome served from the ledger rather than produced
	// by this call. Not part of the wire format.
	Replayed bool `json:"-"`
}

func OutcomeToResponse(outcome *entity.BookingOutcome) *BookingOutcomeResponse {
	resp := &BookingOutcomeResponse{
		RequestID:   outcome.RequestID,
		Status:      string(outcome.Status),
		CreatedAt:   outcome.CreatedAt,
		CompletedAt: outcome.CompletedAt,
	}
	if outcome.ReservationID != nil {
		resp.ReservationID = *outcome.ReservationID
	}
	if outcome.FailureReason != nil {
		resp.FailureReason = *outcome.FailureReason
	}
	return resp
}
