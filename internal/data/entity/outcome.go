package entity

import "time"

type OutcomeStatus string

const (
	OutcomeStatusInProgress OutcomeStatus = "IN_PROGRESS"
	OutcomeStatusSucceeded  OutcomeStatus = "SUCCEEDED"
	OutcomeStatusFailed     OutcomeStatus = "FAILED"
)

// BookingOutcome is the idempotency ledger row for one booking request.
// At most one row exists per request ID; once the status leaves IN_PROGRESS
// the row is terminal and never changes again.
type BookingOutcome struct {
	RequestID     string        `db:"request_id"`
	Status        OutcomeStatus `db:"status"`
	ReservationID *string       `db:"reservation_id"`
	FailureReason *string       `db:"failure_reason"`
	CreatedAt     time.Time     `db:"created_at"`
	CompletedAt   *time.Time    `db:"completed_at"`
}

// Terminal reports whether the outcome has reached SUCCEEDED or FAILED.
func (o *BookingOutcome) Terminal() bool {
	return o.Status == OutcomeStatusSucceeded || o.Status == OutcomeStatusFailed
}
