package usecase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateInFlight means another attempt with the same request ID is
	// still running; the caller should poll the outcome rather than resubmit.
	ErrDuplicateInFlight = errors.New("booking request already in progress")

	// ErrHoldNotFound means no seat carries the hold token anymore: the hold
	// was never taken, already released, or reaped after its TTL.
	ErrHoldNotFound = errors.New("no seats held for token")

	// ErrAlreadyTerminal guards the ledger invariant that a terminal outcome
	// is written exactly once.
	ErrAlreadyTerminal = errors.New("outcome already terminal")
)

// Terminal failure reasons recorded in the ledger and returned to callers.
const (
	ReasonScheduleInvalid         = "ScheduleInvalid"
	ReasonSeatUnavailable         = "SeatUnavailable"
	ReasonReservationCreateFailed = "ReservationCreateFailed"
	ReasonConfirmFailed           = "ConfirmFailed"
)

// SeatUnavailableError lists the seats that blocked an all-or-nothing hold.
type SeatUnavailableError struct {
	SeatIDs []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.SeatIDs, ", "))
}

// ScheduleInvalidError means the showtime cannot be booked: unknown,
// cancelled, or already started.
type ScheduleInvalidError struct {
	ScheduleID string
	Reason     string
}

func (e *ScheduleInvalidError) Error() string {
	return fmt.Sprintf("schedule %s not bookable: %s", e.ScheduleID, e.Reason)
}
