package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-core/internal/client"
	"booking-core/internal/data/entity"
	"booking-core/internal/dto/request"
	"booking-core/internal/dto/response"
	"booking-core/internal/event"

	"go.uber.org/zap"
)

// Saga states, logged at every transition so an operator can trace a stuck
// booking from the logs alone.
const (
	StateInit               = "INIT"
	StateScheduleValidated  = "SCHEDULE_VALIDATED"
	StateSeatsHeld          = "SEATS_HELD"
	StateReservationCreated = "RESERVATION_CREATED"
	StateConfirmed          = "CONFIRMED"
	StateCompensating       = "COMPENSATING"
	StateFailed             = "FAILED"
)

// EventPublisher is the slice of the Kafka producer the saga needs. A nil
// publisher disables events.
type EventPublisher interface {
	Publish(ctx context.Context, key string, evt event.BookingEvent) error
}

type BookingService interface {
	// BookTicket drives one booking attempt end to end: schedule check, seat
	// hold, durable reservation, seat confirm. Every failure after the hold
	// compensates before the terminal outcome is recorded.
	BookTicket(ctx context.Context, req *request.BookTicketRequest) (*response.BookingOutcomeResponse, error)

	GetOutcome(ctx context.Context, requestID string) (*response.BookingOutcomeResponse, error)
}

type bookingService struct {
	inventory    InventoryService
	ledger       LedgerService
	schedules    ScheduleService
	reservations client.ReservationAPI
	events       EventPublisher

	holdTTL       time.Duration
	retryAttempts int
	retryBackoff  time.Duration
	callTimeout   time.Duration

	log *zap.Logger
}

func NewBookingService(inventory InventoryService, ledger LedgerService, schedules ScheduleService,
	reservations client.ReservationAPI, events EventPublisher,
	holdTTL time.Duration, retryAttempts int, retryBackoff, callTimeout time.Duration,
	log *zap.Logger) BookingService {
	return &bookingService{
		inventory:     inventory,
		ledger:        ledger,
		schedules:     schedules,
		reservations:  reservations,
		events:        events,
		holdTTL:       holdTTL,
		retryAttempts: retryAttempts,
		retryBackoff:  retryBackoff,
		callTimeout:   callTimeout,
		log:           log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) BookTicket(ctx context.Context, req *request.BookTicketRequest) (*response.BookingOutcomeResponse, error) {
	log := s.log.With(zap.String("request_id", req.RequestID))

	begin, err := s.ledger.Begin(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	switch begin.Status {
	case BeginAlreadyCompleted:
		resp := response.OutcomeToResponse(begin.Outcome)
		resp.Replayed = true
		return resp, nil
	case BeginAlreadyInProgress:
		return nil, fmt.Errorf("request %s: %w", req.RequestID, ErrDuplicateInFlight)
	}

	// Once the ledger row is claimed the saga must reach a terminal state
	// even if the caller hangs up, otherwise the request ID wedges forever.
	ctx = context.WithoutCancel(ctx)

	log.Info("Saga started", zap.String("state", StateInit), zap.Strings("seat_ids", req.SeatIDs))

	schedule, err := s.schedules.Validate(ctx, req.ScheduleID)
	if err != nil {
		var invalid *ScheduleInvalidError
		if errors.As(err, &invalid) {
			log.Info("Schedule rejected", zap.String("reason", invalid.Reason))
			return s.fail(ctx, req, ReasonScheduleInvalid, invalid.Reason)
		}
		return s.fail(ctx, req, ReasonScheduleInvalid, err.Error())
	}
	log.Info("Saga advanced", zap.String("state", StateScheduleValidated), zap.String("room_id", schedule.RoomID))

	if err := s.inventory.HoldSeats(ctx, schedule.RoomID, req.SeatIDs, req.RequestID, s.holdTTL); err != nil {
		var unavailable *SeatUnavailableError
		if errors.As(err, &unavailable) {
			log.Info("Seats unavailable", zap.Strings("seat_ids", unavailable.SeatIDs))
			return s.fail(ctx, req, ReasonSeatUnavailable,
				fmt.Sprintf("seats unavailable: %s", strings.Join(unavailable.SeatIDs, ", ")))
		}
		return s.fail(ctx, req, ReasonSeatUnavailable, err.Error())
	}
	log.Info("Saga advanced", zap.String("state", StateSeatsHeld))

	reservationID, err := s.createReservation(ctx, req)
	if err != nil {
		log.Warn("Reservation create failed, compensating",
			zap.String("state", StateCompensating), zap.Error(err))
		s.releaseHold(ctx, req.RequestID)
		return s.fail(ctx, req, ReasonReservationCreateFailed, err.Error())
	}
	log.Info("Saga advanced",
		zap.String("state", StateReservationCreated),
		zap.String("reservation_id", reservationID),
	)

	if err := s.inventory.ConfirmHold(ctx, req.RequestID); err != nil {
		log.Warn("Seat confirm failed, compensating",
			zap.String("state", StateCompensating), zap.Error(err))
		s.cancelReservation(ctx, reservationID)
		s.releaseHold(ctx, req.RequestID)
		return s.fail(ctx, req, ReasonConfirmFailed, err.Error())
	}
	log.Info("Saga advanced", zap.String("state", StateConfirmed))

	outcome, err := s.ledger.CompleteSucceeded(ctx, req.RequestID, reservationID)
	if err != nil {
		outcome, err = s.resolveTerminalRace(ctx, req.RequestID, err)
		if err != nil {
			return nil, err
		}
	}

	s.publish(ctx, req, event.BookingEvent{
		Type:          event.TypeBookingSucceeded,
		ReservationID: reservationID,
	})

	return response.OutcomeToResponse(outcome), nil
}

func (s *bookingService) GetOutcome(ctx context.Context, requestID string) (*response.BookingOutcomeResponse, error) {
	outcome, err := s.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return nil, nil
	}
	return response.OutcomeToResponse(outcome), nil
}

// fail records the terminal failure in the ledger and publishes the event.
// The booking error itself is carried in the response body, not the error
// return.
func (s *bookingService) fail(ctx context.Context, req *request.BookTicketRequest, reason, detail string) (*response.BookingOutcomeResponse, error) {
	s.log.Info("Saga finished",
		zap.String("request_id", req.RequestID),
		zap.String("state", StateFailed),
		zap.String("reason", reason),
		zap.String("detail", detail),
	)

	outcome, err := s.ledger.CompleteFailed(ctx, req.RequestID, reason)
	if err != nil {
		outcome, err = s.resolveTerminalRace(ctx, req.RequestID, err)
		if err != nil {
			return nil, err
		}
	}

	s.publish(ctx, req, event.BookingEvent{
		Type:          event.TypeBookingFailed,
		FailureReason: reason,
	})

	return response.OutcomeToResponse(outcome), nil
}

func (s *bookingService) createReservation(ctx context.Context, req *request.BookTicketRequest) (string, error) {
	input := client.CreateReservationInput{
		UserID:      req.UserID,
		ScheduleID:  req.ScheduleID,
		MovieID:     req.MovieID,
		SeatIDs:     req.SeatIDs,
		TotalAmount: req.TotalAmount,
	}

	var reservationID string
	err := withRetry(ctx, s.retryAttempts, s.retryBackoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()

		var err error
		reservationID, err = s.reservations.CreateReservation(callCtx, req.RequestID, input)
		return err
	})
	return reservationID, err
}

func (s *bookingService) cancelReservation(ctx context.Context, reservationID string) {
	err := withRetry(ctx, s.retryAttempts, s.retryBackoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
		return s.reservations.CancelReservation(callCtx, reservationID)
	})
	if err != nil {
		// The reservation store reconciles orphans on its side; log loudly
		// and move on so the seats still get released.
		s.log.Error("Failed to cancel reservation during compensation",
			zap.Error(err),
			zap.String("reservation_id", reservationID),
		)
	}
}

func (s *bookingService) releaseHold(ctx context.Context, holdToken string) {
	if err := s.inventory.ReleaseHold(ctx, holdToken); err != nil {
		// The reaper will pick the hold up after the TTL.
		s.log.Error("Failed to release hold during compensation",
			zap.Error(err),
			zap.String("hold_token", holdToken),
		)
	}
}

// resolveTerminalRace handles a completion that lost to an earlier terminal
// write, which can happen when the reaper-recovery path finished first. The
// stored outcome wins.
func (s *bookingService) resolveTerminalRace(ctx context.Context, requestID string, completeErr error) (*entity.BookingOutcome, error) {
	if !errors.Is(completeErr, ErrAlreadyTerminal) {
		return nil, completeErr
	}
	outcome, err := s.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return nil, completeErr
	}
	return outcome, nil
}

func (s *bookingService) publish(ctx context.Context, req *request.BookTicketRequest, evt event.BookingEvent) {
	if s.events == nil {
		return
	}

	evt.RequestID = req.RequestID
	evt.UserID = req.UserID
	evt.ScheduleID = req.ScheduleID
	evt.MovieID = req.MovieID
	evt.SeatIDs = req.SeatIDs
	evt.TotalAmount = req.TotalAmount
	evt.OccurredAt = time.Now()

	if err := s.events.Publish(ctx, req.RequestID, evt); err != nil {
		s.log.Warn("Failed to publish booking event",
			zap.Error(err),
			zap.String("request_id", req.RequestID),
			zap.String("type", evt.Type),
		)
	}
}
