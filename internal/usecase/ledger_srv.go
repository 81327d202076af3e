package usecase

import (
	"context"
	"fmt"
	"time"

	"booking-core/internal/data/entity"
	"booking-core/internal/data/repository"

	"go.uber.org/zap"
)

type BeginStatus int

const (
	BeginStarted BeginStatus = iota
	BeginAlreadyInProgress
	BeginAlreadyCompleted
)

type BeginResult struct {
	Status  BeginStatus
	Outcome *entity.BookingOutcome
}

// LedgerService makes a request ID run the saga's side effects at most once.
// Begin claims the ID; Complete writes the terminal outcome exactly once.
type LedgerService interface {
	Begin(ctx context.Context, requestID string) (*BeginResult, error)
	CompleteSucceeded(ctx context.Context, requestID, reservationID string) (*entity.BookingOutcome, error)
	CompleteFailed(ctx context.Context, requestID, failureReason string) (*entity.BookingOutcome, error)
	Get(ctx context.Context, requestID string) (*entity.BookingOutcome, error)
}

type ledgerService struct {
	outcomes repository.OutcomeRepository
	log      *zap.Logger
}

func NewLedgerService(outcomes repository.OutcomeRepository, log *zap.Logger) LedgerService {
	return &ledgerService{
		outcomes: outcomes,
		log:      log.With(zap.String("service", "ledger")),
	}
}

func (s *ledgerService) Begin(ctx context.Context, requestID string) (*BeginResult, error) {
	// Two rounds cover the race where the row is garbage-collected between
	// a failed insert and the read.
	for attempt := 0; attempt < 2; attempt++ {
		outcome := &entity.BookingOutcome{
			RequestID: requestID,
			Status:    entity.OutcomeStatusInProgress,
			CreatedAt: time.Now(),
		}

		inserted, err := s.outcomes.Insert(ctx, outcome)
		if err != nil {
			return nil, fmt.Errorf("begin request %s: %w", requestID, err)
		}
		if inserted {
			s.log.Info("Booking request accepted", zap.String("request_id", requestID))
			return &BeginResult{Status: BeginStarted, Outcome: outcome}, nil
		}

		existing, err := s.outcomes.FindByRequestID(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("begin request %s: %w", requestID, err)
		}
		if existing == nil {
			continue
		}

		if existing.Terminal() {
			s.log.Info("Booking request replayed from ledger",
				zap.String("request_id", requestID),
				zap.String("status", string(existing.Status)),
			)
			return &BeginResult{Status: BeginAlreadyCompleted, Outcome: existing}, nil
		}

		return &BeginResult{Status: BeginAlreadyInProgress, Outcome: existing}, nil
	}

	return nil, fmt.Errorf("begin request %s: ledger row unstable", requestID)
}

func (s *ledgerService) CompleteSucceeded(ctx context.Context, requestID, reservationID string) (*entity.BookingOutcome, error) {
	return s.complete(ctx, requestID, entity.OutcomeStatusSucceeded, &reservationID, nil)
}

func (s *ledgerService) CompleteFailed(ctx context.Context, requestID, failureReason string) (*entity.BookingOutcome, error) {
	return s.complete(ctx, requestID, entity.OutcomeStatusFailed, nil, &failureReason)
}

func (s *ledgerService) complete(ctx context.Context, requestID string, status entity.OutcomeStatus,
	reservationID, failureReason *string) (*entity.BookingOutcome, error) {
	completedAt := time.Now()

	updated, err := s.outcomes.Complete(ctx, requestID, status, reservationID, failureReason, completedAt)
	if err != nil {
		return nil, fmt.Errorf("complete request %s: %w", requestID, err)
	}
	if !updated {
		s.log.Error("Attempted double completion of ledger entry",
			zap.String("request_id", requestID),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("complete request %s: %w", requestID, ErrAlreadyTerminal)
	}

	outcome, err := s.outcomes.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("reload request %s: %w", requestID, err)
	}

	s.log.Info("Booking outcome recorded",
		zap.String("request_id", requestID),
		zap.String("status", string(status)),
	)
	return outcome, nil
}

func (s *ledgerService) Get(ctx context.Context, requestID string) (*entity.BookingOutcome, error) {
	return s.outcomes.FindByRequestID(ctx, requestID)
}
