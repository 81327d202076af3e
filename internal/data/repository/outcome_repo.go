package repository

import (
	"context"
	"fmt"
	"time"

	"booking-core/internal/data/entity"
	"booking-core/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OutcomeRepository interface {
	// Insert writes a new IN_PROGRESS row. Returns false when a row for the
	// request ID already exists (the insert is a no-op in that case).
	Insert(ctx context.Context, outcome *entity.BookingOutcome) (bool, error)

	FindByRequestID(ctx context.Context, requestID string) (*entity.BookingOutcome, error)

	// Complete moves the row to a terminal status. The update is conditional
	// on the row still being IN_PROGRESS; returns false when it was already
	// terminal.
	Complete(ctx context.Context, requestID string, status entity.OutcomeStatus,
		reservationID, failureReason *string, completedAt time.Time) (bool, error)
}

type outcomeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOutcomeRepository(db database.PgxIface, log *zap.Logger) OutcomeRepository {
	return &outcomeRepository{
		db:  db,
		log: log.With(zap.String("repository", "outcome")),
	}
}

func (r *outcomeRepository) Insert(ctx context.Context, outcome *entity.BookingOutcome) (bool, error) {
	query := `
		INSERT INTO booking_outcomes (request_id, status, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (request_id) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query, outcome.RequestID, outcome.Status, outcome.CreatedAt)
	if err != nil {
		r.log.Error("Failed to insert booking outcome",
			zap.Error(err),
			zap.String("request_id", outcome.RequestID),
		)
		return false, fmt.Errorf("insert outcome for request %s: %w", outcome.RequestID, err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *outcomeRepository) FindByRequestID(ctx context.Context, requestID string) (*entity.BookingOutcome, error) {
	query := `
		SELECT request_id, status, reservation_id, failure_reason, created_at, completed_at
		FROM booking_outcomes
		WHERE request_id = $1
	`

	var outcome entity.BookingOutcome
	err := r.db.QueryRow(ctx, query, requestID).Scan(
		&outcome.RequestID,
		&outcome.Status,
		&outcome.ReservationID,
		&outcome.FailureReason,
		&outcome.CreatedAt,
		&outcome.CompletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking outcome",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		return nil, fmt.Errorf("find outcome for request %s: %w", requestID, err)
	}

	return &outcome, nil
}

func (r *outcomeRepository) Complete(ctx context.Context, requestID string, status entity.OutcomeStatus,
	reservationID, failureReason *string, completedAt time.Time) (bool, error) {
	query := `
		UPDATE booking_outcomes
		SET status = $2, reservation_id = $3, failure_reason = $4, completed_at = $5
		WHERE request_id = $1 AND status = $6
	`

	result, err := r.db.Exec(ctx, query,
		requestID,
		status,
		reservationID,
		failureReason,
		completedAt,
		entity.OutcomeStatusInProgress,
	)

	if err != nil {
		r.log.Error("Failed to complete booking outcome",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("status", string(status)),
		)
		return false, fmt.Errorf("complete outcome for request %s: %w", requestID, err)
	}

	return result.RowsAffected() == 1, nil
}
