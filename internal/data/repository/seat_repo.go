package repository

import (
	"context"
	"fmt"
	"time"

	"booking-core/internal/data/entity"
	"booking-core/pkg/database"

	"go.uber.org/zap"
)

type SeatRepository interface {
	FindByRoom(ctx context.Context, roomID string) ([]*entity.Seat, error)
	FindByRoomAndIDs(ctx context.Context, roomID string, seatIDs []string) ([]*entity.Seat, error)
	FindByToken(ctx context.Context, holdToken string) ([]*entity.Seat, error)
	FindExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*entity.Seat, error)

	// UpdateCAS writes the seat's status, hold token and hold expiry in one
	// conditional update: it succeeds only if the stored version still equals
	// expectedVersion, and bumps the version on success. Returns false when
	// the row moved underneath the caller.
	UpdateCAS(ctx context.Context, seat *entity.Seat, expectedVersion int64) (bool, error)
}

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

const seatColumns = `room_id, seat_id, status, hold_token, hold_expires_at, version, created_at, updated_at`

func (r *seatRepository) FindByRoom(ctx context.Context, roomID string) ([]*entity.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE room_id = $1
		ORDER BY seat_id
	`

	rows, err := r.db.Query(ctx, query, roomID)
	if err != nil {
		r.log.Error("Failed to find seats by room",
			zap.Error(err),
			zap.String("room_id", roomID),
		)
		return nil, fmt.Errorf("find seats for room %s: %w", roomID, err)
	}
	defer rows.Close()

	return scanSeats(rows)
}

func (r *seatRepository) FindByRoomAndIDs(ctx context.Context, roomID string, seatIDs []string) ([]*entity.Seat, error) {
	if len(seatIDs) == 0 {
		return []*entity.Seat{}, nil
	}

	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE room_id = $1 AND seat_id = ANY($2)
		ORDER BY seat_id
	`

	rows, err := r.db.Query(ctx, query, roomID, seatIDs)
	if err != nil {
		r.log.Error("Failed to find seats by room and IDs",
			zap.Error(err),
			zap.String("room_id", roomID),
			zap.Int("seat_count", len(seatIDs)),
		)
		return nil, fmt.Errorf("find seats for room %s: %w", roomID, err)
	}
	defer rows.Close()

	return scanSeats(rows)
}

func (r *seatRepository) FindByToken(ctx context.Context, holdToken string) ([]*entity.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE hold_token = $1
		ORDER BY seat_id
	`

	rows, err := r.db.Query(ctx, query, holdToken)
	if err != nil {
		r.log.Error("Failed to find seats by hold token",
			zap.Error(err),
			zap.String("hold_token", holdToken),
		)
		return nil, fmt.Errorf("find seats for token %s: %w", holdToken, err)
	}
	defer rows.Close()

	return scanSeats(rows)
}

func (r *seatRepository) FindExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*entity.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE status = $1 AND hold_expires_at < $2
		ORDER BY hold_expires_at
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, entity.SeatStatusHeld, now, limit)
	if err != nil {
		r.log.Error("Failed to find expired holds", zap.Error(err))
		return nil, fmt.Errorf("find expired holds: %w", err)
	}
	defer rows.Close()

	return scanSeats(rows)
}

func (r *seatRepository) UpdateCAS(ctx context.Context, seat *entity.Seat, expectedVersion int64) (bool, error) {
	query := `
		UPDATE seats
		SET status = $3, hold_token = $4, hold_expires_at = $5, version = version + 1, updated_at = NOW()
		WHERE room_id = $1 AND seat_id = $2 AND version = $6
	`

	result, err := r.db.Exec(ctx, query,
		seat.RoomID,
		seat.SeatID,
		seat.Status,
		seat.HoldToken,
		seat.HoldExpiresAt,
		expectedVersion,
	)

	if err != nil {
		r.log.Error("Failed to update seat",
			zap.Error(err),
			zap.String("room_id", seat.RoomID),
			zap.String("seat_id", seat.SeatID),
			zap.Int64("expected_version", expectedVersion),
		)
		return false, fmt.Errorf("update seat %s/%s: %w", seat.RoomID, seat.SeatID, err)
	}

	return result.RowsAffected() == 1, nil
}

func scanSeats(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*entity.Seat, error) {
	var seats []*entity.Seat
	for rows.Next() {
		var seat entity.Seat
		err := rows.Scan(
			&seat.RoomID,
			&seat.SeatID,
			&seat.Status,
			&seat.HoldToken,
			&seat.HoldExpiresAt,
			&seat.Version,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan seat row: %w", err)
		}
		seats = append(seats, &seat)
	}
	return seats, rows.Err()
}
