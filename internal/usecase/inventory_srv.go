package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"booking-core/internal/data/entity"
	"booking-core/internal/data/repository"

	"go.uber.org/zap"
)

// InventoryService is the only component allowed to mutate seat state. Every
// mutation is a per-seat compare-and-swap on the seat version; there is no
// lock held across seats or across calls.
type InventoryService interface {
	// HoldSeats transitions every requested seat AVAILABLE -> HELD under the
	// given token, all-or-nothing. On any conflict it rolls back the seats it
	// held in this call and returns *SeatUnavailableError.
	HoldSeats(ctx context.Context, roomID string, seatIDs []string, holdToken string, ttl time.Duration) error

	// ConfirmHold transitions every HELD seat with the token to BOOKED.
	// Idempotent per token: if all matching seats are already BOOKED it
	// succeeds; if no seat carries the token it returns ErrHoldNotFound.
	ConfirmHold(ctx context.Context, holdToken string) error

	// ReleaseHold returns every HELD seat with the token to AVAILABLE and
	// clears the token. Releasing an unknown or already-released token is a
	// no-op.
	ReleaseHold(ctx context.Context, holdToken string) error

	// ReapExpiredHolds releases every HELD seat whose hold passed its TTL and
	// returns how many seats were freed. This is the recovery path for sagas
	// that crashed between holding and confirming.
	ReapExpiredHolds(ctx context.Context, now time.Time) (int, error)

	ListRoomSeats(ctx context.Context, roomID string) ([]*entity.Seat, error)
}

type inventoryService struct {
	seats     repository.SeatRepository
	reapLimit int
	log       *zap.Logger
}

func NewInventoryService(seats repository.SeatRepository, reapLimit int, log *zap.Logger) InventoryService {
	if reapLimit <= 0 {
		reapLimit = 500
	}
	return &inventoryService{
		seats:     seats,
		reapLimit: reapLimit,
		log:       log.With(zap.String("service", "inventory")),
	}
}

func (s *inventoryService) HoldSeats(ctx context.Context, roomID string, seatIDs []string, holdToken string, ttl time.Duration) error {
	if len(seatIDs) == 0 {
		return fmt.Errorf("no seats requested")
	}

	// Fixed order bounds contention between overlapping requests: both walk
	// the shared seats in the same sequence, so exactly one wins the first
	// contested CAS and the other fails fast.
	sorted := make([]string, len(seatIDs))
	copy(sorted, seatIDs)
	sort.Strings(sorted)

	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return fmt.Errorf("duplicate seat %s in request", sorted[i])
		}
	}

	seats, err := s.seats.FindByRoomAndIDs(ctx, roomID, sorted)
	if err != nil {
		return fmt.Errorf("read seats: %w", err)
	}

	byID := make(map[string]*entity.Seat, len(seats))
	for _, seat := range seats {
		byID[seat.SeatID] = seat
	}

	var conflicts []string
	for _, id := range sorted {
		seat, ok := byID[id]
		if !ok || seat.Status != entity.SeatStatusAvailable {
			conflicts = append(conflicts, id)
		}
	}
	if len(conflicts) > 0 {
		return &SeatUnavailableError{SeatIDs: conflicts}
	}

	expiresAt := time.Now().Add(ttl)
	var held []*entity.Seat

	for _, id := range sorted {
		seat := byID[id]
		prevVersion := seat.Version

		seat.Status = entity.SeatStatusHeld
		seat.HoldToken = &holdToken
		seat.HoldExpiresAt = &expiresAt

		swapped, err := s.seats.UpdateCAS(ctx, seat, prevVersion)
		if err != nil {
			s.rollbackHolds(ctx, held)
			return fmt.Errorf("hold seat %s: %w", id, err)
		}
		if !swapped {
			// Lost the race: someone held or booked this seat between our
			// read and the CAS.
			s.rollbackHolds(ctx, held)
			return &SeatUnavailableError{SeatIDs: []string{id}}
		}

		seat.Version = prevVersion + 1
		held = append(held, seat)
	}

	s.log.Info("Seats held",
		zap.String("room_id", roomID),
		zap.String("hold_token", holdToken),
		zap.Int("seat_count", len(held)),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

// rollbackHolds undoes the seats this call already transitioned. A failed
// CAS here is ignored: the seat moved again underneath us and the reaper
// will free it when the hold expires.
func (s *inventoryService) rollbackHolds(ctx context.Context, held []*entity.Seat) {
	for _, seat := range held {
		prevVersion := seat.Version
		seat.Status = entity.SeatStatusAvailable
		seat.HoldToken = nil
		seat.HoldExpiresAt = nil

		swapped, err := s.seats.UpdateCAS(ctx, seat, prevVersion)
		if err != nil || !swapped {
			s.log.Warn("Hold rollback left seat to the reaper",
				zap.Error(err),
				zap.String("room_id", seat.RoomID),
				zap.String("seat_id", seat.SeatID),
			)
		}
	}
}

func (s *inventoryService) ConfirmHold(ctx context.Context, holdToken string) error {
	seats, err := s.seats.FindByToken(ctx, holdToken)
	if err != nil {
		return fmt.Errorf("read seats for token: %w", err)
	}
	if len(seats) == 0 {
		return ErrHoldNotFound
	}

	var held []*entity.Seat
	for _, seat := range seats {
		if seat.Status == entity.SeatStatusHeld {
			held = append(held, seat)
		}
	}
	if len(held) == 0 {
		// Confirm already applied in a previous attempt.
		return nil
	}

	var booked []*entity.Seat
	for _, seat := range held {
		prevVersion := seat.Version
		prevExpiry := seat.HoldExpiresAt

		seat.Status = entity.SeatStatusBooked
		seat.HoldExpiresAt = nil

		swapped, err := s.seats.UpdateCAS(ctx, seat, prevVersion)
		if err != nil || !swapped {
			// The seat moved underneath us, most likely reaped after the
			// hold expired. Revert this call's transitions so compensation
			// sees a consistent HELD set.
			seat.Status = entity.SeatStatusHeld
			seat.HoldExpiresAt = prevExpiry
			s.revertConfirms(ctx, booked)
			if err != nil {
				return fmt.Errorf("confirm seat %s: %w", seat.SeatID, err)
			}
			return fmt.Errorf("confirm seat %s: %w", seat.SeatID, ErrHoldNotFound)
		}

		seat.Version = prevVersion + 1
		booked = append(booked, seat)
	}

	s.log.Info("Hold confirmed",
		zap.String("hold_token", holdToken),
		zap.Int("seat_count", len(booked)),
	)
	return nil
}

func (s *inventoryService) revertConfirms(ctx context.Context, booked []*entity.Seat) {
	for _, seat := range booked {
		prevVersion := seat.Version
		seat.Status = entity.SeatStatusAvailable
		seat.HoldToken = nil
		seat.HoldExpiresAt = nil

		swapped, err := s.seats.UpdateCAS(ctx, seat, prevVersion)
		if err != nil || !swapped {
			s.log.Error("Failed to revert partial confirm",
				zap.Error(err),
				zap.String("room_id", seat.RoomID),
				zap.String("seat_id", seat.SeatID),
			)
		}
	}
}

func (s *inventoryService) ReleaseHold(ctx context.Context, holdToken string) error {
	seats, err := s.seats.FindByToken(ctx, holdToken)
	if err != nil {
		return fmt.Errorf("read seats for token: %w", err)
	}

	released := 0
	for _, seat := range seats {
		if seat.Status != entity.SeatStatusHeld {
			continue
		}

		prevVersion := seat.Version
		seat.Status = entity.SeatStatusAvailable
		seat.HoldToken = nil
		seat.HoldExpiresAt = nil

		swapped, err := s.seats.UpdateCAS(ctx, seat, prevVersion)
		if err != nil {
			return fmt.Errorf("release seat %s: %w", seat.SeatID, err)
		}
		if swapped {
			released++
		}
		// A failed CAS means someone else already transitioned the seat;
		// release is idempotent so that is fine.
	}

	if released > 0 {
		s.log.Info("Hold released",
			zap.String("hold_token", holdToken),
			zap.Int("seat_count", released),
		)
	}
	return nil
}

func (s *inventoryService) ReapExpiredHolds(ctx context.Context, now time.Time) (int, error) {
	seats, err := s.seats.FindExpiredHolds(ctx, now, s.reapLimit)
	if err != nil {
		return 0, fmt.Errorf("find expired holds: %w", err)
	}

	reaped := 0
	for _, seat := range seats {
		prevVersion := seat.Version
		token := ""
		if seat.HoldToken != nil {
			token = *seat.HoldToken
		}

		seat.Status = entity.SeatStatusAvailable
		seat.HoldToken = nil
		seat.HoldExpiresAt = nil

		swapped, err := s.seats.UpdateCAS(ctx, seat, prevVersion)
		if err != nil {
			return reaped, fmt.Errorf("reap seat %s: %w", seat.SeatID, err)
		}
		if !swapped {
			// Confirmed or released between our read and the CAS.
			continue
		}

		reaped++
		s.log.Warn("Expired hold reaped",
			zap.String("room_id", seat.RoomID),
			zap.String("seat_id", seat.SeatID),
			zap.String("hold_token", token),
		)
	}

	return reaped, nil
}

func (s *inventoryService) ListRoomSeats(ctx context.Context, roomID string) ([]*entity.Seat, error) {
	seats, err := s.seats.FindByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list seats for room %s: %w", roomID, err)
	}
	return seats, nil
}
