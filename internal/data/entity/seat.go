package entity

import "time"

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "AVAILABLE"
	SeatStatusHeld      SeatStatus = "HELD"
	SeatStatusBooked    SeatStatus = "BOOKED"
)

// Seat is the authoritative availability record for one seat in one room.
// Version bumps on every transition and all writes are conditional on the
// version the writer last observed. HoldToken stays set on BOOKED rows so a
// confirm retried after a crash can tell "already applied" from "never held".
type Seat struct {
	RoomID        string     `db:"room_id"`
	SeatID        string     `db:"seat_id"`
	Status        SeatStatus `db:"status"`
	HoldToken     *string    `db:"hold_token"`
	HoldExpiresAt *time.Time `db:"hold_expires_at"`
	Version       int64      `db:"version"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// HeldBy reports whether the seat is currently HELD under the given token.
func (s *Seat) HeldBy(token string) bool {
	return s.Status == SeatStatusHeld && s.HoldToken != nil && *s.HoldToken == token
}

// BookedBy reports whether the seat was BOOKED under the given token.
func (s *Seat) BookedBy(token string) bool {
	return s.Status == SeatStatusBooked && s.HoldToken != nil && *s.HoldToken == token
}

// HoldExpired reports whether a HELD seat's hold has passed its TTL.
func (s *Seat) HoldExpired(now time.Time) bool {
	return s.Status == SeatStatusHeld && s.HoldExpiresAt != nil && s.HoldExpiresAt.Before(now)
}
