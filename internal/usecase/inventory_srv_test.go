package usecase

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"booking-core/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memSeatRepo is an in-memory SeatRepository with real compare-and-swap
// semantics, so the concurrency behavior under test is the service's, not a
// mock's.
type memSeatRepo struct {
	mu    sync.Mutex
	seats map[string]*entity.Seat
}

func newMemSeatRepo() *memSeatRepo {
	return &memSeatRepo{seats: make(map[string]*entity.Seat)}
}

func seatKey(roomID, seatID string) string {
	return roomID + "/" + seatID
}

func (r *memSeatRepo) add(roomID, seatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seats[seatKey(roomID, seatID)] = &entity.Seat{
		RoomID:  roomID,
		SeatID:  seatID,
		Status:  entity.SeatStatusAvailable,
		Version: 1,
	}
}

func (r *memSeatRepo) get(roomID, seatID string) entity.Seat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.seats[seatKey(roomID, seatID)]
}

func (r *memSeatRepo) FindByRoom(ctx context.Context, roomID string) ([]*entity.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Seat
	for _, seat := range r.seats {
		if seat.RoomID == roomID {
			copied := *seat
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatID < out[j].SeatID })
	return out, nil
}

func (r *memSeatRepo) FindByRoomAndIDs(ctx context.Context, roomID string, seatIDs []string) ([]*entity.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Seat
	for _, id := range seatIDs {
		if seat, ok := r.seats[seatKey(roomID, id)]; ok {
			copied := *seat
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memSeatRepo) FindByToken(ctx context.Context, holdToken string) ([]*entity.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Seat
	for _, seat := range r.seats {
		if seat.HoldToken != nil && *seat.HoldToken == holdToken {
			copied := *seat
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatID < out[j].SeatID })
	return out, nil
}

func (r *memSeatRepo) FindExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*entity.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Seat
	for _, seat := range r.seats {
		if seat.HoldExpired(now) {
			copied := *seat
			out = append(out, &copied)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memSeatRepo) UpdateCAS(ctx context.Context, seat *entity.Seat, expectedVersion int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.seats[seatKey(seat.RoomID, seat.SeatID)]
	if !ok || stored.Version != expectedVersion {
		return false, nil
	}

	stored.Status = seat.Status
	stored.HoldToken = seat.HoldToken
	stored.HoldExpiresAt = seat.HoldExpiresAt
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = time.Now()
	return true, nil
}

func newTestInventory(repo *memSeatRepo) InventoryService {
	return NewInventoryService(repo, 100, zap.NewNop())
}

func TestHoldSeats_Success(t *testing.T) {
	repo := newMemSeatRepo()
	repo.add("room-1", "A1")
	repo.add("room-1", "A2")
	svc := newTestInventory(repo)

	err := svc.HoldSeats(context.Background(), "room-1", []string{"A2", "A1"}, "req-1", time.Minute)
	require.NoError(t, err)

	for _, id := range []string{"A1", "A2"} {
		seat := repo.get("room-1", id)
		assert.True(t, seat.HeldBy("req-1"), "seat %s should be held", id)
		assert.Equal(t, int64(2), seat.Version)
		assert.NotNil(t, seat.HoldExpiresAt)
	}
}

func TestHoldSeats_AllOrNothing(t *testing.T) {
	repo := newMemSeatRepo()
	repo.add("room-1", "A1")
	repo.add("room-1", "A2")
	repo.add("room-1", "A3")
	svc := newTestInventory(repo)

	// A2 goes to someone else first.
	require.NoError(t, svc.HoldSeats(context.Background(), "room-1", []string{"A2"}, "other", time.Minute))

	err := svc.HoldSeats(context.Background(), "room-1", []string{"A1", "A2", "A3"}, "req-1", time.Minute)

	var unavailable *SeatUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"A2"}, unavailable.SeatIDs)

	// A1 and A3 must be untouched.
	assert.Equal(t, entity.SeatStatusAvailable, repo.get("room-1", "A1").Status)
	assert.Equal(t, entity.SeatStatusAvailable, repo.get("room-1", "A3").Status)
}

func TestHoldSeats_UnknownSeatRejectsWholeRequest(t *testing.T) {
	repo := newMemSeatRepo()
	repo.add("room-1", "A1")
	svc := newTestInventory(repo)

	err := svc.HoldSeats(context.Background(), "room-1", []string{"A1", "Z9"}, "req-1", time.Minute)

	var unavailable *SeatUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"Z9"}, unavailable.SeatIDs)
	assert.Equal(t, entity.SeatStatusAvailable, repo.get("room-1", "A1").Status)
}

func TestHoldSeats_DuplicateSeatIDs(t *testing.T) {
	repo := newMemSeatRepo()
	repo.add("room-1", "A1")
	svc := newTestInventory(repo)

	err := svc.HoldSeats(context.Background(), "room-1", []string{"A1", "A1"}, "req-1", time.Minute)
	require.Error(t, err)
	assert.Equal(t, entity.SeatStatusAvailable, repo.get("room-1", "A1").Status)
}

func TestHoldSeats_ConcurrentOverlap_ExactlyOneWins(t *testing.T) {
	repo := newMemSeatRepo()
	repo.add("room-1", "A1")
	repo.add("room-1", "A2")
	repo.add("room-1", "A3")
	svc := newTestInventory(repo)

	const attempts = 20
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := "req-" + string(rune('a'+i))
			errs[i] = svc.HoldSeats(context.Background(), "room-1", []string{"A1", "A2", "A3"}, token, time.Minute)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			var unavailable *SeatUnavailableError
			require.ErrorAs(t, err, &unavailable)
		}
	}
	assert.Equal(t, 1, winners)

	// No seat may be left in AVAILABLE with a dangling token, and the winner
	// holds all three.
	token := repo.get("room-1", "A1").HoldToken
	require.NotNil(t, token)
	for _, id := range []string{"A1", "A2", "A3"} {
		seat := repo.get("room-1", id)
		assert.True(t, seat.HeldBy(*token))
	}
}

func TestConfirmHold_TransitionsToBooked(t *testing.T) {
	repo := newMemSeatRepo()
	repo.add("room-1", "A1")
	repo.add("room-1", "A2")
	svc := newTestInventory(repo)

	require.NoError(t, svc.HoldSeats(context.Background(), "room-1", []string{"A1", "A2"}, "req-1", time.Minute))
	require.NoError(t, svc.ConfirmHold(context.Background(), "req-1"))

	for _, id := range []string{"A1", "A2"} {
		seat := repo.get("room-1", id)
		assert.True(t, seat.BookedBy("req-1"))
		assert.Nil(t, seat.HoldExpiresAt)
	}
}

func TestConfirmHold_Idempotent(t *testing.T) {
	repo := newMemSeatRepo()
	repo.add("room-1", "A1")
	svc := newTestInventory(repo)

	require.NoError(t, svc.HoldSeats(context.Background(), "room-1", []string{"A1"}, "req-1", time.Minute))
	require.NoError(t, svc.ConfirmHold(context.Background(), "req-1"))

	seat := repo.get("room-1", "A1")

	// Second confirm with the same token is a no-op, not an error.
	require.NoError(t, svc.ConfirmHold(context.Background(), "req-1"))
	assert.Equal(t, seat.Version, repo.get("room-1", "A1").Version)
}

func TestConfirmHold_UnknownToken(t *testing.T) {
	repo := newMemSeatRepo()
	repo.add("room-1", "A1")
	svc := newTestInventory(repo)

	err := svc.ConfirmHold(context.Background(), "never-held")
	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestReleaseHold_ReturnsSeatsToAvailable(t *testing.T) {
	repo := newMemSeatRepo()
	repo.add("room-1", "A1")
	repo.add("room-1", "A2")
	svc := newTestInventory(repo)

	require.NoError(t, svc.HoldSeats(context.Background(), "room-1", []string{"A1", "A2"}, "req-1", time.Minute))
	require.NoError(t, svc.ReleaseHold(context.Background(), "req-1"))

	for _, id := range []string{"A1", "A2"} {
		seat := repo.get("room-1", id)
		assert.Equal(t, entity.SeatStatusAvailable, seat.Status)
		assert.Nil(t, seat.HoldToken)
	}

	// Releasing again, or releasing a token that never existed, is fine.
	assert.NoError(t, svc.ReleaseHold(context.Background(), "req-1"))
	assert.NoError(t, svc.ReleaseHold(context.Background(), "ghost"))
}

func TestReleaseHold_DoesNotTouchBookedSeats(t *testing.T) {
	repo := newMemSeatRepo()
	repo.add("room-1", "A1")
	svc := newTestInventory(repo)

	require.NoError(t, svc.HoldSeats(context.Background(), "room-1", []string{"A1"}, "req-1", time.Minute))
	require.NoError(t, svc.ConfirmHold(context.Background(), "req-1"))

	require.NoError(t, svc.ReleaseHold(context.Background(), "req-1"))
	seat := repo.get("room-1", "A1")
	assert.True(t, seat.BookedBy("req-1"))
}

func TestReapExpiredHolds(t *testing.T) {
	repo := newMemSeatRepo()
	repo.add("room-1", "A1")
	repo.add("room-1", "A2")
	repo.add("room-1", "A3")
	svc := newTestInventory(repo)

	// A1+A2 held with a TTL already in the past, A3 with a live one.
	require.NoError(t, svc.HoldSeats(context.Background(), "room-1", []string{"A1", "A2"}, "stale", -time.Second))
	require.NoError(t, svc.HoldSeats(context.Background(), "room-1", []string{"A3"}, "fresh", time.Hour))

	reaped, err := svc.ReapExpiredHolds(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, reaped)

	assert.Equal(t, entity.SeatStatusAvailable, repo.get("room-1", "A1").Status)
	assert.Equal(t, entity.SeatStatusAvailable, repo.get("room-1", "A2").Status)
	freshSeat := repo.get("room-1", "A3")
	assert.True(t, freshSeat.HeldBy("fresh"))

	// Nothing left to reap.
	reaped, err = svc.ReapExpiredHolds(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, reaped)
}

func TestReapedSeatCanBeHeldAgain(t *testing.T) {
	repo := newMemSeatRepo()
	repo.add("room-1", "A1")
	svc := newTestInventory(repo)

	require.NoError(t, svc.HoldSeats(context.Background(), "room-1", []string{"A1"}, "stale", -time.Second))

	_, err := svc.ReapExpiredHolds(context.Background(), time.Now())
	require.NoError(t, err)

	// The stale token is gone; confirming it now fails and the seat is free.
	assert.ErrorIs(t, svc.ConfirmHold(context.Background(), "stale"), ErrHoldNotFound)
	assert.NoError(t, svc.HoldSeats(context.Background(), "room-1", []string{"A1"}, "req-2", time.Minute))
}
