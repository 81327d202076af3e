package worker

import (
	"context"
	"time"

	"booking-core/internal/event"
	"booking-core/internal/usecase"

	"go.uber.org/zap"
)

// Reaper is the safety net for holds whose saga died before releasing them.
// It sweeps expired holds back to available on a fixed interval.
type Reaper struct {
	inventory usecase.InventoryService
	events    usecase.EventPublisher
	interval  time.Duration
	log       *zap.Logger
}

func NewReaper(inventory usecase.InventoryService, events usecase.EventPublisher,
	interval time.Duration, log *zap.Logger) *Reaper {
	return &Reaper{
		inventory: inventory,
		events:    events,
		interval:  interval,
		log:       log.With(zap.String("worker", "reaper")),
	}
}

// Run sweeps until the context is cancelled. Meant to be started in its own
// goroutine.
func (r *Reaper) Run(ctx context.Context) {
	r.log.Info("Hold reaper started", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Hold reaper stopped")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	reaped, err := r.inventory.ReapExpiredHolds(ctx, time.Now())
	if err != nil {
		r.log.Error("Reaper sweep failed", zap.Error(err))
		return
	}
	if reaped == 0 {
		return
	}

	r.log.Info("Expired holds reaped", zap.Int("count", reaped))

	if r.events != nil {
		evt := event.BookingEvent{
			Type:        event.TypeHoldsReaped,
			ReapedSeats: reaped,
			OccurredAt:  time.Now(),
		}
		if err := r.events.Publish(ctx, event.TypeHoldsReaped, evt); err != nil {
			r.log.Warn("Failed to publish reaper event", zap.Error(err))
		}
	}
}
