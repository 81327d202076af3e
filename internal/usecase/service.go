package usecase

import (
	"booking-core/internal/client"
	"booking-core/internal/data/repository"
	"booking-core/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Inventory InventoryService
	Ledger    LedgerService
	Schedule  ScheduleService
	Booking   BookingService
}

func NewService(repo *repository.Repository, config *utils.Config,
	schedules client.ScheduleAPI, reservations client.ReservationAPI,
	cache ScheduleCache, events EventPublisher, log *zap.Logger) *Service {
	inventory := NewInventoryService(repo.Seat, config.Booking.ReaperBatchSize, log)
	ledger := NewLedgerService(repo.Outcome, log)
	schedule := NewScheduleService(schedules, cache,
		config.Booking.RetryAttempts, config.Booking.RetryBackoff, log)
	booking := NewBookingService(inventory, ledger, schedule, reservations, events,
		config.Booking.HoldTTL, config.Booking.RetryAttempts, config.Booking.RetryBackoff,
		config.Services.CallTimeout, log)

	return &Service{
		Inventory: inventory,
		Ledger:    ledger,
		Schedule:  schedule,
		Booking:   booking,
	}
}
