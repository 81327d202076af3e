package repository

import (
	"booking-core/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Seat    SeatRepository
	Outcome OutcomeRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Seat:    NewSeatRepository(db, log),
		Outcome: NewOutcomeRepository(db, log),
	}
}
