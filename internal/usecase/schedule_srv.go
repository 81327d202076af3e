package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking-core/internal/client"

	"go.uber.org/zap"
)

// ScheduleCache is the slice of the Redis cache the validator needs. A nil
// cache is allowed; every lookup then goes to the rooms service.
type ScheduleCache interface {
	GetSchedule(ctx context.Context, scheduleID string) (*client.Schedule, error)
	SetSchedule(ctx context.Context, schedule *client.Schedule) error
}

// ScheduleService checks that a showtime is bookable before any seat is
// touched.
type ScheduleService interface {
	Validate(ctx context.Context, scheduleID string) (*client.Schedule, error)
}

type scheduleService struct {
	schedules     client.ScheduleAPI
	cache         ScheduleCache
	retryAttempts int
	retryBackoff  time.Duration
	log           *zap.Logger
}

func NewScheduleService(schedules client.ScheduleAPI, cache ScheduleCache,
	retryAttempts int, retryBackoff time.Duration, log *zap.Logger) ScheduleService {
	return &scheduleService{
		schedules:     schedules,
		cache:         cache,
		retryAttempts: retryAttempts,
		retryBackoff:  retryBackoff,
		log:           log.With(zap.String("service", "schedule")),
	}
}

func (s *scheduleService) Validate(ctx context.Context, scheduleID string) (*client.Schedule, error) {
	schedule, err := s.lookup(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, &ScheduleInvalidError{ScheduleID: scheduleID, Reason: "schedule not found"}
		}
		return nil, fmt.Errorf("validate schedule %s: %w", scheduleID, err)
	}

	if schedule.Cancelled {
		return nil, &ScheduleInvalidError{ScheduleID: scheduleID, Reason: "schedule cancelled"}
	}
	if !schedule.Showtime.After(time.Now()) {
		return nil, &ScheduleInvalidError{ScheduleID: scheduleID, Reason: "showtime already started"}
	}

	return schedule, nil
}

func (s *scheduleService) lookup(ctx context.Context, scheduleID string) (*client.Schedule, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSchedule(ctx, scheduleID)
		if err != nil {
			// Cache trouble is never fatal, treat it as a miss.
			s.log.Warn("Schedule cache read failed", zap.Error(err), zap.String("schedule_id", scheduleID))
		} else if cached != nil {
			return cached, nil
		}
	}

	var schedule *client.Schedule
	err := withRetry(ctx, s.retryAttempts, s.retryBackoff, func(ctx context.Context) error {
		var err error
		schedule, err = s.schedules.GetSchedule(ctx, scheduleID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetSchedule(ctx, schedule); err != nil {
			s.log.Warn("Schedule cache write failed", zap.Error(err), zap.String("schedule_id", scheduleID))
		}
	}
	return schedule, nil
}
