package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"booking-core/internal/client"
	"booking-core/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache keeps recently looked-up schedules so the saga does not hit the
// rooms service for every booking of a popular showtime.
type RedisCache struct {
	client      *redis.Client
	scheduleTTL time.Duration
	log         *zap.Logger
}

func NewRedisCache(cfg utils.RedisConfig, scheduleTTL time.Duration, log *zap.Logger) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		scheduleTTL: scheduleTTL,
		log:         log.With(zap.String("cache", "redis")),
	}
}

func (c *RedisCache) GetSchedule(ctx context.Context, scheduleID string) (*client.Schedule, error) {
	data, err := c.client.Get(ctx, scheduleKey(scheduleID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var schedule client.Schedule
	if err := json.Unmarshal(data, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (c *RedisCache) SetSchedule(ctx context.Context, schedule *client.Schedule) error {
	payload, err := json.Marshal(schedule)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, scheduleKey(schedule.ID), payload, c.scheduleTTL).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func scheduleKey(scheduleID string) string {
	return fmt.Sprintf("cache:schedule:%s", scheduleID)
}
