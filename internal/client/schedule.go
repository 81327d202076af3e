package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Schedule is the showtime record owned by the rooms service.
type Schedule struct {
	ID        string
	RoomID    string
	MovieID   string
	Showtime  time.Time
	Cancelled bool
}

type ScheduleAPI interface {
	GetSchedule(ctx context.Context, scheduleID string) (*Schedule, error)
}

type ScheduleClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewScheduleClient(baseURL string, timeout time.Duration, log *zap.Logger) *ScheduleClient {
	return &ScheduleClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With(zap.String("client", "schedule")),
	}
}

// scheduleEnvelope mirrors the rooms service wire format. IDs come back as
// numbers there, hence json.Number.
type scheduleEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		ID        json.Number `json:"id"`
		RoomID    json.Number `json:"room_id"`
		MovieID   string      `json:"movie_id"`
		StartTime string      `json:"start_time"`
		Cancelled bool        `json:"cancelled"`
	} `json:"data"`
	Error string `json:"error"`
}

func (c *ScheduleClient) GetSchedule(ctx context.Context, scheduleID string) (*Schedule, error) {
	url := fmt.Sprintf("%s/api/schedules/%s", c.baseURL, scheduleID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build schedule request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("Schedule lookup failed", zap.Error(err), zap.String("schedule_id", scheduleID))
		return nil, fmt.Errorf("get schedule %s: %w", scheduleID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read schedule response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("schedule %s: %w", scheduleID, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var envelope scheduleEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode schedule response: %w", err)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("schedule %s: %w", scheduleID, ErrNotFound)
	}

	showtime, err := parseShowtime(envelope.Data.StartTime)
	if err != nil {
		return nil, fmt.Errorf("parse showtime for schedule %s: %w", scheduleID, err)
	}

	return &Schedule{
		ID:        envelope.Data.ID.String(),
		RoomID:    envelope.Data.RoomID.String(),
		MovieID:   envelope.Data.MovieID,
		Showtime:  showtime,
		Cancelled: envelope.Data.Cancelled,
	}, nil
}

// parseShowtime accepts both RFC3339 and the rooms service's plain layout.
func parseShowtime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

var _ ScheduleAPI = (*ScheduleClient)(nil)
