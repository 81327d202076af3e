package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type CreateReservationInput struct {
	UserID      string   `json:"userId"`
	ScheduleID  string   `json:"scheduleId"`
	MovieID     string   `json:"movieId"`
	SeatIDs     []string `json:"seatIds"`
	TotalAmount float64  `json:"totalAmount"`
}

type ReservationAPI interface {
	// CreateReservation persists the durable reservation record. The
	// idempotency key makes the call safe to retry: the store returns the
	// original reservation for a repeated key.
	CreateReservation(ctx context.Context, idempotencyKey string, input CreateReservationInput) (string, error)

	// CancelReservation voids a reservation. Safe to retry; an already
	// cancelled or missing reservation is not an error.
	CancelReservation(ctx context.Context, reservationID string) error
}

type ReservationClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewReservationClient(baseURL string, timeout time.Duration, log *zap.Logger) *ReservationClient {
	return &ReservationClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With(zap.String("client", "reservation")),
	}
}

type reservationEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		ID json.Number `json:"id"`
	} `json:"data"`
	Error string `json:"error"`
}

func (c *ReservationClient) CreateReservation(ctx context.Context, idempotencyKey string, input CreateReservationInput) (string, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("marshal reservation payload: %w", err)
	}

	url := c.baseURL + "/api/reservations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build reservation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("Create reservation failed",
			zap.Error(err),
			zap.String("idempotency_key", idempotencyKey),
		)
		return "", fmt.Errorf("create reservation: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read reservation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var envelope reservationEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decode reservation response: %w", err)
	}
	if !envelope.Success {
		return "", &APIError{StatusCode: resp.StatusCode, Body: envelope.Error}
	}

	return envelope.Data.ID.String(), nil
}

func (c *ReservationClient) CancelReservation(ctx context.Context, reservationID string) error {
	url := fmt.Sprintf("%s/api/reservations/%s/cancel", c.baseURL, reservationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return fmt.Errorf("build cancel request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("Cancel reservation failed",
			zap.Error(err),
			zap.String("reservation_id", reservationID),
		)
		return fmt.Errorf("cancel reservation %s: %w", reservationID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read cancel response: %w", err)
	}

	// 404 means already gone, a repeated cancel is a no-op
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= 300 {
		if strings.Contains(string(body), "already cancelled") {
			return nil
		}
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return nil
}

var _ ReservationAPI = (*ReservationClient)(nil)
