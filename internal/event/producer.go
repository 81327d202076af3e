package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TypeBookingSucceeded = "booking_succeeded"
	TypeBookingFailed    = "booking_failed"
	TypeHoldsReaped      = "holds_reaped"
)

// BookingEvent is the record published for every terminal booking outcome
// and for reaper sweeps; the analytics service consumes the topic.
type BookingEvent struct {
	Type          string    `json:"type"`
	RequestID     string    `json:"request_id,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	ScheduleID    string    `json:"schedule_id,omitempty"`
	MovieID       string    `json:"movie_id,omitempty"`
	SeatIDs       []string  `json:"seat_ids,omitempty"`
	ReservationID string    `json:"reservation_id,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	TotalAmount   float64   `json:"total_amount,omitempty"`
	ReapedSeats   int       `json:"reaped_seats,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Producer struct {
	writer *kafka.Writer
	topic  string
	log    *zap.Logger
}

func NewProducer(brokers []string, topic string, log *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
		log:    log.With(zap.String("producer", "kafka")),
	}
}

func (p *Producer) Publish(ctx context.Context, key string, evt BookingEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	message := kafka.Message{
		Topic: p.topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("write event to kafka: %w", err)
	}

	p.log.Debug("Event published",
		zap.String("type", evt.Type),
		zap.String("key", key),
	)
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
