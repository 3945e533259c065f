// Package notify publishes booking confirmation events for the downstream
// notification engine (SMS and WhatsApp delivery happen there, not here).
package notify

import (
	"context"
	"fmt"

	"gateless/pkg/kafka"
	"gateless/pkg/logger"
)

const eventTypeBookingConfirmed = "booking.confirmed"

// Confirmation carries everything the notification engine needs to compose
// a message without calling back into this service.
type Confirmation struct {
	BookingID     string  `json:"booking_id"`
	Phone         string  `json:"phone"`
	LocationName  string  `json:"location_name"`
	StreetAddress string  `json:"street_address"`
	BookingDate   string  `json:"booking_date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	Plate         string  `json:"plate"`
	Amount        float64 `json:"amount"`
}

// Gateway delivers booking confirmations. Delivery is best effort and must
// never affect the booking's outcome.
type Gateway interface {
	SendConfirmation(ctx context.Context, c Confirmation) error
	Close() error
}

// KafkaGateway publishes confirmations keyed by booking id so events for the
// same booking land on one partition in order.
type KafkaGateway struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaGateway(producer *kafka.Producer, source string, log *logger.Logger) *KafkaGateway {
	return &KafkaGateway{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (g *KafkaGateway) SendConfirmation(ctx context.Context, c Confirmation) error {
	msg, err := kafka.NewMessage().
		WithKey(c.BookingID).
		WithValue(c).
		WithEventType(eventTypeBookingConfirmed).
		WithSource(g.source).
		WithCorrelationID(c.BookingID).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build confirmation event: %w", err)
	}

	if err := g.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish confirmation event: %w", err)
	}

	g.log.Info("Booking confirmation published",
		"booking_id", c.BookingID,
		"topic", g.producer.Topic(),
	)
	return nil
}

func (g *KafkaGateway) Close() error {
	return g.producer.Close()
}

// NopGateway is used when notifications are disabled.
type NopGateway struct{}

func (NopGateway) SendConfirmation(_ context.Context, _ Confirmation) error { return nil }
func (NopGateway) Close() error                                             { return nil }
