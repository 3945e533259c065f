package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	HeaderEventType     = "event-type"
	HeaderEventID       = "event-id"
	HeaderSource        = "source"
	HeaderCorrelationID = "correlation-id"
	HeaderTimestamp     = "timestamp"
	HeaderContentType   = "content-type"
)

// MessageBuilder assembles a Kafka message with the standard event headers.
type MessageBuilder struct {
	key           []byte
	value         []byte
	eventType     string
	source        string
	correlationID string
	headers       []kafkago.Header
	err           error
}

func NewMessage() *MessageBuilder {
	return &MessageBuilder{}
}

func (b *MessageBuilder) WithKey(key string) *MessageBuilder {
	b.key = []byte(key)
	return b
}

// WithValue JSON-encodes the payload.
func (b *MessageBuilder) WithValue(value any) *MessageBuilder {
	data, err := json.Marshal(value)
	if err != nil {
		b.err = fmt.Errorf("failed to marshal message value: %w", err)
		return b
	}
	b.value = data
	return b
}

func (b *MessageBuilder) WithRawValue(value []byte) *MessageBuilder {
	b.value = value
	return b
}

func (b *MessageBuilder) WithEventType(eventType string) *MessageBuilder {
	b.eventType = eventType
	return b
}

func (b *MessageBuilder) WithSource(source string) *MessageBuilder {
	b.source = source
	return b
}

func (b *MessageBuilder) WithCorrelationID(id string) *MessageBuilder {
	b.correlationID = id
	return b
}

func (b *MessageBuilder) WithHeader(key, value string) *MessageBuilder {
	b.headers = append(b.headers, kafkago.Header{Key: key, Value: []byte(value)})
	return b
}

func (b *MessageBuilder) Build() (kafkago.Message, error) {
	if b.err != nil {
		return kafkago.Message{}, b.err
	}
	if len(b.key) == 0 {
		return kafkago.Message{}, ErrEmptyKey
	}
	if len(b.value) == 0 {
		return kafkago.Message{}, ErrEmptyValue
	}

	headers := []kafkago.Header{
		{Key: HeaderEventID, Value: []byte(uuid.NewString())},
		{Key: HeaderTimestamp, Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		{Key: HeaderContentType, Value: []byte("application/json")},
	}
	if b.eventType != "" {
		headers = append(headers, kafkago.Header{Key: HeaderEventType, Value: []byte(b.eventType)})
	}
	if b.source != "" {
		headers = append(headers, kafkago.Header{Key: HeaderSource, Value: []byte(b.source)})
	}
	if b.correlationID != "" {
		headers = append(headers, kafkago.Header{Key: HeaderCorrelationID, Value: []byte(b.correlationID)})
	}
	headers = append(headers, b.headers...)

	return kafkago.Message{
		Key:     b.key,
		Value:   b.value,
		Headers: headers,
	}, nil
}
