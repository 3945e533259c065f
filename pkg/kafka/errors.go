package kafka

import "errors"

var (
	// ErrProducerClosed is returned when publishing on a closed producer.
	ErrProducerClosed = errors.New("producer is closed")

	// ErrEmptyKey is returned when a message has no key. Keys carry the
	// booking id so confirmation events for one booking stay ordered.
	ErrEmptyKey = errors.New("message key cannot be empty")

	// ErrEmptyValue is returned when a message has no payload.
	ErrEmptyValue = errors.New("message value cannot be empty")
)
