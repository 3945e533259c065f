package kafka

import (
	"context"
	"fmt"
	"sync"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	kafka_config "gateless/pkg/kafka/config"
	"gateless/pkg/logger"
)

// Producer publishes messages to a single topic. Safe for concurrent use.
type Producer struct {
	writer *kafkago.Writer
	topic  string
	log    *logger.Logger

	mu     sync.RWMutex
	closed bool
}

func NewProducer(cfg *kafka_config.Config, topic string, log *logger.Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		MaxAttempts:  cfg.ProducerMaxAttempts,
		BatchTimeout: cfg.ProducerBatchTimeout,
		RequiredAcks: kafkago.RequiredAcks(cfg.ProducerRequireAcks),
		Compression:  compressionCodec(cfg.ProducerCompression),
		Async:        cfg.ProducerAsync,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
		log:    log,
	}
}

// Publish writes a single message, blocking until the broker acknowledges
// (unless the producer is configured async).
func (p *Producer) Publish(ctx context.Context, msg kafkago.Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrProducerClosed
	}
	p.mu.RUnlock()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish message to topic %s: %w", p.topic, err)
	}

	p.log.Debug("Message published",
		"topic", p.topic,
		"key", string(msg.Key),
	)
	return nil
}

func (p *Producer) Topic() string {
	return p.topic
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close producer for topic %s: %w", p.topic, err)
	}
	return nil
}

func compressionCodec(name string) kafkago.Compression {
	switch name {
	case "gzip":
		return kafkago.Compression(compress.Gzip)
	case "snappy":
		return kafkago.Compression(compress.Snappy)
	case "lz4":
		return kafkago.Compression(compress.Lz4)
	case "zstd":
		return kafkago.Compression(compress.Zstd)
	default:
		return kafkago.Compression(compress.None)
	}
}
