package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Message is an event queued for a topic. Value is encoded as JSON.
type Message struct {
	Key     string
	Value   interface{}
	Headers []kafka.Header
}

// Publisher publishes messages to a topic
type Publisher interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Close() error
}

// Producer publishes to Kafka with one writer per topic. Messages sharing a
// key land on the same partition, so events for one recipient stay ordered.
type Producer struct {
	mu       sync.Mutex
	writers  map[string]*kafka.Writer
	brokers  []string
	clientID string
	logger   *zap.Logger
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, clientID string, logger *zap.Logger) *Producer {
	return &Producer{
		writers:  make(map[string]*kafka.Writer),
		brokers:  brokers,
		clientID: clientID,
		logger:   logger,
	}
}

func (p *Producer) writerFor(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{ClientID: p.clientID},
	}
	p.writers[topic] = w
	return w
}

// Publish encodes msg.Value and writes it to topic
func (p *Producer) Publish(ctx context.Context, topic string, msg Message) error {
	value, err := json.Marshal(msg.Value)
	if err != nil {
		return fmt.Errorf("encoding event for %s: %w", topic, err)
	}

	err = p.writerFor(topic).WriteMessages(ctx, kafka.Message{
		Key:     []byte(msg.Key),
		Value:   value,
		Headers: msg.Headers,
		Time:    time.Now().UTC(),
	})
	if err != nil {
		p.logger.Error("Failed to write event to Kafka",
			zap.String("topic", topic),
			zap.String("key", msg.Key),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Event written to Kafka", zap.String("topic", topic), zap.String("key", msg.Key))
	return nil
}

// Close flushes and closes every writer, returning all close errors combined
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("closing writer for %s: %w", topic, err))
		}
	}
	p.writers = make(map[string]*kafka.Writer)
	return errs
}
