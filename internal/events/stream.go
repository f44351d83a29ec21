package events

import (
	"context"
	"sync"
	"time"

	"github.com/yourorg/internship-platform/internal/config"
	"github.com/yourorg/internship-platform/internal/model"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	defaultQueueSize      = 256
	defaultPublishTimeout = 5 * time.Second
)

type queuedMessage struct {
	ctx   context.Context
	topic string
	kind  string
	msg   Message
}

// Stream publishes domain events on a best-effort basis. Events are queued
// and written by a single background worker, so callers never wait on the
// broker and events keep their publication order. Publish failures are
// logged and never returned. A nil Stream publishes nothing.
type Stream struct {
	publisher Publisher
	topics    config.TopicsConfig
	timeout   time.Duration
	logger    *zap.Logger

	mu      sync.RWMutex
	closed  bool
	queue   chan queuedMessage
	pending sync.WaitGroup
	done    chan struct{}
}

// NewStream creates a stream publishing to the configured topics and starts
// its worker. Call Close to flush queued events.
func NewStream(publisher Publisher, topics config.TopicsConfig, logger *zap.Logger) *Stream {
	s := &Stream{
		publisher: publisher,
		topics:    topics,
		timeout:   defaultPublishTimeout,
		logger:    logger,
		queue:     make(chan queuedMessage, defaultQueueSize),
		done:      make(chan struct{}),
	}
	if publisher == nil {
		close(s.done)
		return s
	}

	go s.run()
	return s
}

// NotificationCreated publishes a notification.created event keyed by recipient
func (s *Stream) NotificationCreated(ctx context.Context, n *model.Notification) {
	if s == nil {
		return
	}
	s.publish(ctx, s.topics.Notifications, n.UserID, model.EventNotificationCreated, n)
}

// AuditRecorded publishes an audit.recorded event keyed by actor
func (s *Stream) AuditRecorded(ctx context.Context, entry *model.AuditLog) {
	if s == nil {
		return
	}
	s.publish(ctx, s.topics.Audit, entry.UserID, model.EventAuditRecorded, entry)
}

// Wait blocks until every queued event has been handed to the publisher
func (s *Stream) Wait() {
	if s == nil {
		return
	}
	s.pending.Wait()
}

// Close stops accepting events and waits for the queue to drain
func (s *Stream) Close() {
	if s == nil {
		return
	}

	s.mu.Lock()
	if !s.closed {
		s.closed = true
		if s.publisher != nil {
			close(s.queue)
		}
	}
	s.mu.Unlock()

	<-s.done
}

func (s *Stream) publish(ctx context.Context, topic, key, kind string, payload interface{}) {
	if s.publisher == nil || topic == "" {
		return
	}

	event := model.Event{
		ID:         uuid.New().String(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	item := queuedMessage{
		// The request may finish before the worker gets to this event
		ctx:   context.WithoutCancel(ctx),
		topic: topic,
		kind:  kind,
		msg: Message{
			Key:     key,
			Value:   event,
			Headers: []kafka.Header{{Key: "kind", Value: []byte(kind)}},
		},
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.Warn("Event stream closed, dropping event", zap.String("kind", kind))
		return
	}

	s.pending.Add(1)
	select {
	case s.queue <- item:
	default:
		s.pending.Done()
		s.logger.Warn("Event queue full, dropping event",
			zap.String("kind", kind),
			zap.String("topic", topic))
	}
}

func (s *Stream) run() {
	defer close(s.done)

	for item := range s.queue {
		ctx, cancel := context.WithTimeout(item.ctx, s.timeout)
		err := s.publisher.Publish(ctx, item.topic, item.msg)
		cancel()

		if err != nil {
			s.logger.Warn("Failed to publish event",
				zap.String("kind", item.kind),
				zap.String("topic", item.topic),
				zap.Error(err))
		}
		s.pending.Done()
	}
}
