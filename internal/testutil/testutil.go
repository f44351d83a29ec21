package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yourorg/internship-platform/internal/config"
	"github.com/yourorg/internship-platform/internal/events"
	"github.com/yourorg/internship-platform/internal/mailer"
	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ErrMailerDown is returned by a failing FakeMailer
var ErrMailerDown = errors.New("smtp: connection refused")

// NewTestDB opens a migrated in-memory SQLite database that is closed when
// the test finishes.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := repository.Connect(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		Path:   ":memory:",
	}, zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

// CreateUser inserts an active user with the given role and returns it
func CreateUser(t *testing.T, db *sqlx.DB, role, name, email string) *model.User {
	t.Helper()

	user := &model.User{
		DisplayName: name,
		Email:       email,
		Role:        role,
		Status:      model.UserStatusActive,
	}
	require.NoError(t, repository.NewUserRepository(db, zap.NewNop()).Create(context.Background(), user))
	return user
}

// FakeMailer records every message it is asked to send
type FakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail bool
}

// NewFakeMailer creates a mailer that succeeds
func NewFakeMailer() *FakeMailer {
	return &FakeMailer{}
}

// NewFailingMailer creates a mailer whose every send fails
func NewFailingMailer() *FakeMailer {
	return &FakeMailer{fail: true}
}

// Send records msg, failing with ErrMailerDown when configured to
func (m *FakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, msg)
	if m.fail {
		return ErrMailerDown
	}
	return nil
}

// Sent returns a copy of the recorded messages, including failed attempts
func (m *FakeMailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]mailer.Message, len(m.sent))
	copy(out, m.sent)
	return out
}

// FakePublisher records published events
type FakePublisher struct {
	mu       sync.Mutex
	messages map[string][]events.Message
	release  chan struct{}
	once     sync.Once
}

// NewFakePublisher creates an empty recording publisher
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{messages: make(map[string][]events.Message)}
}

// NewStalledPublisher creates a publisher whose sends hang until Release is
// called or their context ends, like a broker that stopped answering.
func NewStalledPublisher() *FakePublisher {
	return &FakePublisher{
		messages: make(map[string][]events.Message),
		release:  make(chan struct{}),
	}
}

// Release lets stalled sends complete
func (p *FakePublisher) Release() {
	if p.release == nil {
		return
	}
	p.once.Do(func() { close(p.release) })
}

// Publish records msg under topic
func (p *FakePublisher) Publish(ctx context.Context, topic string, msg events.Message) error {
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages[topic] = append(p.messages[topic], msg)
	return nil
}

// Close is a no-op
func (p *FakePublisher) Close() error { return nil }

// Messages returns the messages published to topic
func (p *FakePublisher) Messages(topic string) []events.Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]events.Message(nil), p.messages[topic]...)
}
