package model

import (
	"time"
)

// Event is the envelope published to the event stream
type Event struct {
	ID         string      `json:"id"`
	Kind       string      `json:"kind"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Event kinds
const (
	EventAuditRecorded       = "audit.recorded"
	EventNotificationCreated = "notification.created"
)
