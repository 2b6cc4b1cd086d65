package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is an auth telemetry event as it travels through Kafka to the worker.
type Event struct {
	ID        string            `json:"id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewEvent returns an Event with a fresh id and the current time.
func NewEvent(eventType, userID, sessionID, ip string) *Event {
	return &Event{
		ID:        uuid.New().String(),
		EventType: eventType,
		UserID:    userID,
		SessionID: sessionID,
		IP:        ip,
		CreatedAt: time.Now().UTC(),
	}
}
