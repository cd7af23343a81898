package ws

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated  EventType = "created"
	EventTypeUpdated  EventType = "updated"
	EventTypeDeleted  EventType = "deleted"
	EventTypeReplayed EventType = "replayed"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeWorkshop EntityType = "workshop"
	EntityTypeSync     EntityType = "sync"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "workshop.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "workshop"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WorkshopCreated creates a workshop.created event
func WorkshopCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeWorkshop, payload)
}

// WorkshopUpdated creates a workshop.updated event
func WorkshopUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeWorkshop, payload)
}

// WorkshopDeleted creates a workshop.deleted event
func WorkshopDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeWorkshop, payload)
}

// SyncReplayed creates a sync.replayed event
func SyncReplayed(payload interface{}) Event {
	return NewEvent(EventTypeReplayed, EntityTypeSync, payload)
}
