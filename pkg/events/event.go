package events

import "time"

// Lifecycle event codes emitted by the annotation engine.
const (
	TypeGenerationRequested = "GENERATION_REQUESTED"
	TypeGenerationCompleted = "GENERATION_COMPLETED"
	TypeGenerationFailed    = "GENERATION_FAILED"
	TypeVersionAccepted     = "VERSION_ACCEPTED"
	TypeVersionDiscarded    = "VERSION_DISCARDED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "GENERATION_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used throughout the service.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
