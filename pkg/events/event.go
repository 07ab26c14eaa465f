package events

import (
	"time"

	"github.com/google/uuid"
)

const TypeCrisisDetected = "CRISIS_DETECTED"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CRISIS_DETECTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Identified is implemented by events with a stable id, used for de-duplication.
type Identified interface {
	EventID() string
}

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

// CrisisDetected is raised when a chat message matches a crisis phrase.
type CrisisDetected struct {
	EventId        uuid.UUID `json:"event_id"`
	UserId         uuid.UUID `json:"user_id"`
	Username       string    `json:"username"`
	SessionId      uuid.UUID `json:"session_id"`
	Message        string    `json:"message"`
	MatchedPhrases []string  `json:"matched_phrases"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func (e CrisisDetected) EventType() string {
	return TypeCrisisDetected
}

func (e CrisisDetected) Payload() map[string]interface{} {
	return map[string]interface{}{
		"event_id":        e.EventId.String(),
		"user_id":         e.UserId.String(),
		"username":        e.Username,
		"session_id":      e.SessionId.String(),
		"message":         e.Message,
		"matched_phrases": e.MatchedPhrases,
		"occurred_at":     e.OccurredAt.Format(time.RFC3339),
	}
}

func (e CrisisDetected) EventID() string {
	return e.EventId.String()
}

func (e CrisisDetected) Timestamp() time.Time {
	return e.OccurredAt
}

// CrisisDetectedFromPayload rebuilds the event from a decoded bus payload.
func CrisisDetectedFromPayload(data map[string]interface{}) CrisisDetected {
	e := CrisisDetected{}
	if s, ok := data["event_id"].(string); ok {
		e.EventId, _ = uuid.Parse(s)
	}
	if s, ok := data["user_id"].(string); ok {
		e.UserId, _ = uuid.Parse(s)
	}
	if s, ok := data["session_id"].(string); ok {
		e.SessionId, _ = uuid.Parse(s)
	}
	e.Username, _ = data["username"].(string)
	e.Message, _ = data["message"].(string)
	if list, ok := data["matched_phrases"].([]interface{}); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				e.MatchedPhrases = append(e.MatchedPhrases, s)
			}
		}
	}
	if s, ok := data["occurred_at"].(string); ok {
		e.OccurredAt, _ = time.Parse(time.RFC3339, s)
	}
	return e
}
