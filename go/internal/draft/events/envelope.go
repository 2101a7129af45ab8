package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType is the kind of event carried by an Envelope.
type EventType string

const (
	EventTypeStateChanged               EventType = "StateChanged"
	EventTypePickMade                   EventType = "PickMade"
	EventTypeParticipantPresenceChanged EventType = "ParticipantPresenceChanged"
	EventTypeTimerArmed                 EventType = "TimerArmed"
)

// SubjectPrefix is the JetStream subject root for draft events.
const SubjectPrefix = "draft.events"

// Envelope wraps every draft event on the wire and in the outbox.
type Envelope struct {
	EventID   uuid.UUID       `json:"eventId"`
	EventType EventType       `json:"eventType"`
	DraftID   uuid.UUID       `json:"draftId"`
	Sequence  int64           `json:"sequence"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into an envelope.
func NewEnvelope(draftID uuid.UUID, sequence int64, eventType EventType, payload any, at time.Time) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:   uuid.New(),
		EventType: eventType,
		DraftID:   draftID,
		Sequence:  sequence,
		Timestamp: at,
		Payload:   raw,
	}, nil
}

// Subject returns the JetStream subject for the envelope.
func (e Envelope) Subject() string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, e.EventType)
}

// Decode parses the payload into the struct that matches the event type.
func (e Envelope) Decode() (any, error) {
	var target any
	switch e.EventType {
	case EventTypeStateChanged:
		target = &StateChangedPayload{}
	case EventTypePickMade:
		target = &PickMadePayload{}
	case EventTypeParticipantPresenceChanged:
		target = &ParticipantPresenceChangedPayload{}
	case EventTypeTimerArmed:
		target = &TimerArmedPayload{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", e.EventType)
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s payload: %w", e.EventType, err)
	}
	return target, nil
}
