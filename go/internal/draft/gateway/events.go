package gateway

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
)

// MessageType names a server to client websocket message.
type MessageType string

const (
	// MessageTypeSnapshot carries the full draft state. Clients replace their
	// state with it and drop later events at or below its sequence.
	MessageTypeSnapshot MessageType = "Snapshot"
	// MessageTypeEvent carries one committed draft event.
	MessageTypeEvent MessageType = "Event"
	// MessageTypeCommandResult answers a client command.
	MessageTypeCommandResult MessageType = "CommandResult"
	MessageTypeError         MessageType = "Error"
)

// ServerMessage is the envelope for everything the gateway writes to a socket.
type ServerMessage struct {
	Type      MessageType      `json:"type"`
	DraftID   string           `json:"draft_id"`
	Sequence  int64            `json:"sequence,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Event     *DraftEvent      `json:"event,omitempty"`
	Snapshot  *ledger.Snapshot `json:"snapshot,omitempty"`
	Result    *CommandResult   `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// DraftEvent is a committed engine event as seen by websocket clients
type DraftEvent struct {
	ID        string           `json:"id"`
	DraftID   string           `json:"draft_id"`
	Type      events.EventType `json:"type"`
	Sequence  int64            `json:"sequence"`
	Timestamp time.Time        `json:"timestamp"`
	Data      json.RawMessage  `json:"data"`
}

func newDraftEvent(env events.Envelope) *DraftEvent {
	return &DraftEvent{
		ID:        env.EventID.String(),
		DraftID:   env.DraftID.String(),
		Type:      env.EventType,
		Sequence:  env.Sequence,
		Timestamp: env.Timestamp,
		Data:      env.Payload,
	}
}

// CommandType names a client to server command.
type CommandType string

const (
	CommandMakePick    CommandType = "make_pick"
	CommandSetAutopick CommandType = "set_autopick"
	CommandSync        CommandType = "sync"
)

// ClientCommand is a message read from a socket.
type ClientCommand struct {
	Type      CommandType `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	PlayerID  uuid.UUID   `json:"player_id,omitempty"`
	Enabled   bool        `json:"enabled,omitempty"`
}

// CommandResult reports the outcome of a client command.
type CommandResult struct {
	RequestID string      `json:"request_id,omitempty"`
	Command   CommandType `json:"command"`
	OK        bool        `json:"ok"`
	Error     string      `json:"error,omitempty"`
	// Code is a stable machine-readable error kind, e.g. "not_your_turn".
	Code string `json:"code,omitempty"`
}
