package proto

import "ctchen222/Tikki-Tacca/internal/game"

// Client message types.
const (
	TypeSelect     = "select"
	TypeReset      = "reset"
	TypeDifficulty = "difficulty"
)

// Server message types.
const (
	TypeState = "state"
	TypeError = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type       string `json:"type" validate:"required,oneof=select reset difficulty"`
	Index      *int   `json:"index,omitempty" validate:"required_if=Type select,omitempty,min=0,max=8"`
	Difficulty string `json:"difficulty,omitempty" validate:"required_if=Type difficulty,omitempty,oneof=low medium high easy hard"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type   string         `json:"type" validate:"required"`
	Reason string         `json:"reason,omitempty"`
	State  *game.Snapshot `json:"state,omitempty"`
}

// NewStateMessage wraps a snapshot for the wire.
func NewStateMessage(state game.Snapshot) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeState, State: &state}
}

// NewErrorMessage reports a rejected client message.
func NewErrorMessage(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Reason: reason}
}
