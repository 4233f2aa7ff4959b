package events

import (
	"encoding/json"
	"fmt"

	"ctchen222/Tikki-Tacca/internal/game"
)

// Event types.
const (
	StateChanged = "state_changed"
)

// GameChannel returns the Pub/Sub channel carrying the events of one game session.
func GameChannel(gameID string) string {
	return "channel:game:" + gameID
}

// Event represents a message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// StateChangedPayload is the payload for the "state_changed" event.
type StateChangedPayload struct {
	GameID string        `json:"game_id"`
	State  game.Snapshot `json:"state"`
}

// NewStateChanged builds a "state_changed" event.
func NewStateChanged(gameID string, state game.Snapshot) (Event, error) {
	payload, err := json.Marshal(StateChangedPayload{GameID: gameID, State: state})
	if err != nil {
		return Event{}, fmt.Errorf("encoding %s payload: %w", StateChanged, err)
	}
	return Event{Type: StateChanged, Payload: payload}, nil
}
