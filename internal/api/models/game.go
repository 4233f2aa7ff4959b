package models

import "ctchen222/Tikki-Tacca/internal/game"

// CreateGameRequest defines the body of a new game session request. All fields are optional.
type CreateGameRequest struct {
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=low medium high easy hard"`
}

// MoveRequest carries the cell the human selected. Range and occupancy are checked by the game.
type MoveRequest struct {
	Index *int `json:"index" binding:"required"`
}

// DifficultyRequest changes the difficulty of a game that has not started.
type DifficultyRequest struct {
	Difficulty string `json:"difficulty" binding:"required,oneof=low medium high easy hard"`
}

// GameResponse is returned by every game session endpoint.
type GameResponse struct {
	ID string `json:"id"`
	// Applied is set by move and difficulty requests: false means the game ignored the request.
	Applied *bool         `json:"applied,omitempty"`
	State   game.Snapshot `json:"state"`
}

// AIMoveRequest is the body of the move-decision endpoint.
type AIMoveRequest struct {
	Board      []game.Mark `json:"board"`
	Difficulty string      `json:"difficulty"`
}

// AIMoveResponse is the reply of the move-decision endpoint. A nil Move means no move is left.
type AIMoveResponse struct {
	Move *int `json:"move"`
}

// AIMoveError is the error body of the move-decision endpoint.
type AIMoveError struct {
	Error string `json:"error"`
}
