package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMark        = errors.New("invalid mark")
	ErrUnknownDifficulty  = errors.New("unknown difficulty")
	ErrDecisionOutOfRange = errors.New("decided cell is out of range")
	ErrDecisionOccupied   = errors.New("decided cell is already occupied")
)

// Phase is the stage of a single game.
type Phase string

const (
	PhaseAwaitingHuman    Phase = "awaiting_human"
	PhaseAwaitingOpponent Phase = "awaiting_opponent"
	PhaseHumanWon         Phase = "human_won"
	PhaseOpponentWon      Phase = "opponent_won"
	PhaseDraw             Phase = "draw"
	PhaseError            Phase = "error"
)

// Status messages shown to the player, one per phase.
const (
	StatusYourTurn    = "Your turn!"
	StatusAIThinking  = "AI thinking..."
	StatusYouWin      = "You win!"
	StatusAIWins      = "AI wins!"
	StatusDraw        = "Draw!"
	StatusServiceDown = "Error communicating with AI"
)

// IsTerminal reports whether no further board mutation is allowed in this phase.
func (p Phase) IsTerminal() bool {
	switch p {
	case PhaseHumanWon, PhaseOpponentWon, PhaseDraw, PhaseError:
		return true
	default:
		return false
	}
}

// Winner returns the winning mark for a Won phase and Empty otherwise.
func (p Phase) Winner() Mark {
	switch p {
	case PhaseHumanWon:
		return Human
	case PhaseOpponentWon:
		return Opponent
	default:
		return Empty
	}
}

// StatusMessage derives the human-readable status purely from the phase.
func StatusMessage(p Phase) string {
	switch p {
	case PhaseAwaitingHuman:
		return StatusYourTurn
	case PhaseAwaitingOpponent:
		return StatusAIThinking
	case PhaseHumanWon:
		return StatusYouWin
	case PhaseOpponentWon:
		return StatusAIWins
	case PhaseDraw:
		return StatusDraw
	case PhaseError:
		return StatusServiceDown
	default:
		return ""
	}
}

func wonPhase(mark Mark) Phase {
	if mark == Human {
		return PhaseHumanWon
	}
	return PhaseOpponentWon
}

// Difficulty selects how strong the opponent plays.
type Difficulty string

const (
	DifficultyLow    Difficulty = "low"
	DifficultyMedium Difficulty = "medium"
	DifficultyHigh   Difficulty = "high"

	DefaultDifficulty = DifficultyHigh
)

// ParseDifficulty accepts the three level names case-insensitively; "hard" is an alias of high.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "easy":
		return DifficultyLow, nil
	case "medium":
		return DifficultyMedium, nil
	case "high", "hard":
		return DifficultyHigh, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

// Valid reports whether d is one of the three levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyLow, DifficultyMedium, DifficultyHigh:
		return true
	default:
		return false
	}
}

// State is the single mutable entity of a game. It is owned by a Controller.
type State struct {
	Board       Board
	Phase       Phase
	WinningLine []int
	Difficulty  Difficulty
	// Generation changes every time the state is replaced by a reset.
	Generation uint64
	// ErrorMessage is only set in PhaseError.
	ErrorMessage string
}

func newState(difficulty Difficulty, generation uint64) State {
	return State{
		Phase:      PhaseAwaitingHuman,
		Difficulty: difficulty,
		Generation: generation,
	}
}

// evaluate runs the terminal evaluation for the player who just moved.
// A completed line wins even when the same move fills the board.
func (s *State) evaluate(mover Mark) bool {
	if line, ok := CheckWinner(s.Board, mover); ok {
		s.WinningLine = line[:]
		s.Phase = wonPhase(mover)
		return true
	}
	if s.Board.IsFull() {
		s.Phase = PhaseDraw
		return true
	}
	return false
}

// Snapshot is the presentation-facing copy of a State.
type Snapshot struct {
	Board       Board      `json:"board"`
	Phase       Phase      `json:"phase"`
	Winner      Mark       `json:"winner"`
	WinningLine []int      `json:"winning_line"`
	Difficulty  Difficulty `json:"difficulty"`
	Status      string     `json:"status"`
	Generation  uint64     `json:"generation"`
	Error       string     `json:"error,omitempty"`
	// AcceptsInput is true only while the human may select a cell.
	AcceptsInput bool `json:"accepts_input"`
	// DifficultyLocked is true once the difficulty can no longer change for this game.
	DifficultyLocked bool `json:"difficulty_locked"`
}

func (s State) snapshot() Snapshot {
	line := make([]int, len(s.WinningLine))
	copy(line, s.WinningLine)
	return Snapshot{
		Board:            s.Board,
		Phase:            s.Phase,
		Winner:           s.Phase.Winner(),
		WinningLine:      line,
		Difficulty:       s.Difficulty,
		Status:           StatusMessage(s.Phase),
		Generation:       s.Generation,
		Error:            s.ErrorMessage,
		AcceptsInput:     s.Phase == PhaseAwaitingHuman,
		DifficultyLocked: !s.difficultyMutable(),
	}
}

func (s State) difficultyMutable() bool {
	return s.Phase == PhaseAwaitingHuman && s.Board.IsEmpty()
}
