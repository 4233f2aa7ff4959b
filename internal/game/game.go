package game

import (
	"fmt"
)

// Mark is the content of a single cell.
type Mark uint8

const (
	Empty Mark = iota
	Human
	Opponent
)

// Board dimensions.
const (
	BoardSize = 9
	BorderMin = 0
	BorderMax = BoardSize - 1
)

// WinLines are the eight index triples that win the game: three rows, three columns, two diagonals.
var WinLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is the 3x3 grid stored row-major. The zero value is an empty board.
type Board [BoardSize]Mark

// String returns the wire symbol of the mark: " ", "X" or "O".
func (m Mark) String() string {
	switch m {
	case Human:
		return "X"
	case Opponent:
		return "O"
	default:
		return " "
	}
}

// MarshalText encodes the mark as its wire symbol.
func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts " ", "" (empty), "X" and "O".
func (m *Mark) UnmarshalText(text []byte) error {
	switch string(text) {
	case " ", "":
		*m = Empty
	case "X":
		*m = Human
	case "O":
		*m = Opponent
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMark, string(text))
	}
	return nil
}

// InBounds reports whether index addresses a cell of the board.
func InBounds(index int) bool {
	return index >= BorderMin && index <= BorderMax
}

// CheckWinner reports whether mark occupies one of the winning lines and returns that line.
// Lines are scanned in WinLines order, so the first completed line wins when several exist.
func CheckWinner(board Board, mark Mark) ([3]int, bool) {
	if mark == Empty {
		return [3]int{}, false
	}
	for _, line := range WinLines {
		if board[line[0]] == mark && board[line[1]] == mark && board[line[2]] == mark {
			return line, true
		}
	}
	return [3]int{}, false
}

// IsFull reports whether no empty cell is left.
func (b Board) IsFull() bool {
	for _, cell := range b {
		if cell == Empty {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no mark has been placed yet.
func (b Board) IsEmpty() bool {
	for _, cell := range b {
		if cell != Empty {
			return false
		}
	}
	return true
}

// EmptyCells returns the indices of all empty cells in ascending order.
func (b Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range b {
		if cell == Empty {
			cells = append(cells, i)
		}
	}
	return cells
}

// String renders the board as three text rows, mostly for logs and the terminal client.
func (b Board) String() string {
	return fmt.Sprintf("%s|%s|%s\n-+-+-\n%s|%s|%s\n-+-+-\n%s|%s|%s",
		b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
}
