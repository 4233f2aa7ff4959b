package bot

import (
	"math"

	"ctchen222/Tikki-Tacca/internal/game"
)

// Minimax scores: a quicker win scores higher, a slower loss scores higher.
const (
	winScore  = 10
	drawScore = 0
)

// CalculateNextMove picks the opponent move for board at the given difficulty.
// ok is false when the board has no empty cell.
func (d *LocalDecider) CalculateNextMove(board game.Board, difficulty game.Difficulty) (move int, ok bool) {
	switch difficulty {
	case game.DifficultyLow:
		return d.randomMove(board)
	case game.DifficultyMedium:
		return d.mediumMove(board)
	default:
		return bestMove(board)
	}
}

// randomMove takes any empty cell.
func (d *LocalDecider) randomMove(board game.Board) (int, bool) {
	empties := board.EmptyCells()
	if len(empties) == 0 {
		return -1, false
	}
	return empties[d.intN(len(empties))], true
}

// mediumMove flips a coin between a random move and the optimal one.
func (d *LocalDecider) mediumMove(board game.Board) (int, bool) {
	if d.randFloat() < 0.5 {
		return d.randomMove(board)
	}
	return bestMove(board)
}

// bestMove runs a full minimax search with the opponent maximising.
// Cells are tried in index order and only a strictly better score replaces the current pick.
func bestMove(board game.Board) (int, bool) {
	best := math.MinInt
	move := -1
	for i := range board {
		if board[i] != game.Empty {
			continue
		}
		board[i] = game.Opponent
		score := minimax(&board, 0, false)
		board[i] = game.Empty
		if score > best {
			best = score
			move = i
		}
	}
	return move, move >= 0
}

func minimax(board *game.Board, depth int, maximizing bool) int {
	if _, won := game.CheckWinner(*board, game.Opponent); won {
		return winScore - depth
	}
	if _, won := game.CheckWinner(*board, game.Human); won {
		return depth - winScore
	}
	if board.IsFull() {
		return drawScore
	}

	mark, best := game.Human, math.MaxInt
	if maximizing {
		mark, best = game.Opponent, math.MinInt
	}
	for i := range board {
		if board[i] != game.Empty {
			continue
		}
		board[i] = mark
		score := minimax(board, depth+1, !maximizing)
		board[i] = game.Empty
		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}
	return best
}
