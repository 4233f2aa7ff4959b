package bot

import (
	"math/rand/v2"
	"testing"

	"ctchen222/Tikki-Tacca/internal/game"

	"github.com/stretchr/testify/assert"
)

func boardOf(cells string) game.Board {
	var b game.Board
	for i, c := range cells {
		switch c {
		case 'X':
			b[i] = game.Human
		case 'O':
			b[i] = game.Opponent
		}
	}
	return b
}

func TestBestMove(t *testing.T) {
	tests := []struct {
		name     string
		board    game.Board
		wantMove int
		wantOK   bool
	}{
		{
			name:     "Takes the winning cell",
			board:    boardOf("OO.XX...."),
			wantMove: 2,
			wantOK:   true,
		},
		{
			name:     "Blocks the human row",
			board:    boardOf("XX..O...."),
			wantMove: 2,
			wantOK:   true,
		},
		{
			name:     "Blocks the human diagonal",
			board:    boardOf("X..OX...."),
			wantMove: 8,
			wantOK:   true,
		},
		{
			name:     "Answers a corner opening with the center",
			board:    boardOf("X........"),
			wantMove: 4,
			wantOK:   true,
		},
		{
			name:     "Prefers winning over blocking",
			board:    boardOf("XX.OO...X"),
			wantMove: 5,
			wantOK:   true,
		},
		{
			name:     "No move on a full board",
			board:    boardOf("XOXXOOOXX"),
			wantMove: -1,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			move, ok := bestMove(tt.board)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMove, move)
		})
	}
}

// TestBestMove_NeverLoses plays every possible human line against the high difficulty.
func TestBestMove_NeverLoses(t *testing.T) {
	var explore func(board game.Board) int
	explore = func(board game.Board) (games int) {
		for _, h := range board.EmptyCells() {
			next := board
			next[h] = game.Human
			if _, won := game.CheckWinner(next, game.Human); won {
				t.Fatalf("human won with board\n%s", next)
			}
			if next.IsFull() {
				games++
				continue
			}

			move, ok := bestMove(next)
			if !assert.True(t, ok) || !assert.Equal(t, game.Empty, next[move]) {
				return games
			}
			next[move] = game.Opponent
			if _, won := game.CheckWinner(next, game.Opponent); won || next.IsFull() {
				games++
				continue
			}
			games += explore(next)
		}
		return games
	}

	assert.Positive(t, explore(game.Board{}))
}

func TestRandomMove(t *testing.T) {
	d := NewLocalDecider(rand.NewPCG(1, 2))
	board := boardOf("XOX.O.XO.")

	for range 50 {
		move, ok := d.randomMove(board)
		assert.True(t, ok)
		assert.Contains(t, []int{3, 5, 8}, move)
	}

	_, ok := d.randomMove(boardOf("XOXXOOOXX"))
	assert.False(t, ok)
}

func TestRandomMove_CoversEveryEmptyCell(t *testing.T) {
	// Not a statistical test, only checks that no empty cell is unreachable.
	d := NewLocalDecider(nil)
	board := boardOf("XOXOXO...")

	seen := map[int]bool{}
	for range 300 {
		move, _ := d.randomMove(board)
		seen[move] = true
	}
	assert.Equal(t, map[int]bool{6: true, 7: true, 8: true}, seen)
}

func TestCalculateNextMove(t *testing.T) {
	board := boardOf("OO.XX....")
	d := NewLocalDecider(rand.NewPCG(7, 7))

	t.Run("high plays the optimal move", func(t *testing.T) {
		move, ok := d.CalculateNextMove(board, game.DifficultyHigh)
		assert.True(t, ok)
		assert.Equal(t, 2, move)
	})

	t.Run("unknown difficulty plays like high", func(t *testing.T) {
		move, ok := d.CalculateNextMove(board, game.Difficulty("whatever"))
		assert.True(t, ok)
		assert.Equal(t, 2, move)
	})

	for _, level := range []game.Difficulty{game.DifficultyLow, game.DifficultyMedium} {
		t.Run(string(level)+" returns a legal move", func(t *testing.T) {
			for range 30 {
				move, ok := d.CalculateNextMove(board, level)
				assert.True(t, ok)
				assert.Equal(t, game.Empty, board[move])
			}
		})
	}

	t.Run("full board has no move", func(t *testing.T) {
		for _, level := range []game.Difficulty{game.DifficultyLow, game.DifficultyMedium, game.DifficultyHigh} {
			_, ok := d.CalculateNextMove(boardOf("XOXXOOOXX"), level)
			assert.False(t, ok, string(level))
		}
	})
}
