package controller

import (
	"log/slog"
	"net/http"

	"ctchen222/Tikki-Tacca/internal/api/models"
	"ctchen222/Tikki-Tacca/internal/game"

	"github.com/gin-gonic/gin"
)

const invalidBoard = "Invalid board"

// MoveCalculator picks a move for a board, as the in-process bot does.
type MoveCalculator interface {
	CalculateNextMove(board game.Board, difficulty game.Difficulty) (move int, ok bool)
}

// DecisionController serves the move-decision endpoint used by remote game controllers.
// Its bodies are bare JSON, not the response envelope, so any compatible client can call it.
type DecisionController struct {
	calculator MoveCalculator
}

// NewDecisionController creates a new DecisionController.
func NewDecisionController(calculator MoveCalculator) *DecisionController {
	return &DecisionController{calculator: calculator}
}

// AIMove answers {"move": n} or {"move": null} for a board of nine marks.
// A missing or unknown difficulty plays at high.
func (dc *DecisionController) AIMove(c *gin.Context) {
	var req models.AIMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.DebugContext(c.Request.Context(), "Rejected move request", "error", err)
		c.JSON(http.StatusBadRequest, models.AIMoveError{Error: invalidBoard})
		return
	}
	if len(req.Board) != game.BoardSize {
		c.JSON(http.StatusBadRequest, models.AIMoveError{Error: invalidBoard})
		return
	}

	var board game.Board
	copy(board[:], req.Board)

	difficulty, err := game.ParseDifficulty(req.Difficulty)
	if err != nil {
		difficulty = game.DifficultyHigh
	}

	var resp models.AIMoveResponse
	if move, ok := dc.calculator.CalculateNextMove(board, difficulty); ok {
		resp.Move = &move
	}
	c.JSON(http.StatusOK, resp)
}
