package controller

import (
	"errors"
	"io"
	"net/http"

	"ctchen222/Tikki-Tacca/internal/api/models"
	"ctchen222/Tikki-Tacca/internal/api/response"
	"ctchen222/Tikki-Tacca/internal/api/service"
	"ctchen222/Tikki-Tacca/internal/game"

	"github.com/gin-gonic/gin"
)

// GameController handles game session HTTP requests.
type GameController struct {
	gameService service.GameService
}

// NewGameController creates a new GameController.
func NewGameController(gameService service.GameService) *GameController {
	return &GameController{
		gameService: gameService,
	}
}

// Create starts a new game session.
func (gc *GameController) Create(c *gin.Context) {
	var req models.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var difficulty game.Difficulty
	if req.Difficulty != "" {
		difficulty, _ = game.ParseDifficulty(req.Difficulty)
	}

	id, state := gc.gameService.Create(c.Request.Context(), difficulty)
	response.SuccessResponseWithCode(c, http.StatusCreated, models.GameResponse{ID: id, State: state})
}

// Get returns the current state of a session.
func (gc *GameController) Get(c *gin.Context) {
	id := c.Param("id")
	state, err := gc.gameService.Get(c.Request.Context(), id)
	if err != nil {
		sessionError(c, err)
		return
	}
	response.SuccessResponse(c, models.GameResponse{ID: id, State: state})
}

// SelectCell plays the human move. The opponent reply is applied asynchronously.
func (gc *GameController) SelectCell(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	id := c.Param("id")
	applied, state, err := gc.gameService.SelectCell(c.Request.Context(), id, *req.Index)
	if err != nil {
		sessionError(c, err)
		return
	}
	response.SuccessResponse(c, models.GameResponse{ID: id, Applied: &applied, State: state})
}

// SetDifficulty changes the difficulty before the first move.
func (gc *GameController) SetDifficulty(c *gin.Context) {
	var req models.DifficultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	level, err := game.ParseDifficulty(req.Difficulty)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	id := c.Param("id")
	applied, state, err := gc.gameService.SetDifficulty(c.Request.Context(), id, level)
	if err != nil {
		sessionError(c, err)
		return
	}
	response.SuccessResponse(c, models.GameResponse{ID: id, Applied: &applied, State: state})
}

// Reset starts the session over.
func (gc *GameController) Reset(c *gin.Context) {
	id := c.Param("id")
	state, err := gc.gameService.Reset(c.Request.Context(), id)
	if err != nil {
		sessionError(c, err)
		return
	}
	response.SuccessResponse(c, models.GameResponse{ID: id, State: state})
}

// Delete ends the session.
func (gc *GameController) Delete(c *gin.Context) {
	if err := gc.gameService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		sessionError(c, err)
		return
	}
	response.SuccessResponse(c, gin.H{"message": "Game deleted"})
}

func sessionError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		response.ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
}
