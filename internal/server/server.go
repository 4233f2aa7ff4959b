package server

import (
	"log/slog"
	"net/http"

	"ctchen222/Tikki-Tacca/internal/api/controller"
	"ctchen222/Tikki-Tacca/internal/api/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("server")

type Server struct {
	games     service.GameService
	gameCtrl  *controller.GameController
	decisions *controller.DecisionController
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

func NewServer(games service.GameService, gameCtrl *controller.GameController, decisions *controller.DecisionController) *Server {
	return &Server{
		games:     games,
		gameCtrl:  gameCtrl,
		decisions: decisions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: slog.Default().With("component", "server"),
	}
}

// Engine builds the gin router with every route of the service.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// Move-decision service
	r.POST("/ai-move", s.decisions.AIMove)

	api := r.Group("/api")
	{
		games := api.Group("/games")
		games.POST("", s.gameCtrl.Create)
		games.GET("/:id", s.gameCtrl.Get)
		games.DELETE("/:id", s.gameCtrl.Delete)
		games.POST("/:id/moves", s.gameCtrl.SelectCell)
		games.PUT("/:id/difficulty", s.gameCtrl.SetDifficulty)
		games.POST("/:id/reset", s.gameCtrl.Reset)
	}

	r.GET("/ws/games/:id", s.handleWebSocket)

	return r
}
