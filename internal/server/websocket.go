package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ctchen222/Tikki-Tacca/internal/api/response"
	"ctchen222/Tikki-Tacca/internal/api/service"
	"ctchen222/Tikki-Tacca/internal/game"
	"ctchen222/Tikki-Tacca/internal/validator"
	"ctchen222/Tikki-Tacca/pkg/proto"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	heartbeatInterval = 10 * time.Second
	pongWait          = 2 * heartbeatInterval
	writeWait         = 5 * time.Second
	maxMessageSize    = 1024
)

// watcher is one WebSocket connection attached to a game session.
type watcher struct {
	gameID  string
	conn    *websocket.Conn
	games   service.GameService
	replies chan *proto.ServerToClientMessage
	logger  *slog.Logger
}

// handleWebSocket streams the session state and accepts select/reset/difficulty commands.
func (s *Server) handleWebSocket(c *gin.Context) {
	gameID := c.Param("id")
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("game.id", gameID),
	))
	defer span.End()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, stop, err := s.games.Watch(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to watch game")
		if errors.Is(err, service.ErrSessionNotFound) {
			response.ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer stop()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to upgrade connection", "game.id", gameID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	w := &watcher{
		gameID:  gameID,
		conn:    conn,
		games:   s.games,
		replies: make(chan *proto.ServerToClientMessage, 8),
		logger:  s.logger.With("game.id", gameID),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.writePump(ctx, updates)
	}()
	w.readPump(ctx)

	cancel()
	<-done
	_ = conn.Close()
}

// readPump dispatches client commands until the connection fails.
func (w *watcher) readPump(ctx context.Context) {
	w.conn.SetReadLimit(maxMessageSize)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				w.logger.WarnContext(ctx, "Watcher connection error", "error", err)
			}
			return
		}
		w.handleMessage(ctx, raw)
	}
}

func (w *watcher) handleMessage(ctx context.Context, raw []byte) {
	ctx, span := tracer.Start(ctx, "server.handleMessage", trace.WithAttributes(
		attribute.String("game.id", w.gameID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(raw, &message); err != nil {
		w.logger.WarnContext(ctx, "error unmarshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		w.reply(proto.NewErrorMessage("malformed message"))
		return
	}
	if err := validator.Struct(message); err != nil {
		w.logger.WarnContext(ctx, "invalid message from watcher", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		w.reply(proto.NewErrorMessage("invalid message"))
		return
	}
	span.SetAttributes(attribute.String("message.type", message.Type))

	var err error
	switch message.Type {
	case proto.TypeSelect:
		_, _, err = w.games.SelectCell(ctx, w.gameID, *message.Index)
	case proto.TypeReset:
		_, err = w.games.Reset(ctx, w.gameID)
	case proto.TypeDifficulty:
		var level game.Difficulty
		if level, err = game.ParseDifficulty(message.Difficulty); err == nil {
			_, _, err = w.games.SetDifficulty(ctx, w.gameID, level)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Command failed")
		w.reply(proto.NewErrorMessage(err.Error()))
	}
}

// reply queues a message for the write pump, dropping it when the queue is full.
func (w *watcher) reply(msg *proto.ServerToClientMessage) {
	select {
	case w.replies <- msg:
	default:
	}
}

// writePump owns every write to the connection.
func (w *watcher) writePump(ctx context.Context, updates <-chan game.Snapshot) {
	pingTicker := time.NewTicker(heartbeatInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = w.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case state, ok := <-updates:
			if !ok {
				_ = w.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "game closed"))
				_ = w.conn.Close()
				return
			}
			if err := w.writeJSON(proto.NewStateMessage(state)); err != nil {
				w.logger.WarnContext(ctx, "error writing state to watcher", "error", err)
				_ = w.conn.Close()
				return
			}
		case msg := <-w.replies:
			if err := w.writeJSON(msg); err != nil {
				_ = w.conn.Close()
				return
			}
		case <-pingTicker.C:
			if err := w.write(websocket.PingMessage, nil); err != nil {
				_ = w.conn.Close()
				return
			}
		}
	}
}

func (w *watcher) writeJSON(msg *proto.ServerToClientMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return w.write(websocket.TextMessage, data)
}

func (w *watcher) write(messageType int, data []byte) error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(messageType, data)
}
