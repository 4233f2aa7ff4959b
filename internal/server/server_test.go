package server

import (
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ctchen222/Tikki-Tacca/internal/api/controller"
	"ctchen222/Tikki-Tacca/internal/api/service"
	"ctchen222/Tikki-Tacca/internal/bot"
	"ctchen222/Tikki-Tacca/internal/game"
	"ctchen222/Tikki-Tacca/internal/hub"
	"ctchen222/Tikki-Tacca/pkg/proto"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*httptest.Server, service.GameService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	decider := bot.NewLocalDecider(rand.NewPCG(5, 5))
	games := service.NewGameService(decider, hub.NewMemoryHub(), service.Options{})
	srv := NewServer(games, controller.NewGameController(games), controller.NewDecisionController(decider))

	ts := httptest.NewServer(srv.Engine())
	t.Cleanup(ts.Close)
	t.Cleanup(games.Wait)
	return ts, games
}

func dial(t *testing.T, ts *httptest.Server, gameID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/games/" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) proto.ServerToClientMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg proto.ServerToClientMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServer_Ping(t *testing.T) {
	ts, _ := setupServer(t)

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}

func TestServer_AIMoveRoute(t *testing.T) {
	ts, _ := setupServer(t)

	resp, err := http.Post(ts.URL+"/ai-move", "application/json",
		strings.NewReader(`{"board":["X","X"," ","O"," "," "," "," "," "],"difficulty":"high"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var got struct {
		Move *int `json:"move"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotNil(t, got.Move)
	assert.Equal(t, 2, *got.Move)
}

func TestServer_WebSocketPlay(t *testing.T) {
	ts, games := setupServer(t)
	id, _ := games.Create(t.Context(), game.DifficultyHigh)

	// Given
	conn := dial(t, ts, id)
	initial := readMessage(t, conn)
	require.Equal(t, proto.TypeState, initial.Type)
	require.NotNil(t, initial.State)
	assert.Equal(t, game.PhaseAwaitingHuman, initial.State.Phase)

	// When
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "select", "index": 0}))

	// Then
	thinking := readMessage(t, conn)
	assert.Equal(t, game.PhaseAwaitingOpponent, thinking.State.Phase)
	assert.Equal(t, game.Human, thinking.State.Board[0])

	replied := readMessage(t, conn)
	assert.Equal(t, game.PhaseAwaitingHuman, replied.State.Phase)
	assert.Equal(t, game.Opponent, replied.State.Board[4])
}

func TestServer_WebSocketInvalidMessage(t *testing.T) {
	ts, games := setupServer(t)
	id, _ := games.Create(t.Context(), "")
	conn := dial(t, ts, id)
	_ = readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "select", "index": 12}))

	msg := readMessage(t, conn)
	assert.Equal(t, proto.TypeError, msg.Type)
	assert.NotEmpty(t, msg.Reason)
}

func TestServer_WebSocketResetAndDifficulty(t *testing.T) {
	ts, games := setupServer(t)
	id, _ := games.Create(t.Context(), "")
	conn := dial(t, ts, id)
	_ = readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "difficulty", "difficulty": "low"}))
	changed := readMessage(t, conn)
	assert.Equal(t, game.DifficultyLow, changed.State.Difficulty)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "reset"}))
	reset := readMessage(t, conn)
	assert.Equal(t, game.DifficultyHigh, reset.State.Difficulty)
	assert.Greater(t, reset.State.Generation, changed.State.Generation)
}

func TestServer_WebSocketUnknownGame(t *testing.T) {
	ts, _ := setupServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/games/nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
