package decider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ctchen222/Tikki-Tacca/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ game.MoveDecider = (*Client)(nil)

func TestClient_Decide(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMove int
		wantOK   bool
		wantErr  error
	}{
		{name: "move", status: http.StatusOK, body: `{"move": 4}`, wantMove: 4, wantOK: true},
		{name: "no move", status: http.StatusOK, body: `{"move": null}`, wantMove: -1, wantOK: false},
		{name: "bad status", status: http.StatusBadRequest, body: `{"error":"Invalid board"}`, wantErr: ErrUnexpectedStatus},
		{name: "server error", status: http.StatusInternalServerError, body: ``, wantErr: ErrUnexpectedStatus},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantErr: ErrMalformedResponse},
		{name: "move out of range", status: http.StatusOK, body: `{"move": 12}`, wantErr: ErrMalformedResponse},
		{name: "move of wrong type", status: http.StatusOK, body: `{"move": "4"}`, wantErr: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, time.Second, nil)
			move, ok, err := c.Decide(context.Background(), game.Board{}, game.DifficultyHigh)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMove, move)
		})
	}
}

func TestClient_SendsBoardAndDifficulty(t *testing.T) {
	// Given
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ai-move", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"move": 2}`))
	}))
	defer srv.Close()

	board := game.Board{}
	board[0] = game.Human
	board[4] = game.Opponent

	// When
	c := NewClient(srv.URL+"/", time.Second, nil)
	_, _, err := c.Decide(context.Background(), board, game.DifficultyMedium)

	// Then
	require.NoError(t, err)
	assert.Equal(t, []any{"X", " ", " ", " ", "O", " ", " ", " ", " "}, got["board"])
	assert.Equal(t, "medium", got["difficulty"])
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, ok, err := NewClient(url, time.Second, nil).Decide(context.Background(), game.Board{}, game.DifficultyLow)

	assert.Error(t, err)
	assert.False(t, ok)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, _, err := NewClient(srv.URL, 20*time.Millisecond, nil).Decide(context.Background(), game.Board{}, game.DifficultyLow)

	assert.Error(t, err)
}
