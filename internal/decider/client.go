// Package decider talks to a remote move-decision service.
package decider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ctchen222/Tikki-Tacca/internal/game"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const movePath = "/ai-move"

var (
	ErrUnexpectedStatus  = errors.New("unexpected status from move service")
	ErrMalformedResponse = errors.New("malformed response from move service")
)

var tracer = otel.Tracer("decider")

// MoveRequest is the body sent to the move service.
type MoveRequest struct {
	Board      game.Board      `json:"board"`
	Difficulty game.Difficulty `json:"difficulty"`
}

// MoveResponse is the body returned by the move service. A nil Move means no move.
type MoveResponse struct {
	Move *int `json:"move"`
}

// Client implements game.MoveDecider over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for the service at baseURL. timeout bounds each request.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With("component", "decider.client"),
	}
}

// Decide posts the board and difficulty and returns the service's move.
func (c *Client) Decide(ctx context.Context, board game.Board, difficulty game.Difficulty) (int, bool, error) {
	ctx, span := tracer.Start(ctx, "decider.Decide", trace.WithAttributes(
		attribute.String("game.difficulty", string(difficulty)),
	))
	defer span.End()

	move, ok, err := c.decide(ctx, board, difficulty)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Move service call failed")
		c.logger.WarnContext(ctx, "move service call failed", "error", err)
		return -1, false, err
	}
	span.SetAttributes(attribute.Int("decider.move", move), attribute.Bool("decider.has_move", ok))
	return move, ok, nil
}

func (c *Client) decide(ctx context.Context, board game.Board, difficulty game.Difficulty) (int, bool, error) {
	body, err := json.Marshal(MoveRequest{Board: board, Difficulty: difficulty})
	if err != nil {
		return -1, false, fmt.Errorf("encoding move request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+movePath, bytes.NewReader(body))
	if err != nil {
		return -1, false, fmt.Errorf("building move request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return -1, false, fmt.Errorf("calling move service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return -1, false, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var out MoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return -1, false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Move == nil {
		return -1, false, nil
	}
	if !game.InBounds(*out.Move) {
		return -1, false, fmt.Errorf("%w: move %d out of range", ErrMalformedResponse, *out.Move)
	}
	return *out.Move, true, nil
}
