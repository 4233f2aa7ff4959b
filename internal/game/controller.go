package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -destination=mocks/mock_decider.go -package=mocks ctchen222/Tikki-Tacca/internal/game MoveDecider

// DefaultDecisionTimeout bounds a single opponent request when no timeout is configured.
const DefaultDecisionTimeout = 10 * time.Second

// Reasons reported when a human move is ignored.
const (
	reasonNotYourTurn = "not_your_turn"
	reasonOutOfRange  = "out_of_range"
	reasonOccupied    = "occupied"
)

var tracer = otel.Tracer("game")

// MoveDecider picks the opponent's move. ok is false when the decider has no move to offer.
// A non-nil error means the decider could not be reached or answered with garbage.
type MoveDecider interface {
	Decide(ctx context.Context, board Board, difficulty Difficulty) (move int, ok bool, err error)
}

// Listener receives every state the controller emits, in order per controller.
type Listener func(ctx context.Context, snapshot Snapshot)

// Option configures a Controller.
type Option func(*Controller)

// WithListener registers a listener for state changes.
func WithListener(l Listener) Option {
	return func(c *Controller) {
		c.listeners = append(c.listeners, l)
	}
}

// WithDecisionTimeout bounds each opponent request.
func WithDecisionTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithDefaultDifficulty sets the difficulty used by new and reset games.
func WithDefaultDifficulty(d Difficulty) Option {
	return func(c *Controller) {
		if d.Valid() {
			c.defaultDifficulty = d
		}
	}
}

// WithLogger replaces the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller enforces legal play between a human and a MoveDecider.
// The phase gates every mutation: while the opponent is thinking only its reply may change the state.
type Controller struct {
	mu    sync.Mutex
	state State

	decider           MoveDecider
	defaultDifficulty Difficulty
	timeout           time.Duration
	listeners         []Listener
	logger            *slog.Logger
	instr             *instruments

	// seq orders states under mu. Listeners run under notifyMu and never see a state
	// older than the last one emitted.
	seq      uint64
	notifyMu sync.Mutex
	emitted  uint64

	inflight sync.WaitGroup
}

type decisionRequest struct {
	generation uint64
	board      Board
	difficulty Difficulty
}

type decision struct {
	move int
	ok   bool
	err  error
}

// NewController creates a controller with a fresh game.
func NewController(decider MoveDecider, opts ...Option) *Controller {
	c := &Controller{
		decider:           decider,
		defaultDifficulty: DefaultDifficulty,
		timeout:           DefaultDecisionTimeout,
		logger:            slog.Default(),
		instr:             loadInstruments(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "game.controller")
	c.state = newState(c.defaultDifficulty, 1)
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.snapshot()
}

// SelectCell places the human mark on index and, when the game goes on, asks the decider for
// the reply. Illegal selections leave the state untouched and report false.
func (c *Controller) SelectCell(ctx context.Context, index int) bool {
	ctx, span := tracer.Start(ctx, "game.SelectCell", trace.WithAttributes(
		attribute.Int("cell.index", index),
	))
	defer span.End()

	c.mu.Lock()
	if reason := c.rejectHumanMove(index); reason != "" {
		phase := c.state.Phase
		c.mu.Unlock()

		c.logger.DebugContext(ctx, "human move ignored", "cell.index", index, "game.phase", phase, "reason", reason)
		span.SetAttributes(attribute.Bool("move.valid", false), attribute.String("move.reason", reason))
		c.instr.moveRejected(ctx, reason)
		return false
	}

	firstMove := c.state.Board.IsEmpty()
	c.state.Board[index] = Human

	var req *decisionRequest
	if !c.state.evaluate(Human) {
		c.state.Phase = PhaseAwaitingOpponent
		req = &decisionRequest{
			generation: c.state.Generation,
			board:      c.state.Board,
			difficulty: c.state.Difficulty,
		}
		c.inflight.Add(1)
	}
	snap, seq := c.state.snapshot(), c.nextSeq()
	c.mu.Unlock()

	span.SetAttributes(attribute.Bool("move.valid", true), attribute.String("game.phase", string(snap.Phase)))
	if firstMove {
		c.instr.gameStarted(ctx, snap.Difficulty)
	}
	if snap.Phase.IsTerminal() {
		c.instr.gameFinished(ctx, snap.Phase)
		c.logger.InfoContext(ctx, "game finished", "game.phase", snap.Phase, "game.generation", snap.Generation)
	}
	c.notify(ctx, snap, seq)

	if req != nil {
		go c.requestOpponentMove(ctx, *req)
	}
	return true
}

// rejectHumanMove returns why a human move on index is not allowed, or "" when it is.
// Must be called with c.mu held.
func (c *Controller) rejectHumanMove(index int) string {
	switch {
	case c.state.Phase != PhaseAwaitingHuman:
		return reasonNotYourTurn
	case !InBounds(index):
		return reasonOutOfRange
	case c.state.Board[index] != Empty:
		return reasonOccupied
	default:
		return ""
	}
}

// SetDifficulty changes the difficulty of a game that has not started yet.
func (c *Controller) SetDifficulty(ctx context.Context, level Difficulty) bool {
	c.mu.Lock()
	if !level.Valid() || !c.state.difficultyMutable() {
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "difficulty change ignored", "difficulty", level)
		return false
	}
	c.state.Difficulty = level
	snap, seq := c.state.snapshot(), c.nextSeq()
	c.mu.Unlock()

	c.notify(ctx, snap, seq)
	return true
}

// Reset replaces the game with a fresh one at the default difficulty.
// A reply still in flight for the previous game is discarded when it arrives.
func (c *Controller) Reset(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "game.Reset")
	defer span.End()

	c.mu.Lock()
	previous := c.state.Phase
	c.state = newState(c.defaultDifficulty, c.state.Generation+1)
	snap, seq := c.state.snapshot(), c.nextSeq()
	c.mu.Unlock()

	span.SetAttributes(attribute.Int64("game.generation", int64(snap.Generation)))
	c.logger.InfoContext(ctx, "game reset", "previous.phase", previous, "game.generation", snap.Generation)
	c.notify(ctx, snap, seq)
}

// Wait blocks until no opponent request is in flight.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// requestOpponentMove runs the single outstanding opponent request of a turn.
// It outlives the caller's context but not the decision timeout.
func (c *Controller) requestOpponentMove(parent context.Context, req decisionRequest) {
	defer c.inflight.Done()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "game.requestOpponentMove", trace.WithAttributes(
		attribute.Int64("game.generation", int64(req.generation)),
		attribute.String("game.difficulty", string(req.difficulty)),
	))
	defer span.End()

	start := time.Now()
	done := make(chan decision, 1)
	go func() {
		move, ok, err := c.decider.Decide(ctx, req.board, req.difficulty)
		done <- decision{move: move, ok: ok, err: err}
	}()

	var d decision
	select {
	case d = <-done:
	case <-ctx.Done():
		d = decision{err: fmt.Errorf("waiting for opponent move: %w", ctx.Err())}
	}
	c.instr.decisionTook(ctx, time.Since(start), d.err != nil)

	if d.err != nil {
		span.RecordError(d.err)
		span.SetStatus(codes.Error, "Opponent move failed")
	}
	c.applyDecision(ctx, req, d)
}

// applyDecision completes the opponent turn unless the game it was issued for is gone.
func (c *Controller) applyDecision(ctx context.Context, req decisionRequest, d decision) {
	c.mu.Lock()
	if c.state.Generation != req.generation || c.state.Phase != PhaseAwaitingOpponent {
		generation := c.state.Generation
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "stale opponent reply discarded",
			"request.generation", req.generation, "game.generation", generation)
		return
	}

	switch {
	case d.err != nil:
		c.fail(d.err)
	case !d.ok:
		c.state.Phase = PhaseDraw
	case !InBounds(d.move):
		c.fail(fmt.Errorf("%w: %d", ErrDecisionOutOfRange, d.move))
	case c.state.Board[d.move] != Empty:
		c.fail(fmt.Errorf("%w: %d", ErrDecisionOccupied, d.move))
	default:
		c.state.Board[d.move] = Opponent
		if !c.state.evaluate(Opponent) {
			c.state.Phase = PhaseAwaitingHuman
		}
	}
	snap, seq := c.state.snapshot(), c.nextSeq()
	c.mu.Unlock()

	switch {
	case snap.Phase == PhaseError:
		c.logger.ErrorContext(ctx, "opponent move failed", "error", snap.Error, "game.generation", snap.Generation)
	case snap.Phase.IsTerminal():
		c.instr.gameFinished(ctx, snap.Phase)
		c.logger.InfoContext(ctx, "game finished", "game.phase", snap.Phase, "game.generation", snap.Generation)
	}
	c.notify(ctx, snap, seq)
}

// fail stalls the game until the next reset. Must be called with c.mu held.
func (c *Controller) fail(err error) {
	c.state.Phase = PhaseError
	c.state.ErrorMessage = err.Error()
}

// nextSeq must be called with c.mu held.
func (c *Controller) nextSeq() uint64 {
	c.seq++
	return c.seq
}

// notify hands snap to the listeners unless a newer state already went out.
func (c *Controller) notify(ctx context.Context, snap Snapshot, seq uint64) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if seq <= c.emitted {
		c.logger.DebugContext(ctx, "superseded state not emitted", "game.generation", snap.Generation)
		return
	}
	c.emitted = seq
	for _, l := range c.listeners {
		l(ctx, snap)
	}
}
