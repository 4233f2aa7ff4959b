package bot

import (
	"context"
	"math/rand/v2"
	"sync"

	"ctchen222/Tikki-Tacca/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("bot")

// LocalDecider computes opponent moves in-process. It implements game.MoveDecider.
type LocalDecider struct {
	mu  sync.Mutex
	rng *rand.Rand // nil uses the global source
}

// NewLocalDecider creates a decider. A nil source falls back to the global random source.
func NewLocalDecider(src rand.Source) *LocalDecider {
	d := &LocalDecider{}
	if src != nil {
		d.rng = rand.New(src)
	}
	return d
}

// Decide returns the opponent move for board. It never fails unless ctx is already done.
func (d *LocalDecider) Decide(ctx context.Context, board game.Board, difficulty game.Difficulty) (int, bool, error) {
	_, span := tracer.Start(ctx, "bot.Decide", trace.WithAttributes(
		attribute.String("game.difficulty", string(difficulty)),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return -1, false, err
	}

	move, ok := d.CalculateNextMove(board, difficulty)
	span.SetAttributes(attribute.Int("bot.move", move), attribute.Bool("bot.has_move", ok))
	return move, ok, nil
}

func (d *LocalDecider) intN(n int) int {
	if d.rng == nil {
		return rand.IntN(n)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.IntN(n)
}

func (d *LocalDecider) randFloat() float64 {
	if d.rng == nil {
		return rand.Float64()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Float64()
}
