package game

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type instruments struct {
	started  metric.Int64Counter
	finished metric.Int64Counter
	rejected metric.Int64Counter
	decision metric.Float64Histogram
}

var (
	instrumentsOnce sync.Once
	sharedInstr     *instruments
)

// loadInstruments creates the game instruments once against the global meter provider.
// The global provider delegates, so instruments created before telemetry is set up still export.
func loadInstruments() *instruments {
	instrumentsOnce.Do(func() {
		meter := otel.Meter("ctchen222/Tikki-Tacca/game")
		var err error
		in := &instruments{}

		if in.started, err = meter.Int64Counter("tictactoe.games.started",
			metric.WithDescription("Games in which the first move was played")); err != nil {
			otel.Handle(err)
			in.started = noop.Int64Counter{}
		}
		if in.finished, err = meter.Int64Counter("tictactoe.games.finished",
			metric.WithDescription("Games that reached a terminal phase, by outcome")); err != nil {
			otel.Handle(err)
			in.finished = noop.Int64Counter{}
		}
		if in.rejected, err = meter.Int64Counter("tictactoe.moves.rejected",
			metric.WithDescription("Human moves ignored by the controller, by reason")); err != nil {
			otel.Handle(err)
			in.rejected = noop.Int64Counter{}
		}
		if in.decision, err = meter.Float64Histogram("tictactoe.decider.duration",
			metric.WithDescription("Time spent waiting for the opponent move"),
			metric.WithUnit("s")); err != nil {
			otel.Handle(err)
			in.decision = noop.Float64Histogram{}
		}
		sharedInstr = in
	})
	return sharedInstr
}

func (in *instruments) gameStarted(ctx context.Context, difficulty Difficulty) {
	in.started.Add(ctx, 1, metric.WithAttributes(attribute.String("difficulty", string(difficulty))))
}

func (in *instruments) gameFinished(ctx context.Context, phase Phase) {
	in.finished.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(phase))))
}

func (in *instruments) moveRejected(ctx context.Context, reason string) {
	in.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (in *instruments) decisionTook(ctx context.Context, d time.Duration, failed bool) {
	in.decision.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("failed", failed)))
}
