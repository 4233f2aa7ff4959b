// Command play runs a game against the opponent in the terminal.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"ctchen222/Tikki-Tacca/internal/bot"
	"ctchen222/Tikki-Tacca/internal/config"
	"ctchen222/Tikki-Tacca/internal/decider"
	"ctchen222/Tikki-Tacca/internal/game"
	"ctchen222/Tikki-Tacca/internal/logger"
)

const help = `cells are numbered 1-9, left to right, top to bottom
  1-9          play a cell
  d <level>    set difficulty (low, medium, high) before the first move
  r            reset
  q            quit`

func main() {
	configPath := flag.String("config", "config.yml", "path to the YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	// Keep the board readable: only warnings reach the terminal.
	log := logger.New(os.Stderr, "warn")

	var moveDecider game.MoveDecider = bot.NewLocalDecider(nil)
	if cfg.Decider.URL != "" {
		moveDecider = decider.NewClient(cfg.Decider.URL, cfg.Decider.Timeout, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout, moveDecider, cfg, log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer, moveDecider game.MoveDecider, cfg *config.Config, log *slog.Logger) error {
	ctrl := game.NewController(moveDecider,
		game.WithDefaultDifficulty(cfg.Game.Difficulty()),
		game.WithDecisionTimeout(cfg.Decider.Timeout),
		game.WithLogger(log),
		game.WithListener(func(_ context.Context, s game.Snapshot) {
			if s.Phase != game.PhaseAwaitingOpponent {
				render(out, s)
			}
		}),
	)

	fmt.Fprintln(out, help)
	render(out, ctrl.Snapshot())

	lines := bufio.NewScanner(in)
	for lines.Scan() {
		if ctx.Err() != nil {
			break
		}
		if quit := handleLine(ctx, out, ctrl, strings.TrimSpace(lines.Text())); quit {
			break
		}
		// The opponent reply renders itself; wait so the prompt follows it.
		ctrl.Wait()
	}
	return lines.Err()
}

// handleLine applies one command and reports whether the player asked to quit.
func handleLine(ctx context.Context, out io.Writer, ctrl *game.Controller, line string) bool {
	switch {
	case line == "":
	case line == "q":
		return true
	case line == "r":
		ctrl.Reset(ctx)
	case strings.HasPrefix(line, "d "):
		level, err := game.ParseDifficulty(strings.TrimPrefix(line, "d "))
		if err != nil {
			fmt.Fprintln(out, err)
			break
		}
		if !ctrl.SetDifficulty(ctx, level) {
			fmt.Fprintln(out, "difficulty can only change before the first move")
		}
	default:
		n, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(out, help)
			break
		}
		if !ctrl.SelectCell(ctx, n-1) {
			fmt.Fprintln(out, "that cell can't be played now")
		}
	}
	return false
}

func render(out io.Writer, s game.Snapshot) {
	fmt.Fprintf(out, "\n%s\n\n%s  [difficulty: %s]\n", s.Board, s.Status, s.Difficulty)
	if s.Error != "" {
		fmt.Fprintf(out, "(%s)\n", s.Error)
	}
}
