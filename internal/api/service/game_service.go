package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ctchen222/Tikki-Tacca/internal/game"
	"ctchen222/Tikki-Tacca/internal/hub"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("game session not found")

// GameService defines the game session operations exposed over HTTP and WebSocket.
type GameService interface {
	Create(ctx context.Context, difficulty game.Difficulty) (string, game.Snapshot)
	Get(ctx context.Context, id string) (game.Snapshot, error)
	SelectCell(ctx context.Context, id string, index int) (bool, game.Snapshot, error)
	SetDifficulty(ctx context.Context, id string, level game.Difficulty) (bool, game.Snapshot, error)
	Reset(ctx context.Context, id string) (game.Snapshot, error)
	Delete(ctx context.Context, id string) error
	// Watch streams the states of session id, starting with the current one.
	Watch(ctx context.Context, id string) (<-chan game.Snapshot, func(), error)
	// RunJanitor evicts idle sessions until ctx is done.
	RunJanitor(ctx context.Context)
	// Wait blocks until no session has an opponent request in flight.
	Wait()
}

// Options tune a GameService.
type Options struct {
	DefaultDifficulty game.Difficulty
	DecisionTimeout   time.Duration
	IdleTTL           time.Duration
	Logger            *slog.Logger
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

type session struct {
	ctrl *game.Controller

	mu         sync.Mutex
	lastActive time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

type gameService struct {
	decider game.MoveDecider
	hub     hub.Hub
	opts    Options
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewGameService creates an in-memory session registry. Every state change of a session is
// published on h under the session id.
func NewGameService(decider game.MoveDecider, h hub.Hub, opts Options) GameService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if !opts.DefaultDifficulty.Valid() {
		opts.DefaultDifficulty = game.DefaultDifficulty
	}
	return &gameService{
		decider:  decider,
		hub:      h,
		opts:     opts,
		logger:   opts.Logger.With("component", "game.service"),
		sessions: make(map[string]*session),
	}
}

// Create starts a session. An invalid difficulty keeps the default one.
func (s *gameService) Create(ctx context.Context, difficulty game.Difficulty) (string, game.Snapshot) {
	id := uuid.New().String()

	ctrl := game.NewController(s.decider,
		game.WithDefaultDifficulty(s.opts.DefaultDifficulty),
		game.WithDecisionTimeout(s.opts.DecisionTimeout),
		game.WithLogger(s.opts.Logger.With("game.id", id)),
		game.WithListener(func(ctx context.Context, state game.Snapshot) {
			if err := s.hub.Publish(ctx, id, state); err != nil {
				s.logger.ErrorContext(ctx, "Failed to publish game state", "game.id", id, "error", err)
			}
		}),
	)
	if difficulty.Valid() {
		ctrl.SetDifficulty(ctx, difficulty)
	}

	sess := &session{ctrl: ctrl, lastActive: s.opts.Now()}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Game session created", "game.id", id, "game.difficulty", ctrl.Snapshot().Difficulty)
	return id, ctrl.Snapshot()
}

func (s *gameService) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.opts.Now())
	return sess, nil
}

func (s *gameService) Get(ctx context.Context, id string) (game.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return sess.ctrl.Snapshot(), nil
}

func (s *gameService) SelectCell(ctx context.Context, id string, index int) (bool, game.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return false, game.Snapshot{}, err
	}
	applied := sess.ctrl.SelectCell(ctx, index)
	return applied, sess.ctrl.Snapshot(), nil
}

func (s *gameService) SetDifficulty(ctx context.Context, id string, level game.Difficulty) (bool, game.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return false, game.Snapshot{}, err
	}
	applied := sess.ctrl.SetDifficulty(ctx, level)
	return applied, sess.ctrl.Snapshot(), nil
}

func (s *gameService) Reset(ctx context.Context, id string) (game.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	sess.ctrl.Reset(ctx)
	return sess.ctrl.Snapshot(), nil
}

func (s *gameService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.logger.InfoContext(ctx, "Game session deleted", "game.id", id)
	return nil
}

func (s *gameService) Watch(ctx context.Context, id string) (<-chan game.Snapshot, func(), error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	updates, cancel, err := s.hub.Subscribe(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	// The current state goes first; later ones follow from the hub.
	out := make(chan game.Snapshot, 1)
	out <- sess.ctrl.Snapshot()
	go func() {
		defer close(out)
		for state := range updates {
			sess.touch(s.opts.Now())
			select {
			case out <- state:
			case <-ctx.Done():
				cancel()
				return
			}
		}
	}()
	return out, cancel, nil
}

func (s *gameService) RunJanitor(ctx context.Context) {
	interval := s.opts.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle(ctx)
		}
	}
}

// evictIdle drops every session idle for longer than the TTL and returns how many were dropped.
func (s *gameService) evictIdle(ctx context.Context) int {
	cutoff := s.opts.Now().Add(-s.opts.IdleTTL)

	s.mu.Lock()
	var evicted []string
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
	}
	s.mu.Unlock()

	for _, id := range evicted {
		s.logger.InfoContext(ctx, "Idle game session evicted", "game.id", id)
	}
	return len(evicted)
}

func (s *gameService) Wait() {
	s.mu.RLock()
	ctrls := make([]*game.Controller, 0, len(s.sessions))
	for _, sess := range s.sessions {
		ctrls = append(ctrls, sess.ctrl)
	}
	s.mu.RUnlock()

	for _, c := range ctrls {
		c.Wait()
	}
}
