package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/Tikki-Tacca/internal/api/controller"
	"ctchen222/Tikki-Tacca/internal/api/service"
	"ctchen222/Tikki-Tacca/internal/bot"
	"ctchen222/Tikki-Tacca/internal/config"
	"ctchen222/Tikki-Tacca/internal/db"
	"ctchen222/Tikki-Tacca/internal/decider"
	"ctchen222/Tikki-Tacca/internal/game"
	"ctchen222/Tikki-Tacca/internal/hub"
	"ctchen222/Tikki-Tacca/internal/logger"
	"ctchen222/Tikki-Tacca/internal/server"
	"ctchen222/Tikki-Tacca/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	log := logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		log.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", "error", err)
		}
	}()

	// Live updates: Redis when configured, in process otherwise
	var h hub.Hub = hub.NewMemoryHub()
	if cfg.Redis.Addr != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Error("failed to initialize redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		h = hub.NewRedisHub(rdb)
		log.Info("Using redis hub", "redis.addr", cfg.Redis.Addr)
	}

	// The in-process bot always serves /ai-move; the controller may use a remote service instead
	localBot := bot.NewLocalDecider(nil)
	var moveDecider game.MoveDecider = localBot
	if cfg.Decider.URL != "" {
		moveDecider = decider.NewClient(cfg.Decider.URL, cfg.Decider.Timeout, log)
		log.Info("Using remote move service", "decider.url", cfg.Decider.URL)
	}

	// Create services
	games := service.NewGameService(moveDecider, h, service.Options{
		DefaultDifficulty: cfg.Game.Difficulty(),
		DecisionTimeout:   cfg.Decider.Timeout,
		IdleTTL:           cfg.Session.IdleTTL,
		Logger:            log,
	})
	go games.RunJanitor(ctx)

	// Create controllers
	gameController := controller.NewGameController(games)
	decisionController := controller.NewDecisionController(localBot)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.NewServer(games, gameController, decisionController)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: otelhttp.NewHandler(srv.Engine(), "http.server"),
	}

	go func() {
		log.Info("http server started", "http.addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ListenAndServe failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	waitOrTimeout(shutdownCtx, games.Wait, log)
	log.Info("Server exiting")
}

// waitOrTimeout waits for in-flight opponent requests, but not past ctx.
func waitOrTimeout(ctx context.Context, wait func(), log *slog.Logger) {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("Gave up waiting for opponent requests")
	}
}
