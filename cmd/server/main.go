package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mcoot/gomoku-go/internal/api"
	"github.com/mcoot/gomoku-go/internal/factory"
	"github.com/mcoot/gomoku-go/internal/services/game"
	"github.com/mcoot/gomoku-go/internal/services/scoring"
	redisstorage "github.com/mcoot/gomoku-go/internal/storage/redis"
	"github.com/mcoot/gomoku-go/internal/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, serverConfig, err := loadConfig(logger)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	app.Start(ctx)

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		HubManager:     app.HubManager,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:           logger,
		AuthService:      app.AuthService,
		GameController:   app.GameController,
		HubManager:       app.HubManager,
		DefaultBoardSize: cfg.Game.BoardSize,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := api.NewServer(mux, serverConfig, logger, app.HubManager.Shutdown)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
		slog.Int("board_size", cfg.Game.BoardSize),
		slog.Int("ai_workers", cfg.AIWorkers))

	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	if err := app.Shutdown(); err != nil {
		logger.Error("application shutdown error", slog.String("error", err.Error()))
		exitCode = 1
	}

	stop()
	logger.Info("server stopped")
	os.Exit(exitCode)
}

// loadConfig reads STORAGE_TYPE, REDIS_URL, PORT, BOARD_SIZE, AI_WORKERS and
// AI_SCORE_DIAGONALS
func loadConfig(logger *slog.Logger) (factory.Config, api.ServerConfig, error) {
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		Game:        game.DefaultConfig(),
		Scoring:     scoring.DefaultConfig(),
	}
	if cfg.StorageType == "" {
		cfg.StorageType = factory.StorageTypeMemory
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return cfg, api.ServerConfig{}, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	serverConfig := api.DefaultServerConfig()
	var err error
	if serverConfig.Port, err = envInt("PORT", serverConfig.Port); err != nil {
		return cfg, serverConfig, err
	}
	if cfg.Game.BoardSize, err = envInt("BOARD_SIZE", cfg.Game.BoardSize); err != nil {
		return cfg, serverConfig, err
	}
	if cfg.AIWorkers, err = envInt("AI_WORKERS", 0); err != nil {
		return cfg, serverConfig, err
	}
	if v := os.Getenv("AI_SCORE_DIAGONALS"); v != "" {
		if cfg.Scoring.ScoreDiagonals, err = strconv.ParseBool(v); err != nil {
			return cfg, serverConfig, fmt.Errorf("AI_SCORE_DIAGONALS: %w", err)
		}
	}

	return cfg, serverConfig, nil
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
