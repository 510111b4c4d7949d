package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
	"github.com/mcoot/gomoku-go/internal/dependencies/random"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/auth"
	"github.com/mcoot/gomoku-go/internal/services/board"
	"github.com/mcoot/gomoku-go/internal/services/bot"
	"github.com/mcoot/gomoku-go/internal/services/game"
	"github.com/mcoot/gomoku-go/internal/services/scoring"
	"github.com/mcoot/gomoku-go/internal/storage"
	"github.com/mcoot/gomoku-go/internal/storage/memory"
	redisstorage "github.com/mcoot/gomoku-go/internal/storage/redis"
	"github.com/mcoot/gomoku-go/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// DefaultHubCleanupInterval is how often idle SSE hubs are closed
const DefaultHubCleanupInterval = 5 * time.Minute

// BotDrainTimeout bounds how long Shutdown waits for in-flight AI moves
const BotDrainTimeout = 10 * time.Second

// App contains all wired application components
type App struct {
	Storage storage.Storage

	Clock  clock.Clock
	Random random.Random

	BoardService   *board.Service
	ScoringService *scoring.Service
	BotService     *bot.Service
	GameController *game.Controller
	AuthService    *auth.Service
	HubManager     *sse.HubManager
	Broadcaster    *sse.Broadcaster

	logger *slog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config holds configuration for the application factory. Zero values fall
// back to each component's defaults.
type Config struct {
	AuthConfig auth.Config
	// Scoring is used as given when Scoring.Base is set
	Scoring scoring.Config
	Game    game.Config
	// AIWorkers bounds concurrent AI computations
	AIWorkers int
	// Logger is the application logger; nil discards output
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	StorageType string
	// RedisConfig is required if StorageType is "redis"
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory' or 'redis'", storageType)
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg, logger)
}

// newWithDependencies wires an App around the given dependencies
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	scoringCfg := cfg.Scoring
	if scoringCfg.Base == 0 {
		diagonals := scoringCfg.ScoreDiagonals
		scoringCfg = scoring.DefaultConfig()
		scoringCfg.ScoreDiagonals = diagonals
	}
	scorer, err := scoring.New(scoringCfg)
	if err != nil {
		return nil, err
	}

	gameCfg := cfg.Game
	defaults := game.DefaultConfig()
	if gameCfg.BoardSize == 0 {
		gameCfg.BoardSize = defaults.BoardSize
	}
	if gameCfg.Strategy == "" {
		gameCfg.Strategy = defaults.Strategy
	}
	if gameCfg.CompletionBuffer == 0 {
		gameCfg.CompletionBuffer = defaults.CompletionBuffer
	}
	if gameCfg.BoardSize < model.MinBoardSize || gameCfg.BoardSize > model.MaxBoardSize {
		return nil, fmt.Errorf("%w: default board size %d", model.ErrInvalidBoardSize, gameCfg.BoardSize)
	}

	workers := cfg.AIWorkers
	if workers <= 0 {
		workers = bot.DefaultWorkers
	}

	boardService := board.New(store, logger)
	strategies := map[string]bot.Strategy{
		model.BotStrategyHeuristic: bot.NewHeuristicStrategy(scorer),
		model.BotStrategyRandom:    bot.NewRandomStrategy(rnd),
	}
	botService := bot.NewService(strategies, workers, clk, logger)
	if _, err := botService.Strategy(gameCfg.Strategy); err != nil {
		return nil, err
	}

	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)

	gameController := game.NewController(store, boardService, scorer, botService, broadcaster, clk, rnd, logger, gameCfg)
	authService := auth.New(store, clk, logger, cfg.AuthConfig)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		BoardService:   boardService,
		ScoringService: scorer,
		BotService:     botService,
		GameController: gameController,
		AuthService:    authService,
		HubManager:     hubManager,
		Broadcaster:    broadcaster,
		logger:         logger,
	}, nil
}

// Start launches the background loops: applying AI moves, expiring sessions
// and closing idle event hubs. Stop them with Shutdown.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)

	a.goBackground(func() { a.GameController.Run(ctx) })
	a.goBackground(func() { a.AuthService.RunCleanup(ctx) })
	a.goBackground(func() { a.HubManager.RunCleanup(ctx, DefaultHubCleanupInterval) })
}

func (a *App) goBackground(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// Shutdown stops accepting AI work, lets in-flight moves be applied, then
// stops the background loops and releases storage
func (a *App) Shutdown() error {
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), BotDrainTimeout)
	defer cancelDrain()
	if err := a.BotService.Close(drainCtx); err != nil {
		a.logger.Warn("ai moves still pending at shutdown", slog.String("error", err.Error()))
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	a.HubManager.Shutdown()

	if closer, ok := a.Storage.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
	}
	a.logger.Info("application stopped")
	return nil
}
