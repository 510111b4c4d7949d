package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
	"github.com/mcoot/gomoku-go/internal/dependencies/random"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/board"
	"github.com/mcoot/gomoku-go/internal/services/bot"
	"github.com/mcoot/gomoku-go/internal/services/scoring"
	"github.com/mcoot/gomoku-go/internal/storage"
)

// GameIDLength is the length of generated game IDs
const GameIDLength = 10

// Config holds game defaults
type Config struct {
	BoardSize        int
	Strategy         string
	CompletionBuffer int // Capacity of the AI completion channel
}

// DefaultConfig returns the standard 20x20 heuristic game
func DefaultConfig() Config {
	return Config{
		BoardSize:        model.DefaultBoardSize,
		Strategy:         model.BotStrategyHeuristic,
		CompletionBuffer: 64,
	}
}

// AIMoveResult reports the outcome of one AI turn to a waiting caller
type AIMoveResult struct {
	Game *model.Game
	Move *model.Move // nil when the AI did not place a stone
	Err  error
}

// PlaceResult is returned from a human placement
type PlaceResult struct {
	Game *model.Game

	// AIMove receives exactly one result once the AI reply has been applied.
	// It is nil when the human move ended the game.
	AIMove <-chan AIMoveResult
}

// CellInspection is the scorer's view of one cell for both sides
type CellInspection struct {
	Human model.CellScore
	AI    model.CellScore
}

// Controller owns every game's board. All mutations happen under the game's
// lock; AI moves are computed on snapshots by the bot service and applied by
// Run when they complete.
type Controller struct {
	storage      storage.GameStore
	boardService board.ServiceInterface
	scorer       scoring.ServiceInterface
	bots         *bot.Service
	notifier     Notifier
	clock        clock.Clock
	random       random.Random
	logger       *slog.Logger
	cfg          Config

	locksMu sync.Mutex
	locks   map[model.GameID]*gameLock

	// AI bookkeeping, shared by request handlers and Run
	pendingMu sync.Mutex
	inflight  map[model.GameID]bool
	waiters   map[model.GameID][]chan AIMoveResult

	completions chan bot.Result
}

// NewController creates a game Controller. Run must be started for AI moves
// to be applied.
func NewController(
	store storage.GameStore,
	boardService board.ServiceInterface,
	scorer scoring.ServiceInterface,
	bots *bot.Service,
	notifier Notifier,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Controller{
		storage:      store,
		boardService: boardService,
		scorer:       scorer,
		bots:         bots,
		notifier:     notifier,
		clock:        clk,
		random:       rnd,
		logger:       logger.With(slog.String("component", "game-controller")),
		cfg:          cfg,
		locks:        make(map[model.GameID]*gameLock),
		inflight:     make(map[model.GameID]bool),
		waiters:      make(map[model.GameID][]chan AIMoveResult),
		completions:  make(chan bot.Result, cfg.CompletionBuffer),
	}
}

// CreateGame starts a new game for the player. When the AI opens, its first
// move is already queued when CreateGame returns.
func (c *Controller) CreateGame(ctx context.Context, playerID model.PlayerID, opts model.GameOptions) (*model.Game, error) {
	size := opts.BoardSize
	if size == 0 {
		size = c.cfg.BoardSize
	}
	if size < model.MinBoardSize || size > model.MaxBoardSize {
		return nil, fmt.Errorf("%w: %d (must be %d-%d)", model.ErrInvalidBoardSize, size, model.MinBoardSize, model.MaxBoardSize)
	}

	strategy := opts.Strategy
	if strategy == "" {
		strategy = c.cfg.Strategy
	}
	if _, err := c.bots.Strategy(strategy); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	game := &model.Game{
		ID:         model.GameID(c.random.ID(GameIDLength)),
		PlayerID:   playerID,
		State:      model.GameStateHumanTurn,
		BoardSize:  size,
		HumanStone: model.StoneBlack,
		AIStone:    model.StoneWhite,
		Strategy:   strategy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if opts.AIFirst {
		game.HumanStone, game.AIStone = model.StoneWhite, model.StoneBlack
	}

	defer c.lockGame(game.ID)()

	boardObj, err := c.boardService.CreateBoard(ctx, game.ID, size)
	if err != nil {
		return nil, err
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("player_id", string(playerID)),
		slog.Int("board_size", size),
		slog.String("strategy", strategy),
		slog.Bool("ai_first", opts.AIFirst),
	)

	if opts.AIFirst {
		if _, err := c.startAITurn(ctx, game, boardObj); err != nil {
			return nil, err
		}
		c.publish(game.ID, model.EventAIThinking, nil)
	}
	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// GetBoard retrieves a game's board
func (c *Controller) GetBoard(ctx context.Context, gameID model.GameID) (*model.Board, error) {
	if _, err := c.storage.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	return c.boardService.GetBoard(ctx, gameID)
}

// ListGames returns the player's games, oldest first
func (c *Controller) ListGames(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error) {
	return c.storage.GetGamesForPlayer(ctx, playerID)
}

// PlaceStone applies a human move and hands the AI reply to the bot service.
// It is rejected with ErrAITurnPending while an AI move is outstanding.
// Nothing is published unless the board, the game and the AI hand-off all
// succeed; on failure the stored board and game are put back.
func (c *Controller) PlaceStone(ctx context.Context, gameID model.GameID, playerID model.PlayerID, pos model.Position) (*PlaceResult, error) {
	defer c.lockGame(gameID)()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.PlayerID != playerID {
		return nil, model.ErrNotGameOwner
	}
	if err := checkPlayable(game); err != nil {
		return nil, err
	}
	if game.State == model.GameStateAIThinking {
		return nil, model.ErrAITurnPending
	}
	// No stone goes down if the AI could not answer it
	if c.bots.Closed() {
		return nil, bot.ErrServiceClosed
	}

	boardObj, err := c.boardService.GetBoard(ctx, gameID)
	if err != nil {
		return nil, err
	}
	snapshot := boardObj.Clone()
	previous := *game

	if err := c.boardService.PlaceStone(ctx, boardObj, pos, game.HumanStone); err != nil {
		return nil, err
	}
	move := c.recordMove(game, pos, game.HumanStone)

	if c.finishIfOver(game, boardObj, pos) {
		if err := c.storage.SaveGame(ctx, game); err != nil {
			c.rollback(ctx, game, previous, snapshot, err)
			return nil, err
		}
		c.publishMove(game.ID, move, false)
		c.publishGameOver(game)
		return &PlaceResult{Game: game}, nil
	}

	waiter, err := c.startAITurn(ctx, game, boardObj)
	if err != nil {
		c.rollback(ctx, game, previous, snapshot, err)
		return nil, err
	}

	c.logger.Debug("human moved",
		slog.String("game_id", string(gameID)),
		slog.String("position", move.Position.String()),
		slog.Int("move", move.Number),
	)
	c.publishMove(game.ID, move, false)
	c.publish(game.ID, model.EventAIThinking, nil)
	return &PlaceResult{Game: game, AIMove: waiter}, nil
}

// RequestAIMove returns a channel that receives the outcome of the pending
// AI turn. If the game is waiting on the AI but no computation is running
// (for example after a restart) the turn is submitted again.
func (c *Controller) RequestAIMove(ctx context.Context, gameID model.GameID) (<-chan AIMoveResult, error) {
	defer c.lockGame(gameID)()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := checkPlayable(game); err != nil {
		return nil, err
	}
	if game.State != model.GameStateAIThinking {
		return nil, model.ErrNotPlayerTurn
	}

	c.pendingMu.Lock()
	running := c.inflight[gameID]
	c.pendingMu.Unlock()
	if running {
		return c.addWaiter(gameID), nil
	}

	boardObj, err := c.boardService.GetBoard(ctx, gameID)
	if err != nil {
		return nil, err
	}
	waiter, err := c.startAITurn(ctx, game, boardObj)
	if err != nil {
		return nil, err
	}
	c.publish(gameID, model.EventAIThinking, nil)
	return waiter, nil
}

// SuggestMove runs the heuristic selector for the human's colour
func (c *Controller) SuggestMove(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (model.Position, error) {
	game, boardObj, err := c.loadOwned(ctx, gameID, playerID)
	if err != nil {
		return model.Position{}, err
	}
	if err := checkPlayable(game); err != nil {
		return model.Position{}, err
	}
	if game.State == model.GameStateAIThinking {
		return model.Position{}, model.ErrAITurnPending
	}
	return c.bots.Suggest(ctx, boardObj, game.HumanStone, model.BotStrategyHeuristic)
}

// ScoreCell shows how the scorer rates an empty cell for both sides
func (c *Controller) ScoreCell(ctx context.Context, gameID model.GameID, pos model.Position) (*CellInspection, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	boardObj, err := c.boardService.GetBoard(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := c.boardService.ValidatePlacement(boardObj, pos); err != nil {
		return nil, err
	}
	return &CellInspection{
		Human: c.scorer.ScoreCell(boardObj, pos, game.HumanStone),
		AI:    c.scorer.ScoreCell(boardObj, pos, game.AIStone),
	}, nil
}

// AbandonGame resigns the game on the human's behalf. An AI move still being
// computed is discarded when it completes.
func (c *Controller) AbandonGame(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.Game, error) {
	defer c.lockGame(gameID)()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.PlayerID != playerID {
		return nil, model.ErrNotGameOwner
	}
	if err := checkPlayable(game); err != nil {
		return nil, err
	}

	game.State = model.GameStateAbandoned
	game.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("game abandoned", slog.String("game_id", string(gameID)))
	c.publishGameOver(game)
	c.resolveWaiters(gameID, AIMoveResult{Game: game, Err: model.ErrGameAbandoned})
	return game, nil
}

// loadOwned fetches a game and its board, checking ownership
func (c *Controller) loadOwned(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.Game, *model.Board, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if game.PlayerID != playerID {
		return nil, nil, model.ErrNotGameOwner
	}
	boardObj, err := c.boardService.GetBoard(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	return game, boardObj, nil
}

// recordMove updates the game after a stone lands. Publishing is left to
// the caller once the move has been stored.
func (c *Controller) recordMove(game *model.Game, pos model.Position, stone model.Stone) *model.Move {
	game.MoveCount++
	move := &model.Move{Position: pos, Stone: stone, Number: game.MoveCount}
	game.LastMove = move
	game.UpdatedAt = c.clock.Now()
	return move
}

// rollback puts the stored board and game back after a move failed part way
func (c *Controller) rollback(ctx context.Context, game *model.Game, previous model.Game, snapshot *model.Board, cause error) {
	ctx = context.WithoutCancel(ctx)
	logger := c.logger.With(slog.String("game_id", string(game.ID)))
	logger.Warn("rolling back move", slog.String("error", cause.Error()))

	*game = previous
	if err := c.boardService.SaveBoard(ctx, snapshot); err != nil {
		logger.Error("failed to restore board", slog.String("error", err.Error()))
	}
	if err := c.storage.SaveGame(ctx, game); err != nil {
		logger.Error("failed to restore game", slog.String("error", err.Error()))
	}
}

// finishIfOver marks the game won or drawn after a placement at pos
func (c *Controller) finishIfOver(game *model.Game, boardObj *model.Board, pos model.Position) bool {
	switch {
	case c.boardService.IsWinningMove(boardObj, pos):
		game.State = model.GameStateWon
		game.Winner = boardObj.At(pos)
	case c.boardService.IsFull(boardObj):
		game.State = model.GameStateDrawn
	default:
		return false
	}
	c.logger.Info("game finished",
		slog.String("game_id", string(game.ID)),
		slog.String("state", string(game.State)),
		slog.String("winner", game.Winner.String()),
		slog.Int("moves", game.MoveCount),
	)
	return true
}

func (c *Controller) publish(gameID model.GameID, eventType model.EventType, payload any) {
	c.notifier.Publish(model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		GameID:    gameID,
		Payload:   payload,
	})
}

func (c *Controller) publishMove(gameID model.GameID, move *model.Move, byAI bool) {
	c.publish(gameID, model.EventStonePlaced, model.StonePlacedPayload{
		Position: move.Position,
		Stone:    move.Stone,
		ByAI:     byAI,
		Number:   move.Number,
	})
}

func (c *Controller) publishGameOver(game *model.Game) {
	c.publish(game.ID, model.EventGameOver, model.GameOverPayload{
		State:  game.State,
		Winner: game.Winner,
	})
}

// gameLock serialises mutations of one game. refs counts holders and
// waiters so the entry can be dropped once nobody needs it.
type gameLock struct {
	mu   sync.Mutex
	refs int
}

// lockGame blocks until the game's lock is held and returns its release
func (c *Controller) lockGame(gameID model.GameID) func() {
	c.locksMu.Lock()
	lock, ok := c.locks[gameID]
	if !ok {
		lock = &gameLock{}
		c.locks[gameID] = lock
	}
	lock.refs++
	c.locksMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		c.locksMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(c.locks, gameID)
		}
		c.locksMu.Unlock()
	}
}

// checkPlayable rejects finished games
func checkPlayable(game *model.Game) error {
	switch game.State {
	case model.GameStateAbandoned:
		return model.ErrGameAbandoned
	case model.GameStateWon, model.GameStateDrawn:
		return model.ErrGameComplete
	default:
		return nil
	}
}

// ControllerInterface is the game behaviour exposed to the transport layers
type ControllerInterface interface {
	CreateGame(ctx context.Context, playerID model.PlayerID, opts model.GameOptions) (*model.Game, error)
	GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	GetBoard(ctx context.Context, gameID model.GameID) (*model.Board, error)
	ListGames(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error)
	PlaceStone(ctx context.Context, gameID model.GameID, playerID model.PlayerID, pos model.Position) (*PlaceResult, error)
	RequestAIMove(ctx context.Context, gameID model.GameID) (<-chan AIMoveResult, error)
	SuggestMove(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (model.Position, error)
	ScoreCell(ctx context.Context, gameID model.GameID, pos model.Position) (*CellInspection, error)
	AbandonGame(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.Game, error)
}

var _ ControllerInterface = (*Controller)(nil)
