package game

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/bot"
)

// Run applies completed AI moves until ctx is cancelled. It is the only
// place AI stones are written, always under the game's lock. Results already
// queued when ctx ends are still applied.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.drain(context.WithoutCancel(ctx))
			return
		case res := <-c.completions:
			c.applyAIResult(ctx, res)
		}
	}
}

func (c *Controller) drain(ctx context.Context) {
	for {
		select {
		case res := <-c.completions:
			c.applyAIResult(ctx, res)
		default:
			return
		}
	}
}

// startAITurn marks the game as waiting on the AI and submits a snapshot of
// the board. The caller holds the game's lock, publishes ai_thinking on
// success and restores the game on failure.
func (c *Controller) startAITurn(ctx context.Context, game *model.Game, boardObj *model.Board) (<-chan AIMoveResult, error) {
	game.State = model.GameStateAIThinking
	game.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	req := bot.Request{
		GameID:   game.ID,
		Board:    boardObj.Clone(),
		Stone:    game.AIStone,
		Strategy: game.Strategy,
	}
	if err := c.bots.Submit(req, c.completions); err != nil {
		return nil, err
	}

	c.pendingMu.Lock()
	c.inflight[game.ID] = true
	c.pendingMu.Unlock()
	return c.addWaiter(game.ID), nil
}

func (c *Controller) applyAIResult(ctx context.Context, res bot.Result) {
	defer c.lockGame(res.GameID)()

	c.pendingMu.Lock()
	delete(c.inflight, res.GameID)
	c.pendingMu.Unlock()

	logger := c.logger.With(slog.String("game_id", string(res.GameID)))

	game, err := c.storage.GetGame(ctx, res.GameID)
	if err != nil {
		logger.Error("failed to load game for ai move", slog.String("error", err.Error()))
		c.resolveWaiters(res.GameID, AIMoveResult{Err: err})
		return
	}

	// The human resigned while the move was being computed
	if err := checkPlayable(game); err != nil {
		c.resolveWaiters(res.GameID, AIMoveResult{Game: game, Err: err})
		return
	}
	if game.State != model.GameStateAIThinking {
		logger.Warn("discarding ai move for game not waiting on ai", slog.String("state", string(game.State)))
		c.resolveWaiters(res.GameID, AIMoveResult{Game: game, Err: model.ErrNotPlayerTurn})
		return
	}

	if errors.Is(res.Err, model.ErrNoMoveAvailable) {
		game.State = model.GameStateDrawn
		game.UpdatedAt = c.clock.Now()
		if err := c.storage.SaveGame(ctx, game); err != nil {
			logger.Error("failed to save drawn game", slog.String("error", err.Error()))
			c.resolveWaiters(res.GameID, AIMoveResult{Err: err})
			return
		}
		logger.Info("game drawn, no move available")
		c.resolveWaiters(res.GameID, AIMoveResult{Game: game})
		c.publishGameOver(game)
		return
	}
	if res.Err != nil {
		// Left in ai_thinking so RequestAIMove can retry
		logger.Error("ai move failed", slog.String("error", res.Err.Error()))
		c.resolveWaiters(res.GameID, AIMoveResult{Game: game, Err: res.Err})
		return
	}

	boardObj, err := c.boardService.GetBoard(ctx, res.GameID)
	if err != nil {
		logger.Error("failed to load board for ai move", slog.String("error", err.Error()))
		c.resolveWaiters(res.GameID, AIMoveResult{Game: game, Err: err})
		return
	}
	snapshot := boardObj.Clone()
	previous := *game

	if err := c.boardService.PlaceStone(ctx, boardObj, res.Position, res.Stone); err != nil {
		logger.Error("ai chose an illegal cell",
			slog.String("position", res.Position.String()),
			slog.String("error", err.Error()),
		)
		c.resolveWaiters(res.GameID, AIMoveResult{Game: game, Err: err})
		return
	}

	move := c.recordMove(game, res.Position, res.Stone)
	over := c.finishIfOver(game, boardObj, res.Position)
	if !over {
		game.State = model.GameStateHumanTurn
	}

	// Still ai_thinking in storage after a rollback, so RequestAIMove can retry
	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.rollback(ctx, game, previous, snapshot, err)
		c.resolveWaiters(res.GameID, AIMoveResult{Game: game, Err: err})
		return
	}

	logger.Debug("ai moved",
		slog.String("position", res.Position.String()),
		slog.Int("move", move.Number),
		slog.Duration("elapsed", res.Elapsed),
	)
	c.publishMove(game.ID, move, true)
	c.resolveWaiters(res.GameID, AIMoveResult{Game: game, Move: move})
	if over {
		c.publishGameOver(game)
	}
}

func (c *Controller) addWaiter(gameID model.GameID) <-chan AIMoveResult {
	ch := make(chan AIMoveResult, 1)
	c.pendingMu.Lock()
	c.waiters[gameID] = append(c.waiters[gameID], ch)
	c.pendingMu.Unlock()
	return ch
}

// resolveWaiters delivers res to everyone waiting on the game's AI turn.
// Each waiter channel is buffered, so abandoned waiters never block.
func (c *Controller) resolveWaiters(gameID model.GameID, res AIMoveResult) {
	c.pendingMu.Lock()
	waiters := c.waiters[gameID]
	delete(c.waiters, gameID)
	c.pendingMu.Unlock()

	for _, ch := range waiters {
		ch <- res
		close(ch)
	}
}
