package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/gomoku-go/internal/api/middleware"
	"github.com/mcoot/gomoku-go/internal/api/request"
	"github.com/mcoot/gomoku-go/internal/api/response"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/game"
	"github.com/mcoot/gomoku-go/internal/web/sse"
)

// DefaultWaitTimeout bounds how long ?wait=true blocks for the AI reply
const DefaultWaitTimeout = 30 * time.Second

// GameHandler handles game-related endpoints
type GameHandler struct {
	games       game.ControllerInterface
	hubManager  *sse.HubManager
	logger      *slog.Logger
	waitTimeout time.Duration
}

// NewGameHandler creates a new game handler. hubManager may be nil, which
// disables the events endpoint.
func NewGameHandler(games game.ControllerInterface, hubManager *sse.HubManager, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		games:       games,
		hubManager:  hubManager,
		logger:      logger.With(slog.String("component", "api-game")),
		waitTimeout: DefaultWaitTimeout,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CreateGameRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.games.CreateGame(r.Context(), player.ID, model.GameOptions{
		BoardSize: req.BoardSize,
		Strategy:  req.Strategy,
		AIFirst:   req.AIFirst,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeGame(w, r, http.StatusCreated, g)
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	games, err := h.games.ListGames(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameListFromModel(games))
}

// Get handles GET /api/v1/games/{id}. Any signed-in player may watch a game.
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.games.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeGame(w, r, http.StatusOK, g)
}

// Place handles POST /api/v1/games/{id}/moves. With ?wait=true the response
// is delayed until the AI has replied.
func (h *GameHandler) Place(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.PlaceRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.Row == nil || req.Col == nil {
		WriteError(w, NewInvalidRequestError("row and col are required"))
		return
	}

	pos := model.Position{Row: *req.Row, Col: *req.Col}
	result, err := h.games.PlaceStone(r.Context(), gameID(r), player.ID, pos)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.PlaceResponse{
		HumanMove: response.MoveFromModel(result.Game.LastMove),
		AIPending: result.AIMove != nil,
	}
	current := result.Game

	if result.AIMove != nil && wantsWait(r) {
		ai, err := h.await(r.Context(), result.AIMove)
		if err != nil {
			WriteError(w, err)
			return
		}
		current = ai.Game
		resp.AIMove = response.MoveFromModel(ai.Move)
		resp.AIPending = false
	}

	b, err := h.games.GetBoard(r.Context(), current.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	resp.Game = response.GameFromModel(current, b)
	response.JSON(w, http.StatusOK, resp)
}

// RequestAIMove handles POST /api/v1/games/{id}/ai-move. It waits for the
// pending AI turn (resubmitting it if nothing is computing) and returns the
// applied move.
func (h *GameHandler) RequestAIMove(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := gameID(r)

	g, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	if g.PlayerID != player.ID {
		WriteError(w, model.ErrNotGameOwner)
		return
	}

	ch, err := h.games.RequestAIMove(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	ai, err := h.await(r.Context(), ch)
	if err != nil {
		WriteError(w, err)
		return
	}

	b, err := h.games.GetBoard(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.AIMoveResponse{
		Game:   response.GameFromModel(ai.Game, b),
		AIMove: response.MoveFromModel(ai.Move),
	})
}

// Hint handles GET /api/v1/games/{id}/hint
func (h *GameHandler) Hint(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	pos, err := h.games.SuggestMove(r.Context(), gameID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Hint{Row: pos.Row, Col: pos.Col})
}

// Score handles GET /api/v1/games/{id}/score?row=&col=
func (h *GameHandler) Score(w http.ResponseWriter, r *http.Request) {
	row, rowErr := strconv.Atoi(r.URL.Query().Get("row"))
	col, colErr := strconv.Atoi(r.URL.Query().Get("col"))
	if rowErr != nil || colErr != nil {
		WriteError(w, NewInvalidRequestError("row and col query parameters must be integers"))
		return
	}

	pos := model.Position{Row: row, Col: col}
	inspection, err := h.games.ScoreCell(r.Context(), gameID(r), pos)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ScoreResponseFromInspection(pos, inspection))
}

// Abandon handles DELETE /api/v1/games/{id}
func (h *GameHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	g, err := h.games.AbandonGame(r.Context(), gameID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeGame(w, r, http.StatusOK, g)
}

// Events handles GET /api/v1/games/{id}/events as a server-sent event stream
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	if h.hubManager == nil {
		WriteError(w, NewInvalidRequestError("event streaming is not enabled"))
		return
	}
	player := middleware.MustGetPlayer(r.Context())
	id := gameID(r)

	g, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	b, err := h.games.GetBoard(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	snapshot, err := json.Marshal(response.GameFromModel(g, b))
	if err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Debug("event stream opened",
		slog.String("game_id", string(id)),
		slog.String("player_id", string(player.ID)))
	sse.ServeSSE(w, r, h.hubManager, id, player.ID, string(snapshot))
}

func (h *GameHandler) writeGame(w http.ResponseWriter, r *http.Request, status int, g *model.Game) {
	b, err := h.games.GetBoard(r.Context(), g.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, status, response.GameFromModel(g, b))
}

// await blocks for an AI result, the request ending, or the wait timeout
func (h *GameHandler) await(ctx context.Context, ch <-chan game.AIMoveResult) (game.AIMoveResult, error) {
	timer := time.NewTimer(h.waitTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.Err != nil {
			return res, res.Err
		}
		return res, nil
	case <-timer.C:
		return game.AIMoveResult{}, NewUnavailableError("timed out waiting for the AI move")
	case <-ctx.Done():
		return game.AIMoveResult{}, ctx.Err()
	}
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}

func wantsWait(r *http.Request) bool {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	return wait
}
