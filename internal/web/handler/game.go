package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/bot"
	"github.com/mcoot/gomoku-go/internal/services/game"
	"github.com/mcoot/gomoku-go/internal/web/middleware"
	"github.com/mcoot/gomoku-go/internal/web/sse"
	"github.com/mcoot/gomoku-go/internal/web/templates/layout"
	"github.com/mcoot/gomoku-go/internal/web/templates/pages"
)

// DefaultPlaceWait is how long a form placement waits for the AI before
// redirecting; the page's event stream picks up anything later
const DefaultPlaceWait = 10 * time.Second

// GameHandler handles game pages and actions
type GameHandler struct {
	games      game.ControllerInterface
	hubManager *sse.HubManager
	logger     *slog.Logger
	placeWait  time.Duration
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(games game.ControllerInterface, hubManager *sse.HubManager, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		games:      games,
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "web-game")),
		placeWait:  DefaultPlaceWait,
	}
}

// Create handles POST /games from the new-game form
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, "/", err)
		return
	}

	opts := model.GameOptions{
		Strategy: r.FormValue("strategy"),
		AIFirst:  r.FormValue("ai_first") == "true" || r.FormValue("ai_first") == "on",
	}
	if raw := r.FormValue("board_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(w, r, "/", model.ErrInvalidBoardSize)
			return
		}
		opts.BoardSize = size
	}

	g, err := h.games.CreateGame(r.Context(), player.ID, opts)
	if err != nil {
		h.fail(w, r, "/", err)
		return
	}
	http.Redirect(w, r, gamePath(g.ID), http.StatusSeeOther)
}

// View renders the board page. Anyone signed in may watch; only the owner
// gets place buttons.
func (h *GameHandler) View(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	id := gameID(r)

	g, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		h.fail(w, r, "/", err)
		return
	}
	b, err := h.games.GetBoard(r.Context(), id)
	if err != nil {
		h.fail(w, r, "/", err)
		return
	}

	data := pages.GameData{
		PageData: layout.PageData{
			Title:  "Game " + string(g.ID),
			Player: player,
			Flash:  middleware.GetFlash(r.Context()),
		},
		Game:    g,
		Board:   b,
		IsOwner: g.PlayerID == player.ID,
	}
	if hint, ok := parseHint(r.URL.Query().Get("hint"), b); ok && data.IsOwner {
		data.Hint = &hint
	}

	render(w, r, http.StatusOK, pages.Game(data))
}

// Place handles POST /games/{id}/place. It waits briefly for the AI reply so
// the redirected page usually shows both stones.
func (h *GameHandler) Place(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	id := gameID(r)
	back := gamePath(id)

	if err := r.ParseForm(); err != nil {
		h.fail(w, r, back, err)
		return
	}
	row, rowErr := strconv.Atoi(r.FormValue("row"))
	col, colErr := strconv.Atoi(r.FormValue("col"))
	if rowErr != nil || colErr != nil {
		h.fail(w, r, back, model.ErrInvalidPosition)
		return
	}

	result, err := h.games.PlaceStone(r.Context(), id, player.ID, model.Position{Row: row, Col: col})
	if err != nil {
		h.fail(w, r, back, err)
		return
	}

	if result.AIMove != nil {
		timer := time.NewTimer(h.placeWait)
		defer timer.Stop()
		select {
		case res := <-result.AIMove:
			if res.Err != nil && !errors.Is(res.Err, model.ErrGameAbandoned) {
				h.logger.Warn("ai move failed",
					slog.String("game_id", string(id)),
					slog.String("error", res.Err.Error()))
				middleware.SetFlash(w, middleware.FlashError, "The AI could not move; reload to retry")
			}
		case <-timer.C:
		case <-r.Context().Done():
			return
		}
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}

// Hint handles POST /games/{id}/hint by redirecting to the board with the
// suggestion highlighted
func (h *GameHandler) Hint(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	id := gameID(r)

	pos, err := h.games.SuggestMove(r.Context(), id, player.ID)
	if err != nil {
		h.fail(w, r, gamePath(id), err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("%s?hint=%d,%d", gamePath(id), pos.Row, pos.Col), http.StatusSeeOther)
}

// Abandon handles POST /games/{id}/abandon
func (h *GameHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	id := gameID(r)

	if _, err := h.games.AbandonGame(r.Context(), id, player.ID); err != nil {
		h.fail(w, r, gamePath(id), err)
		return
	}
	middleware.SetFlash(w, middleware.FlashInfo, "You resigned the game")
	http.Redirect(w, r, gamePath(id), http.StatusSeeOther)
}

// Events handles GET /games/{id}/events for the page's EventSource
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	id := gameID(r)

	if _, err := h.games.GetGame(r.Context(), id); err != nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	sse.ServeSSE(w, r, h.hubManager, id, player.ID, "")
}

// fail flashes a readable message for err and redirects to target
func (h *GameHandler) fail(w http.ResponseWriter, r *http.Request, target string, err error) {
	msg, known := userMessage(err)
	if !known {
		h.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	middleware.SetFlash(w, middleware.FlashError, msg)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

var userMessages = []struct {
	err error
	msg string
}{
	{model.ErrGameNotFound, "Game not found"},
	{model.ErrNotGameOwner, "Only the player who started this game can do that"},
	{model.ErrAITurnPending, "Wait for the AI to move"},
	{model.ErrNotPlayerTurn, "It is not your turn"},
	{model.ErrCellOccupied, "That cell is already taken"},
	{model.ErrInvalidPosition, "That cell is off the board"},
	{model.ErrGameComplete, "The game is over"},
	{model.ErrGameAbandoned, "The game was abandoned"},
	{model.ErrInvalidBoardSize, fmt.Sprintf("Board size must be %d-%d", model.MinBoardSize, model.MaxBoardSize)},
	{model.ErrUnknownStrategy, "Unknown opponent"},
	{bot.ErrServiceClosed, "The server is shutting down"},
}

func userMessage(err error) (string, bool) {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg, true
		}
	}
	return "Something went wrong", false
}

// parseHint reads "row,col" and checks it is on the board
func parseHint(raw string, b *model.Board) (model.Position, bool) {
	rowStr, colStr, ok := strings.Cut(raw, ",")
	if !ok {
		return model.Position{}, false
	}
	row, rowErr := strconv.Atoi(rowStr)
	col, colErr := strconv.Atoi(colStr)
	pos := model.Position{Row: row, Col: col}
	if rowErr != nil || colErr != nil || !b.IsValidPosition(pos) {
		return model.Position{}, false
	}
	return pos, true
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}

func gamePath(id model.GameID) string {
	return "/games/" + string(id)
}
