package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/game"
	"github.com/mcoot/gomoku-go/internal/web/middleware"
	"github.com/mcoot/gomoku-go/internal/web/templates/layout"
	"github.com/mcoot/gomoku-go/internal/web/templates/pages"
)

// HomeHandler handles the home page
type HomeHandler struct {
	games            game.ControllerInterface
	defaultBoardSize int
	logger           *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(games game.ControllerInterface, defaultBoardSize int, logger *slog.Logger) *HomeHandler {
	if defaultBoardSize == 0 {
		defaultBoardSize = model.DefaultBoardSize
	}
	return &HomeHandler{
		games:            games,
		defaultBoardSize: defaultBoardSize,
		logger:           logger,
	}
}

// Home renders the home page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())

	data := pages.HomeData{
		PageData: layout.PageData{
			Title:  "Home",
			Player: player,
			Flash:  middleware.GetFlash(r.Context()),
		},
		Next:             r.URL.Query().Get("next"),
		DefaultBoardSize: h.defaultBoardSize,
	}

	if player != nil {
		games, err := h.games.ListGames(r.Context(), player.ID)
		if err != nil {
			h.logger.Error("failed to list games",
				slog.String("player_id", string(player.ID)),
				slog.String("error", err.Error()))
		}
		data.Games = games
	}

	render(w, r, http.StatusOK, pages.Home(data))
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = c.Render(r.Context(), w)
}
