package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gomoku-go/internal/services/auth"
	"github.com/mcoot/gomoku-go/internal/services/game"
	"github.com/mcoot/gomoku-go/internal/web/handler"
	"github.com/mcoot/gomoku-go/internal/web/middleware"
	"github.com/mcoot/gomoku-go/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger           *slog.Logger
	AuthService      *auth.Service
	GameController   game.ControllerInterface
	HubManager       *sse.HubManager
	DefaultBoardSize int // pre-filled in the new-game form
}

// NewRouter creates the browser-facing router
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}

	homeHandler := handler.NewHomeHandler(cfg.GameController, cfg.DefaultBoardSize, cfg.Logger)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	gameHandler := handler.NewGameHandler(cfg.GameController, hubManager, cfg.Logger)

	public := r.NewRoute().Subrouter()
	public.Use(middleware.Flash())
	public.Use(middleware.OptionalAuth(cfg.AuthService))
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	public.HandleFunc("/auth/guest", authHandler.CreateGuest).Methods(http.MethodPost)
	public.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	protected := r.PathPrefix("/games").Subrouter()
	protected.Use(middleware.Flash())
	protected.Use(middleware.Auth(cfg.AuthService))
	protected.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/{id}", gameHandler.View).Methods(http.MethodGet)
	protected.HandleFunc("/{id}/place", gameHandler.Place).Methods(http.MethodPost)
	protected.HandleFunc("/{id}/hint", gameHandler.Hint).Methods(http.MethodPost)
	protected.HandleFunc("/{id}/abandon", gameHandler.Abandon).Methods(http.MethodPost)
	protected.HandleFunc("/{id}/events", gameHandler.Events).Methods(http.MethodGet)

	return r
}
