package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gomoku-go/internal/middleware"
	"github.com/mcoot/gomoku-go/internal/web/templates/layout"
)

// Recovery turns panics into an HTML error page
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = layout.ErrorPage("Something went wrong", "The server hit an unexpected error. Please try again.").Render(r.Context(), w)
}
