package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gomoku-go/internal/middleware"
)

// Logging logs page requests under the "web" component
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "web")))
}
