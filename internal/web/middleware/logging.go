package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/apl-auction/internal/middleware"
)

// Logging logs page and SSE requests tagged with surface=web
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("surface", "web")))
}
