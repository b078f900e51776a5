package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/apl-auction/internal/middleware"
)

// RequestIDHeader is exposed to browser clients through CORS
const RequestIDHeader = middleware.RequestIDHeader

// Logging logs API requests tagged with surface=api
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("surface", "api")))
}
