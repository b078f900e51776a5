package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/apl-auction/internal/api/apierr"
	"github.com/mcoot/apl-auction/internal/middleware"
)

// Recovery answers a panicking API handler with a JSON INTERNAL_ERROR
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("surface", "api")), func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
