package factory

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/apl-auction/internal/api"
	"github.com/mcoot/apl-auction/internal/web"
)

// HandlerConfig holds the HTTP settings that are not part of the App
type HandlerConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	StaticDir      string
}

// Handler combines the JSON API, the metrics endpoint and the web screens
func (a *App) Handler(cfg HandlerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		AuthService:       a.AuthService,
		League:            a.League,
		SaleService:       a.SaleService,
		AuctionController: a.AuctionController,
		FinishDetector:    a.FinishDetector,
		AllowedOrigins:    cfg.AllowedOrigins,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:            logger,
		AuthService:       a.AuthService,
		League:            a.League,
		SaleService:       a.SaleService,
		AuctionController: a.AuctionController,
		FinishDetector:    a.FinishDetector,
		Hub:               a.Hub,
		StaticDir:         cfg.StaticDir,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	if a.MetricsHandler != nil {
		mux.Handle("/metrics", a.MetricsHandler)
	}
	mux.Handle("/", webRouter)
	return mux
}
