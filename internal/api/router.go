package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/mcoot/apl-auction/internal/api/apierr"
	"github.com/mcoot/apl-auction/internal/api/handler"
	"github.com/mcoot/apl-auction/internal/api/middleware"
	"github.com/mcoot/apl-auction/internal/services/auction"
	"github.com/mcoot/apl-auction/internal/services/auth"
	"github.com/mcoot/apl-auction/internal/services/finish"
	"github.com/mcoot/apl-auction/internal/services/league"
	"github.com/mcoot/apl-auction/internal/services/sale"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	AuthService       *auth.Service
	League            league.League
	SaleService       *sale.Service
	AuctionController *auction.Controller
	FinishDetector    *finish.Detector
	// AllowedOrigins lists the browser origins allowed to call the API.
	// Empty disables cross-origin access.
	AllowedOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	playerHandler := handler.NewPlayerHandler(cfg.League, cfg.SaleService)
	teamHandler := handler.NewTeamHandler(cfg.League)
	auctionHandler := handler.NewAuctionHandler(cfg.League, cfg.AuctionController, cfg.FinishDetector, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Public routes
	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/players", playerHandler.Register).Methods(http.MethodPost)

	// Everything else needs an admin session
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)

	protected.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/players/random", playerHandler.Random).Methods(http.MethodGet)
	protected.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/players/{id}", playerHandler.Sell).Methods(http.MethodPut)
	protected.HandleFunc("/players/{id}/paid", playerHandler.MarkPaid).Methods(http.MethodPost)

	protected.HandleFunc("/teams", teamHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/teams", teamHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/teams/{id}", teamHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/teams/{id}/leader", teamHandler.AssignLeader).Methods(http.MethodPost)

	protected.HandleFunc("/auction/next", auctionHandler.Next).Methods(http.MethodPost)
	protected.HandleFunc("/auction/cursor", auctionHandler.Cursor).Methods(http.MethodGet)
	protected.HandleFunc("/auction/check", auctionHandler.Check).Methods(http.MethodGet)
	protected.HandleFunc("/auction/advance", auctionHandler.Advance).Methods(http.MethodPost)
	protected.HandleFunc("/auction/sold", auctionHandler.Sold).Methods(http.MethodGet)
	protected.HandleFunc("/auction/finish", auctionHandler.Finish).Methods(http.MethodGet)
	protected.HandleFunc("/auction/reset", auctionHandler.Reset).Methods(http.MethodPost)

	if len(cfg.AllowedOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         600,
	}).Handler(r)
}
