package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/apl-auction/internal/services/auction"
	"github.com/mcoot/apl-auction/internal/services/auth"
	"github.com/mcoot/apl-auction/internal/services/finish"
	"github.com/mcoot/apl-auction/internal/services/league"
	"github.com/mcoot/apl-auction/internal/services/sale"
	"github.com/mcoot/apl-auction/internal/web/handler"
	"github.com/mcoot/apl-auction/internal/web/middleware"
	"github.com/mcoot/apl-auction/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger            *slog.Logger
	AuthService       *auth.Service
	League            league.League
	SaleService       *sale.Service
	AuctionController *auction.Controller
	FinishDetector    *finish.Detector
	Hub               *sse.Hub
	StaticDir         string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	flashMiddleware := middleware.Flash()
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)

	// Apply global middleware to all routes
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	adminHandler := handler.NewAdminHandler(cfg.League, cfg.Logger)
	auctionHandler := handler.NewAuctionHandler(
		cfg.League, cfg.SaleService, cfg.AuctionController, cfg.FinishDetector, cfg.Hub, cfg.Logger,
	)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	r.Handle("/", http.RedirectHandler(auction.PathAdmin, http.StatusSeeOther)).Methods(http.MethodGet)

	// Login and logout
	public := r.NewRoute().Subrouter()
	public.Use(flashMiddleware)
	public.Use(optionalAuthMiddleware)
	public.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	public.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)

	// Admin routes (require auth)
	admin := r.PathPrefix(auction.PathAdmin).Subrouter()
	admin.Use(flashMiddleware)
	admin.Use(authMiddleware)
	admin.HandleFunc("", adminHandler.Home).Methods(http.MethodGet)

	// Auction screens
	admin.HandleFunc("/auction", auctionHandler.Display).Methods(http.MethodGet)
	admin.HandleFunc("/auction/panel", auctionHandler.Panel).Methods(http.MethodGet)
	admin.HandleFunc("/auction/panel", auctionHandler.Sell).Methods(http.MethodPost)
	admin.HandleFunc("/auction/advance", auctionHandler.Advance).Methods(http.MethodPost)
	admin.HandleFunc("/auction/sold", auctionHandler.Sold).Methods(http.MethodGet)
	admin.HandleFunc("/auction/finish", auctionHandler.Finish).Methods(http.MethodGet)
	admin.HandleFunc("/auction/events", auctionHandler.Events).Methods(http.MethodGet)
	admin.HandleFunc("/auction/check", auctionHandler.Check).Methods(http.MethodGet)

	// League management
	admin.HandleFunc("/teams", adminHandler.Teams).Methods(http.MethodGet)
	admin.HandleFunc("/teams", adminHandler.CreateTeam).Methods(http.MethodPost)
	admin.HandleFunc("/teams/leader", adminHandler.AssignLeader).Methods(http.MethodPost)
	admin.HandleFunc("/players", adminHandler.Players).Methods(http.MethodGet)
	admin.HandleFunc("/players/{id}/paid", adminHandler.MarkPaid).Methods(http.MethodPost)

	return r
}
