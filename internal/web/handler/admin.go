package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/league"
	"github.com/mcoot/apl-auction/internal/web/middleware"
	"github.com/mcoot/apl-auction/internal/web/templates/pages"
)

const (
	pathTeams   = "/admin/teams"
	pathPlayers = "/admin/players"
)

// AdminHandler serves the landing page and league management pages
type AdminHandler struct {
	league league.League
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(league league.League, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		league: league,
		logger: logger,
	}
}

// Home renders the admin landing page. Failed actions redirect here with a toast.
func (h *AdminHandler) Home(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, pages.Home(pages.HomeData{PageData: pageData(r, "Admin")}))
}

// Teams lists teams with their leaders
func (h *AdminHandler) Teams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teams, err := h.league.ListTeamsWithPlayers(ctx)
	if err != nil {
		h.logger.Error("failed to list teams", slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, "Failed to load teams")
		return
	}

	candidates, err := h.league.ListPlayers(ctx, league.PlayerFilter{Status: league.StatusUnsold})
	if err != nil && !errors.Is(err, model.ErrNotSupported) {
		h.logger.Error("failed to list players", slog.String("error", err.Error()))
	}

	render(w, r, http.StatusOK, pages.Teams(pages.TeamsData{
		PageData:   pageData(r, "Teams"),
		Teams:      teams,
		Candidates: candidates,
	}))
}

// CreateTeam adds a team from the form
func (h *AdminHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, pathTeams, middleware.FlashError, "Invalid form data")
		return
	}

	team, err := h.league.CreateTeam(r.Context(), r.FormValue("name"), r.FormValue("image_url"))
	if err != nil {
		redirectWithFlash(w, r, pathTeams, middleware.FlashError, teamErrorMessage(err))
		return
	}
	redirectWithFlash(w, r, pathTeams, middleware.FlashSuccess, "Created team "+team.Name)
}

// AssignLeader makes a pool player a team's captain or vice-captain
func (h *AdminHandler) AssignLeader(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, pathTeams, middleware.FlashError, "Invalid form data")
		return
	}

	player, err := h.league.AssignLeader(r.Context(),
		model.TeamID(r.FormValue("team_id")),
		model.PlayerID(r.FormValue("player_id")),
		model.Role(r.FormValue("role")),
	)
	if err != nil {
		redirectWithFlash(w, r, pathTeams, middleware.FlashError, teamErrorMessage(err))
		return
	}
	redirectWithFlash(w, r, pathTeams, middleware.FlashSuccess, player.Name+" assigned")
}

func teamErrorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrTeamNameExists):
		return "A team with that name already exists"
	case errors.Is(err, model.ErrInvalidTeam):
		return "Team name is required"
	case errors.Is(err, model.ErrLeaderAssigned):
		return "That role is already filled"
	case errors.Is(err, model.ErrAlreadyLeader):
		return "That player already leads a team"
	case errors.Is(err, model.ErrInvalidRole):
		return "Choose captain or vice-captain"
	case errors.Is(err, model.ErrPlayerAlreadySold):
		return "That player has already been sold"
	case errors.Is(err, model.ErrNotSupported):
		return "Teams are managed by the league backend"
	}
	return "Failed to update team"
}

// Players lists registered players with optional search
func (h *AdminHandler) Players(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := league.PlayerFilter{
		Query:  q.Get("q"),
		Status: league.PlayerStatus(q.Get("status")),
	}
	if !filter.Status.Valid() {
		filter.Status = league.StatusAny
	}

	players, err := h.league.ListPlayers(r.Context(), filter)
	if err != nil {
		if errors.Is(err, model.ErrNotSupported) {
			redirectWithFlash(w, r, "/admin", middleware.FlashError, "Players are managed by the league backend")
			return
		}
		h.logger.Error("failed to list players", slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, "Failed to load players")
		return
	}

	render(w, r, http.StatusOK, pages.Players(pages.PlayersData{
		PageData: pageData(r, "Players"),
		Players:  players,
		Query:    filter.Query,
		Status:   string(filter.Status),
	}))
}

// MarkPaid records a player's registration payment
func (h *AdminHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])
	player, err := h.league.MarkPaid(r.Context(), id)
	if err != nil {
		redirectWithFlash(w, r, pathPlayers, middleware.FlashError, "Failed to mark player paid")
		return
	}
	redirectWithFlash(w, r, pathPlayers, middleware.FlashSuccess, player.Name+" marked paid")
}
