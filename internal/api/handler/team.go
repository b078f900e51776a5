package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/apl-auction/internal/api/request"
	"github.com/mcoot/apl-auction/internal/api/response"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/league"
)

// TeamHandler handles team-related endpoints
type TeamHandler struct {
	league league.League
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(league league.League) *TeamHandler {
	return &TeamHandler{
		league: league,
	}
}

// List handles GET /api/v1/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.league.ListTeams(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamsFromModel(teams))
}

// Create handles POST /api/v1/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTeamRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	team, err := h.league.CreateTeam(r.Context(), req.Name, req.ImageURL)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.TeamFromModel(team))
}

// Get handles GET /api/v1/teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	team, err := h.league.GetTeam(r.Context(), model.TeamID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamDetailFromModel(team))
}

// AssignLeader handles POST /api/v1/teams/{id}/leader
func (h *TeamHandler) AssignLeader(w http.ResponseWriter, r *http.Request) {
	var req request.AssignLeaderRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.PlayerID == "" {
		WriteError(w, NewInvalidRequestError("player_id is required"))
		return
	}

	player, err := h.league.AssignLeader(r.Context(),
		model.TeamID(mux.Vars(r)["id"]), model.PlayerID(req.PlayerID), model.Role(req.Role))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}
