package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/apl-auction/internal/api/request"
	"github.com/mcoot/apl-auction/internal/api/response"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/league"
	"github.com/mcoot/apl-auction/internal/services/sale"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	league league.League
	sales  *sale.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(league league.League, sales *sale.Service) *PlayerHandler {
	return &PlayerHandler{
		league: league,
		sales:  sales,
	}
}

// Register handles POST /api/v1/players
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterPlayerRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.league.RegisterPlayer(r.Context(), league.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Mandal:   req.Mandal,
		ImageURL: req.ImageURL,
		Ratings: model.Ratings{
			Batting:  req.Ratings.Batting,
			Bowling:  req.Ratings.Bowling,
			Fielding: req.Ratings.Fielding,
		},
		Stats: model.Stats{
			Matches:    req.Stats.Matches,
			Runs:       req.Stats.Runs,
			StrikeRate: req.Stats.StrikeRate,
			Wickets:    req.Stats.Wickets,
			Dismissals: req.Stats.Dismissals,
			Catches:    req.Stats.Catches,
		},
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// List handles GET /api/v1/players?q=&status=
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := league.PlayerFilter{
		Query:  q.Get("q"),
		Status: league.PlayerStatus(q.Get("status")),
	}
	if !filter.Status.Valid() {
		WriteError(w, NewInvalidRequestError("status must be sold, unsold or unpaid"))
		return
	}

	players, err := h.league.ListPlayers(r.Context(), filter)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayersFromModel(players))
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	player, err := h.league.GetPlayer(r.Context(), model.PlayerID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Random handles GET /api/v1/players/random
func (h *PlayerHandler) Random(w http.ResponseWriter, r *http.Request) {
	player, err := h.league.RandomUnsoldPlayer(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// MarkPaid handles POST /api/v1/players/{id}/paid
func (h *PlayerHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	player, err := h.league.MarkPaid(r.Context(), model.PlayerID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Sell handles PUT /api/v1/players/{id}
func (h *PlayerHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req request.SellPlayerRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.TeamID == "" {
		WriteError(w, NewInvalidRequestError("team_id is required"))
		return
	}
	if req.Amount == nil {
		WriteError(w, NewInvalidRequestError("amount is required"))
		return
	}

	player, err := h.sales.Sell(r.Context(), sale.Request{
		PlayerID: model.PlayerID(mux.Vars(r)["id"]),
		TeamID:   model.TeamID(req.TeamID),
		Amount:   *req.Amount,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}
