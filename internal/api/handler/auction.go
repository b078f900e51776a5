package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/apl-auction/internal/api/request"
	"github.com/mcoot/apl-auction/internal/api/response"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/auction"
	"github.com/mcoot/apl-auction/internal/services/finish"
	"github.com/mcoot/apl-auction/internal/services/league"
)

// AuctionHandler drives the auction cursor over JSON
type AuctionHandler struct {
	league     league.League
	controller *auction.Controller
	detector   *finish.Detector
	logger     *slog.Logger
}

// NewAuctionHandler creates a new auction handler
func NewAuctionHandler(league league.League, controller *auction.Controller, detector *finish.Detector, logger *slog.Logger) *AuctionHandler {
	return &AuctionHandler{
		league:     league,
		controller: controller,
		detector:   detector,
		logger:     logger,
	}
}

// Next handles POST /api/v1/auction/next
func (h *AuctionHandler) Next(w http.ResponseWriter, r *http.Request) {
	var req request.NextPlayerRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	step, err := h.controller.LoadNext(r.Context(), req.PlayerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	if step.Finished {
		rosters, err := h.detector.Rosters(r.Context())
		if err != nil {
			WriteError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, response.NextResponse{
			Finished: true,
			Location: auction.PathFinish,
			Rosters:  response.RostersFromModel(rosters),
		})
		return
	}

	player := response.PlayerFromModel(step.Player)
	response.JSON(w, http.StatusOK, response.NextResponse{
		Player:   &player,
		Location: auction.PresentURL(step.Player.ID),
	})
}

// Cursor handles GET /api/v1/auction/cursor
func (h *AuctionHandler) Cursor(w http.ResponseWriter, r *http.Request) {
	msg, ok, err := h.controller.Current(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CursorResponseFromModel(msg, ok))
}

// Check handles GET /api/v1/auction/check?id=&from=
func (h *AuctionHandler) Check(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	nav, err := h.controller.Check(r.Context(), model.PlayerID(q.Get("id")))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CheckResponseFromNavigation(nav.From(q.Get("from"))))
}

// Advance handles POST /api/v1/auction/advance
func (h *AuctionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Advance(r.Context()); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Sold handles GET /api/v1/auction/sold?player_id=&team_id=
func (h *AuctionHandler) Sold(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	playerID := q.Get("player_id")
	if playerID == "" {
		WriteError(w, NewInvalidRequestError("player_id is required"))
		return
	}

	view, err := h.controller.Sold(r.Context(), model.PlayerID(playerID), model.TeamID(q.Get("team_id")))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SoldResponseFromView(view))
}

// Finish handles GET /api/v1/auction/finish
func (h *AuctionHandler) Finish(w http.ResponseWriter, r *http.Request) {
	result, err := h.detector.Check(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FinishResponse{
		Finished: result.Finished,
		Rosters:  response.RostersFromModel(result.Rosters),
	})
}

// Reset handles POST /api/v1/auction/reset
func (h *AuctionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	n, err := h.league.ResetAuction(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.controller.Reset(r.Context()); err != nil {
		// The league is already reset; screens recover on the next advance
		h.logger.Error("failed to clear cursor after reset", slog.String("error", err.Error()))
	}

	response.JSON(w, http.StatusOK, response.ResetResponse{Returned: n})
}
