package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/auction"
	"github.com/mcoot/apl-auction/internal/services/finish"
	"github.com/mcoot/apl-auction/internal/services/league"
	"github.com/mcoot/apl-auction/internal/services/sale"
	"github.com/mcoot/apl-auction/internal/web/middleware"
	"github.com/mcoot/apl-auction/internal/web/sse"
	"github.com/mcoot/apl-auction/internal/web/templates/pages"
)

// Toasts shown on the auction screens
const (
	msgLoadFailed = "Failed to load player"
	msgSold       = "Player sold!"
	msgSellFailed = "Failed to sell player"
)

// Field errors shown next to the sell form inputs
const (
	errChooseTeam    = "Choose the buying team"
	errInvalidAmount = "Enter an amount of zero or more, such as 1500"
)

// AuctionHandler serves the display, panel, sold and finish screens
type AuctionHandler struct {
	league     league.Source
	sales      *sale.Service
	controller *auction.Controller
	detector   *finish.Detector
	hub        *sse.Hub
	logger     *slog.Logger
}

// NewAuctionHandler creates a new AuctionHandler
func NewAuctionHandler(
	league league.Source,
	sales *sale.Service,
	controller *auction.Controller,
	detector *finish.Detector,
	hub *sse.Hub,
	logger *slog.Logger,
) *AuctionHandler {
	return &AuctionHandler{
		league:     league,
		sales:      sales,
		controller: controller,
		detector:   detector,
		hub:        hub,
		logger:     logger,
	}
}

// Display puts the requested player, or a random unsold one, on the block
func (h *AuctionHandler) Display(w http.ResponseWriter, r *http.Request) {
	step, err := h.controller.LoadNext(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		h.logger.Error("failed to load player", slog.String("error", err.Error()))
		redirectWithFlash(w, r, auction.PathAdmin, middleware.FlashError, msgLoadFailed)
		return
	}
	if step.Finished {
		http.Redirect(w, r, auction.PathFinish, http.StatusSeeOther)
		return
	}

	data := pages.DisplayData{
		PageData: pageData(r, step.Player.Name),
		Player:   step.Player,
		From:     auction.PresentURL(step.Player.ID),
	}
	data.Fullscreen = true
	render(w, r, http.StatusOK, pages.Display(data))
}

// Panel renders the sell form for the player currently on the block
func (h *AuctionHandler) Panel(w http.ResponseWriter, r *http.Request) {
	data, failure := h.panelData(r.Context())
	if failure != "" {
		redirectWithFlash(w, r, auction.PathAdmin, middleware.FlashError, failure)
		return
	}
	data.PageData = pageData(r, "Panel")
	render(w, r, http.StatusOK, pages.Panel(data))
}

// panelData loads the teams and the presented player. On failure it returns
// the toast to show instead.
func (h *AuctionHandler) panelData(ctx context.Context) (pages.PanelData, string) {
	teams, err := h.league.ListTeams(ctx)
	if err != nil {
		h.logger.Error("failed to list teams", slog.String("error", err.Error()))
		return pages.PanelData{}, "Failed to load teams"
	}
	data := pages.PanelData{Teams: teams}

	msg, ok, err := h.controller.Current(ctx)
	if err != nil {
		h.logger.Error("failed to read cursor", slog.String("error", err.Error()))
	}
	if ok && msg.PlayerID != "" {
		player, err := h.league.GetPlayer(ctx, msg.PlayerID)
		if err != nil {
			h.logger.Error("failed to load player", slog.String("error", err.Error()))
			return pages.PanelData{}, msgLoadFailed
		}
		data.Player = player
		for _, t := range teams {
			if t.ID == player.TeamID {
				data.SoldTo = t.Name
			}
		}
	}
	return data, ""
}

// Sell records a sale submitted from the panel. A missing team or a bad
// amount shows the form again with the submitted values.
func (h *AuctionHandler) Sell(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, auction.PathPanel, middleware.FlashError, msgSellFailed)
		return
	}

	teamID := model.TeamID(strings.TrimSpace(r.FormValue("team_id")))
	rawAmount := r.FormValue("amount")

	var teamErr, amountErr string
	if teamID == "" {
		teamErr = errChooseTeam
	}
	amount, err := sale.ParseSaleAmount(rawAmount)
	if err != nil {
		amountErr = errInvalidAmount
	}
	if teamErr != "" || amountErr != "" {
		h.logger.Warn("invalid sale form",
			slog.String("team_id", string(teamID)),
			slog.String("amount", rawAmount),
		)
		data, failure := h.panelData(r.Context())
		if failure != "" {
			redirectWithFlash(w, r, auction.PathAdmin, middleware.FlashError, failure)
			return
		}
		data.PageData = pageData(r, "Panel")
		data.TeamID = teamID
		data.Amount = rawAmount
		data.TeamError = teamErr
		data.AmountError = amountErr
		render(w, r, http.StatusBadRequest, pages.Panel(data))
		return
	}

	_, err = h.sales.Sell(r.Context(), sale.Request{
		PlayerID: model.PlayerID(r.FormValue("player_id")),
		TeamID:   teamID,
		Amount:   amount,
	})
	if err != nil {
		redirectWithFlash(w, r, auction.PathPanel, middleware.FlashError, msgSellFailed)
		return
	}

	redirectWithFlash(w, r, auction.PathPanel+"?success=true", middleware.FlashSuccess, msgSold)
}

// Advance moves every display screen on to the next player
func (h *AuctionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Advance(r.Context()); err != nil {
		redirectWithFlash(w, r, auction.PathPanel, middleware.FlashError, "Failed to advance auction")
		return
	}
	http.Redirect(w, r, auction.PathPanel, http.StatusSeeOther)
}

// Sold shows the completed sale with every team's roster
func (h *AuctionHandler) Sold(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	playerID := model.PlayerID(q.Get("id"))
	view, err := h.controller.Sold(r.Context(), playerID, model.TeamID(q.Get("teamId")))
	switch {
	case err == nil:
	case errors.Is(err, model.ErrPlayerNotSold):
		http.Redirect(w, r, auction.PresentURL(playerID), http.StatusSeeOther)
		return
	case errors.Is(err, model.ErrMissingCaptain), errors.Is(err, model.ErrMissingViceCaptain):
		h.logger.Error("incomplete team", slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	default:
		h.logger.Error("failed to load sold player", slog.String("error", err.Error()))
		redirectWithFlash(w, r, auction.PathAdmin, middleware.FlashError, msgLoadFailed)
		return
	}

	data := pages.SoldData{
		PageData: pageData(r, "Sold"),
		Player:   view.Player,
		Team:     view.Team,
		Rosters:  view.Rosters,
		From:     auction.SoldURL(view.Player.ID, view.Team.ID),
	}
	data.Fullscreen = true
	render(w, r, http.StatusOK, pages.Sold(data))
}

// Finish shows the final rosters, or returns to the display while players remain
func (h *AuctionHandler) Finish(w http.ResponseWriter, r *http.Request) {
	result, err := h.detector.Check(r.Context())
	if err != nil {
		h.logger.Error("failed to build final rosters", slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if !result.Finished {
		http.Redirect(w, r, auction.PathAuction, http.StatusSeeOther)
		return
	}

	data := pages.FinishData{
		PageData: pageData(r, "Final rosters"),
		Rosters:  result.Rosters,
	}
	data.Fullscreen = true
	render(w, r, http.StatusOK, pages.Finish(data))
}

// Events streams cursor changes to a display screen
func (h *AuctionHandler) Events(w http.ResponseWriter, r *http.Request) {
	sse.ServeSSE(w, r, h.hub)
}

type checkResponse struct {
	Location string `json:"location,omitempty"`
}

// Check tells a polling screen where to go given the current cursor
func (h *AuctionHandler) Check(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	nav, err := h.controller.Check(r.Context(), model.PlayerID(q.Get("id")))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err != nil {
		h.logger.Error("failed to check cursor", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(checkResponse{})
		return
	}
	_ = json.NewEncoder(w).Encode(checkResponse{Location: nav.From(q.Get("from")).Location})
}
