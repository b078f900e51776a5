package sale

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/mcoot/apl-auction/internal/cursor"
	"github.com/mcoot/apl-auction/internal/dependencies/clock"
	"github.com/mcoot/apl-auction/internal/metrics"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/league"
)

// Request is one sale submitted from the panel screen
type Request struct {
	PlayerID model.PlayerID
	TeamID   model.TeamID
	Amount   float64
}

// Service records sales and announces them on the cursor
type Service struct {
	league  league.Source
	cursor  cursor.Channel
	clock   clock.Clock
	metrics metrics.Metrics
	logger  *slog.Logger
}

// New creates a new sale Service
func New(
	league league.Source,
	cursor cursor.Channel,
	clock clock.Clock,
	metrics metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		league:  league,
		cursor:  cursor,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// ParseSaleAmount reads a price typed by the operator. One leading "$" is
// allowed; the value must be finite and non-negative.
func ParseSaleAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, model.ErrInvalidSaleAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidSaleAmount, s)
	}
	return v, nil
}

// Sell records the sale and then publishes a sold cursor. Nothing is
// published when the sale fails.
func (s *Service) Sell(ctx context.Context, req Request) (*model.Player, error) {
	if req.PlayerID == "" {
		s.metrics.IncSaleRejected(reasonFor(model.ErrPlayerNotFound))
		return nil, fmt.Errorf("%w: player id is required", model.ErrPlayerNotFound)
	}
	if req.TeamID == "" {
		s.metrics.IncSaleRejected(reasonFor(model.ErrTeamNotFound))
		return nil, fmt.Errorf("%w: team id is required", model.ErrTeamNotFound)
	}

	player, err := s.league.SellPlayer(ctx, req.PlayerID, req.TeamID, req.Amount)
	if err != nil {
		s.metrics.IncSaleRejected(reasonFor(err))
		s.logger.Warn("sale rejected",
			slog.String("player_id", string(req.PlayerID)),
			slog.String("team_id", string(req.TeamID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	s.metrics.IncPlayersSold(player.SoldAmount)

	msg := model.CursorMessage{
		PlayerID:    player.ID,
		TeamID:      player.TeamID,
		Kind:        model.CursorSold,
		PublishedAt: s.clock.Now(),
	}
	// A failed announcement does not undo the sale
	if err := s.cursor.Publish(ctx, msg); err != nil {
		s.logger.Error("failed to publish sold cursor",
			slog.String("player_id", string(player.ID)),
			slog.String("error", err.Error()),
		)
		return player, nil
	}
	s.metrics.IncCursorPublished(string(model.CursorSold))

	return player, nil
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, model.ErrPlayerAlreadySold):
		return "already_sold"
	case errors.Is(err, model.ErrPlayerNotForSale):
		return "not_for_sale"
	case errors.Is(err, model.ErrPlayerNotFound):
		return "player_not_found"
	case errors.Is(err, model.ErrTeamNotFound):
		return "team_not_found"
	case errors.Is(err, model.ErrInvalidSaleAmount):
		return "invalid_amount"
	}
	return "error"
}
