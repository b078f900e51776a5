package auction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/apl-auction/internal/cursor"
	"github.com/mcoot/apl-auction/internal/dependencies/clock"
	"github.com/mcoot/apl-auction/internal/metrics"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/finish"
	"github.com/mcoot/apl-auction/internal/services/league"
)

// Step is the result of loading the next player for the display screen
type Step struct {
	Finished bool
	Player   *model.Player
}

// SoldView is everything the sold page shows
type SoldView struct {
	Player  *model.Player
	Team    model.Team
	Rosters []model.Roster
}

// Controller drives the display screen through the auction
type Controller struct {
	league   league.Source
	cursor   cursor.Channel
	detector *finish.Detector
	clock    clock.Clock
	metrics  metrics.Metrics
	logger   *slog.Logger
}

// NewController creates a new auction Controller
func NewController(
	league league.Source,
	cursor cursor.Channel,
	detector *finish.Detector,
	clock clock.Clock,
	metrics metrics.Metrics,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		league:   league,
		cursor:   cursor,
		detector: detector,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// LoadNext puts a player on the block. An explicit id other than the legacy
// advance sentinel loads that player; otherwise a random unsold player is
// drawn. An empty pool finishes the auction.
func (c *Controller) LoadNext(ctx context.Context, explicitID string) (Step, error) {
	var (
		player *model.Player
		err    error
	)
	if explicitID != "" && explicitID != model.NextPlayerSentinel {
		player, err = c.league.GetPlayer(ctx, model.PlayerID(explicitID))
	} else {
		player, err = c.league.RandomUnsoldPlayer(ctx)
		if errors.Is(err, model.ErrNoUnsoldPlayers) {
			c.metrics.IncAuctionFinished()
			c.logger.Info("auction pool exhausted")
			return Step{Finished: true}, nil
		}
	}
	if err != nil {
		return Step{}, fmt.Errorf("load player: %w", err)
	}

	if err := c.publish(ctx, model.CursorMessage{PlayerID: player.ID, Kind: model.CursorPresenting}); err != nil {
		return Step{}, err
	}
	c.metrics.IncPlayersPresented()

	c.logger.Info("player presented",
		slog.String("player_id", string(player.ID)),
		slog.String("name", player.Name),
	)
	return Step{Player: player}, nil
}

// Check reads the current cursor and applies Observe for a screen showing
// displayed. With no cursor yet the screen stays.
func (c *Controller) Check(ctx context.Context, displayed model.PlayerID) (Navigation, error) {
	msg, ok, err := c.cursor.Current(ctx)
	if err != nil {
		return Navigation{}, err
	}
	if !ok {
		return Navigation{}, nil
	}
	return Observe(displayed, msg), nil
}

// Current returns the latest cursor message
func (c *Controller) Current(ctx context.Context) (model.CursorMessage, bool, error) {
	return c.cursor.Current(ctx)
}

// Advance tells every display screen to move to the next player
func (c *Controller) Advance(ctx context.Context) error {
	if err := c.publish(ctx, model.CursorMessage{Kind: model.CursorAdvance}); err != nil {
		return err
	}
	c.logger.Info("auction advanced")
	return nil
}

// Sold assembles the sold page. The team comes from the recorded sale; a
// teamID that disagrees with it is ignored.
func (c *Controller) Sold(ctx context.Context, playerID model.PlayerID, teamID model.TeamID) (*SoldView, error) {
	player, err := c.league.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !player.Sold || player.TeamID == "" {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotSold, playerID)
	}
	if teamID != "" && teamID != player.TeamID {
		c.logger.Warn("sold page team mismatch",
			slog.String("player_id", string(playerID)),
			slog.String("requested_team_id", string(teamID)),
			slog.String("team_id", string(player.TeamID)),
		)
	}

	team, err := c.league.GetTeam(ctx, player.TeamID)
	if err != nil {
		return nil, err
	}
	rosters, err := c.detector.Rosters(ctx)
	if err != nil {
		return nil, err
	}

	return &SoldView{
		Player:  player,
		Team:    team.Team,
		Rosters: rosters,
	}, nil
}

// Rebroadcast re-sends the current cursor so observers that missed it
// converge. The stored cursor is left alone. It reports whether there was
// anything to send.
func (c *Controller) Rebroadcast(ctx context.Context) (bool, error) {
	return c.cursor.Republish(ctx)
}

// Reset clears the cursor after the league has been reset
func (c *Controller) Reset(ctx context.Context) error {
	return c.cursor.Clear(ctx)
}

func (c *Controller) publish(ctx context.Context, msg model.CursorMessage) error {
	msg.PublishedAt = c.clock.Now()
	if err := c.cursor.Publish(ctx, msg); err != nil {
		c.logger.Error("failed to publish cursor",
			slog.String("kind", string(msg.Kind)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish cursor: %w", err)
	}
	c.metrics.IncCursorPublished(string(msg.Kind))
	return nil
}
