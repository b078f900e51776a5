package finish

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/apl-auction/internal/metrics"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/league"
)

// Result is the outcome of a finish check
type Result struct {
	Finished bool
	Rosters  []model.Roster // set only when Finished
}

// Detector decides whether the auction is over
type Detector struct {
	league  league.Source
	metrics metrics.Metrics
	logger  *slog.Logger
}

// New creates a new Detector
func New(league league.Source, metrics metrics.Metrics, logger *slog.Logger) *Detector {
	return &Detector{
		league:  league,
		metrics: metrics,
		logger:  logger,
	}
}

// Check asks the league for an unsold player on every call. The auction is
// finished only when none is left.
func (d *Detector) Check(ctx context.Context) (Result, error) {
	_, err := d.league.RandomUnsoldPlayer(ctx)
	if err == nil {
		return Result{}, nil
	}
	if !errors.Is(err, model.ErrNoUnsoldPlayers) {
		return Result{}, err
	}

	rosters, err := d.Rosters(ctx)
	if err != nil {
		return Result{}, err
	}
	d.metrics.IncAuctionFinished()
	return Result{Finished: true, Rosters: rosters}, nil
}

// Rosters returns every team's roster in team order. A team missing a
// captain or vice-captain fails the whole call.
func (d *Detector) Rosters(ctx context.Context) ([]model.Roster, error) {
	teams, err := d.league.ListTeamsWithPlayers(ctx)
	if err != nil {
		return nil, err
	}

	rosters := make([]model.Roster, 0, len(teams))
	for _, t := range teams {
		r, err := league.BuildRoster(t)
		if err != nil {
			d.logger.Error("team setup incomplete",
				slog.String("team_id", string(t.Team.ID)),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		rosters = append(rosters, r)
	}
	return rosters, nil
}
